package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghl-cli/ghl/internal/output"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	record := map[string]any{
		"id": "c-1",
		"contact": map[string]any{
			"name": "Jane",
			"address": map[string]any{
				"city": "Austin",
			},
		},
		"tags": []any{"vip"},
	}

	assert.Equal(t, "c-1", output.Resolve(record, "id"))
	assert.Equal(t, "Jane", output.Resolve(record, "contact.name"))
	assert.Equal(t, "Austin", output.Resolve(record, "contact.address.city"))
	assert.Nil(t, output.Resolve(record, "contact.missing"))
	assert.Nil(t, output.Resolve(record, "missing.name"))
	// Descending through a non-object yields nil, not a panic.
	assert.Nil(t, output.Resolve(record, "tags.name"))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", output.FormatValue(nil))
	assert.Equal(t, "Yes", output.FormatValue(true))
	assert.Equal(t, "No", output.FormatValue(false))
	assert.Equal(t, "hello", output.FormatValue("hello"))
	assert.Equal(t, "42", output.FormatValue(float64(42)))
	assert.Equal(t, "1.5", output.FormatValue(1.5))
	assert.Equal(t, "-", output.FormatValue([]any{}))
	assert.Equal(t, "a, b, c", output.FormatValue([]any{"a", "b", "c"}))
	assert.Equal(t, "4 items", output.FormatValue([]any{"a", "b", "c", "d"}))
	assert.Equal(t, `{"k":"v"}`, output.FormatValue(map[string]any{"k": "v"}))
}

func TestRender_Table(t *testing.T) {
	t.Parallel()
	t.Run("rows and placeholders", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{
			{"id": "c-1", "name": "Jane", "email": "jane@example.com"},
			{"id": "c-2", "name": "Bob"},
		}, output.Options{
			Columns: []output.Column{
				{Key: "id", Header: "ID"},
				{Key: "name", Header: "Name"},
				{Key: "email", Header: "Email"},
			},
			Writer: &buf,
		})
		require.NoError(t, err)

		got := buf.String()
		assert.Contains(t, got, "Jane")
		assert.Contains(t, got, "jane@example.com")
		assert.Contains(t, got, "-")
	})

	t.Run("empty list prints notice", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{}, output.Options{
			Columns: []output.Column{{Key: "id", Header: "ID"}},
			Writer:  &buf,
		})
		require.NoError(t, err)
		assert.Equal(t, "No results found.\n", buf.String())
	})

	t.Run("title precedes table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{{"id": "c-1"}}, output.Options{
			Columns: []output.Column{{Key: "id", Header: "ID"}},
			Title:   "Contacts",
			Writer:  &buf,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(buf.String(), "Contacts\n"))
	})
}

func TestRender_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	data := map[string]any{"b": 2.0, "a": 1.0}

	err := output.Render(data, output.Options{Format: output.FormatJSON, Writer: &buf})
	require.NoError(t, err)

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, data, decoded)

	// Keys are emitted sorted, so repeated renders are byte-identical.
	var second bytes.Buffer

	require.NoError(t, output.Render(data, output.Options{Format: output.FormatJSON, Writer: &second}))
	assert.Equal(t, buf.String(), second.String())
}

func TestRender_CSV(t *testing.T) {
	t.Parallel()
	t.Run("missing values stay empty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{
			{"id": "c-1", "name": "Jane"},
			{"id": "c-2"},
		}, output.Options{
			Format: output.FormatCSV,
			Columns: []output.Column{
				{Key: "id", Header: "ID"},
				{Key: "name", Header: "Name"},
			},
			Writer: &buf,
		})
		require.NoError(t, err)
		assert.Equal(t, "ID,Name\nc-1,Jane\nc-2,\n", buf.String())
	})

	t.Run("empty list writes nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{}, output.Options{
			Format:  output.FormatCSV,
			Columns: []output.Column{{Key: "id", Header: "ID"}},
			Writer:  &buf,
		})
		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestRender_Quiet(t *testing.T) {
	t.Parallel()
	t.Run("list of ids", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{
			{"id": "c-1"},
			{"name": "no id"},
			{"id": "c-2"},
		}, output.Options{Format: output.FormatQuiet, Writer: &buf})
		require.NoError(t, err)
		assert.Equal(t, "c-1\nc-2\n", buf.String())
	})

	t.Run("single record id", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render(map[string]any{"id": "c-1"}, output.Options{
			Format: output.FormatQuiet,
			Writer: &buf,
		})
		require.NoError(t, err)
		assert.Equal(t, "c-1\n", buf.String())
	})

	t.Run("custom id key", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{{"_id": "w-1"}}, output.Options{
			Format: output.FormatQuiet,
			IDKey:  "_id",
			Writer: &buf,
		})
		require.NoError(t, err)
		assert.Equal(t, "w-1\n", buf.String())
	})
}

func TestRender_Single(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := output.Render(map[string]any{
		"id":    "c-1",
		"email": "jane@example.com",
		"dnd":   false,
	}, output.Options{
		Fields: []output.Column{
			{Key: "id", Header: "ID"},
			{Key: "email", Header: "Email"},
			{Key: "dnd", Header: "DND"},
			{Key: "phone", Header: "Phone"},
		},
		Writer: &buf,
	})
	require.NoError(t, err)

	assert.Equal(t, "ID     c-1\nEmail  jane@example.com\nDND    No\nPhone  -\n", buf.String())
}

func TestRender_Fallbacks(t *testing.T) {
	t.Parallel()
	t.Run("list without columns renders JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render([]map[string]any{{"id": "c-1"}}, output.Options{Writer: &buf})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"c-1"}]`, buf.String())
	})

	t.Run("record without fields renders JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render(map[string]any{"id": "c-1"}, output.Options{Writer: &buf})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"c-1"}`, buf.String())
	})

	t.Run("scalar prints its formatted value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		err := output.Render("plain", output.Options{Writer: &buf})
		require.NoError(t, err)
		assert.Equal(t, "plain\n", buf.String())
	})
}
