package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghl-cli/ghl/cmd/ghl/commands"
	"github.com/ghl-cli/ghl/internal/config"
)

func TestConfigSetToken(t *testing.T) {
	t.Setenv(config.EnvToken, "")

	t.Run("from argument", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		out, err := executeCommand(t, runtime, "", "config", "set-token", "secret-token")
		require.NoError(t, err)
		assert.Contains(t, out, "API token saved successfully")
		assert.Equal(t, "secret-token", runtime.Store.Token())
	})

	t.Run("from prompt", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		out, err := executeCommand(t, runtime, "prompted-token\n", "config", "set-token")
		require.NoError(t, err)
		assert.Contains(t, out, "API token saved successfully")
		assert.Equal(t, "prompted-token", runtime.Store.Token())
	})

	t.Run("empty token rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		_, err := executeCommand(t, runtime, "  \n", "config", "set-token")
		require.ErrorIs(t, err, commands.ErrEmptyToken)
	})
}

func TestConfigSetLocation(t *testing.T) {
	t.Setenv(config.EnvLocation, "")

	runtime := newTestRuntime(t, "")

	out, err := executeCommand(t, runtime, "", "config", "set-location", "loc-9")
	require.NoError(t, err)
	assert.Contains(t, out, "Default location set to: loc-9")
	assert.Equal(t, "loc-9", runtime.Store.LocationID())
}

func TestConfigSetFormat(t *testing.T) {
	t.Run("valid format persists", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		out, err := executeCommand(t, runtime, "", "config", "set-format", "json")
		require.NoError(t, err)
		assert.Contains(t, out, "Default output format set to: json")
		assert.Equal(t, "json", runtime.Store.Load().OutputFormat)
	})

	t.Run("quiet is flag-only", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		_, err := executeCommand(t, runtime, "", "config", "set-format", "quiet")
		require.ErrorIs(t, err, commands.ErrInvalidOutputFormat)
	})
}

func TestConfigShow(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvLocation, "")

	runtime := newTestRuntime(t, "")
	require.NoError(t, runtime.Store.Save(config.Settings{
		LocationID:   "loc-1",
		APIVersion:   "2021-07-28",
		OutputFormat: "table",
	}))

	out, err := executeCommand(t, runtime, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Location ID:    loc-1")
	assert.Contains(t, out, "API Version:    2021-07-28")
	assert.Contains(t, out, "Output Format:  table")
	assert.Contains(t, out, "API Token:      Not set")
}

func TestConfigClear(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvLocation, "")

	t.Run("requires a target", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		_, err := executeCommand(t, runtime, "", "config", "clear", "--yes")
		require.ErrorIs(t, err, commands.ErrClearTargetRequired)
	})

	t.Run("token only", func(t *testing.T) {
		runtime := newTestRuntime(t, "")
		require.NoError(t, runtime.Store.SetToken("secret", false))
		require.NoError(t, runtime.Store.Save(config.Settings{LocationID: "loc-1"}))

		out, err := executeCommand(t, runtime, "", "config", "clear", "--token", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "API token cleared")
		assert.Empty(t, runtime.Store.Token())
		assert.Equal(t, "loc-1", runtime.Store.LocationID())
	})

	t.Run("everything", func(t *testing.T) {
		runtime := newTestRuntime(t, "")
		require.NoError(t, runtime.Store.SetToken("secret", false))
		require.NoError(t, runtime.Store.Save(config.Settings{LocationID: "loc-1"}))

		out, err := executeCommand(t, runtime, "", "config", "clear", "--all", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "All configuration cleared")
		assert.Empty(t, runtime.Store.Token())
		assert.Empty(t, runtime.Store.LocationID())
	})

	t.Run("declined confirmation", func(t *testing.T) {
		runtime := newTestRuntime(t, "")
		require.NoError(t, runtime.Store.SetToken("secret", false))

		_, err := executeCommand(t, runtime, "\n", "config", "clear", "--token")
		require.ErrorIs(t, err, commands.ErrAborted)
		assert.Equal(t, "secret", runtime.Store.Token())
	})
}
