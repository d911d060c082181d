package commands_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghl-cli/ghl/cmd/ghl/commands"
	"github.com/ghl-cli/ghl/internal/config"
)

func TestNewRootCommand(t *testing.T) {
	root := commands.NewRootCommand(newTestRuntime(t, ""), "1.0.0", "abc", "today")
	assert.Equal(t, "ghl", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	for _, expected := range []string{
		"version", "config", "contacts", "calendars", "opportunities",
		"conversations", "workflows", "locations", "users", "tags", "pipelines",
	} {
		assert.Contains(t, names, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	runtime := newTestRuntime(t, "")

	out, err := executeCommand(t, runtime, "", "version", "--json")
	require.NoError(t, err)

	var info map[string]any

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "test", info["version"])
	assert.Equal(t, "none", info["commit"])
}

func TestStoredFormatIsDefault(t *testing.T) {
	t.Setenv(config.EnvToken, "test-token")
	t.Setenv(config.EnvLocation, "loc-1")

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"tags": []map[string]any{{"id": "t-1", "name": "vip"}},
		})
	}))
	defer server.Close()

	runtime := newTestRuntime(t, server.URL)
	require.NoError(t, runtime.Store.Save(config.Settings{OutputFormat: "json"}))

	out, err := executeCommand(t, runtime, "", "tags", "list")
	require.NoError(t, err)

	var decoded []map[string]any

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "vip", decoded[0]["name"])
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	t.Setenv(config.EnvToken, "test-token")
	t.Setenv(config.EnvLocation, "loc-1")

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("x-ratelimit-interval-ms", "50")
		writer.Header().Set("x-ratelimit-remaining", "10")

		if calls.Add(1) == 1 {
			writer.WriteHeader(http.StatusTooManyRequests)

			return
		}

		_ = json.NewEncoder(writer).Encode(map[string]any{
			"pipelines": []map[string]any{{"id": "p-1", "name": "Sales"}},
		})
	}))
	defer server.Close()

	runtime := newTestRuntime(t, server.URL)

	out, err := executeCommand(t, runtime, "", "pipelines", "list")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, out, "Sales")
}

func TestAPIErrorSurfacesMessage(t *testing.T) {
	t.Setenv(config.EnvToken, "test-token")
	t.Setenv(config.EnvLocation, "loc-1")

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(writer).Encode(map[string]any{"message": "Contact not found"})
	}))
	defer server.Close()

	runtime := newTestRuntime(t, server.URL)

	_, err := executeCommand(t, runtime, "", "contacts", "get", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404: Contact not found")
}

func TestLocationsCurrent(t *testing.T) {
	t.Setenv(config.EnvLocation, "")

	t.Run("unset", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		out, err := executeCommand(t, runtime, "", "locations", "current")
		require.NoError(t, err)
		assert.Contains(t, out, "No default location set.")
	})

	t.Run("after switch", func(t *testing.T) {
		runtime := newTestRuntime(t, "")

		out, err := executeCommand(t, runtime, "", "locations", "switch", "loc-2")
		require.NoError(t, err)
		assert.Contains(t, out, "Switched to location: loc-2")

		out, err = executeCommand(t, runtime, "", "locations", "current")
		require.NoError(t, err)
		assert.Contains(t, out, "Current location: loc-2")
	})
}
