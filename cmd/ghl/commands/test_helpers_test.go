package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/ghl-cli/ghl/cmd/ghl/commands"
	"github.com/ghl-cli/ghl/internal/config"
	ghlhttp "github.com/ghl-cli/ghl/internal/http"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

// newTestRuntime returns a runtime with an isolated config store whose API
// clients talk to the given server.
func newTestRuntime(t *testing.T, serverURL string) *commands.Runtime {
	t.Helper()

	runtime := &commands.Runtime{
		Store: config.NewStoreAt(filepath.Join(t.TempDir(), ".ghl")),
	}

	if serverURL != "" {
		runtime.ClientOptions = []ghlhttp.Option{ghlhttp.WithBaseURL(serverURL)}
	}

	return runtime
}

// executeCommand runs one CLI invocation and captures its combined output.
func executeCommand(t *testing.T, runtime *commands.Runtime, stdin string, args ...string) (string, error) {
	t.Helper()

	root := commands.NewRootCommand(runtime, "test", "none", "unknown")

	var buf bytes.Buffer

	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()

	return buf.String(), err
}
