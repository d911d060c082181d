package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghl-cli/ghl/internal/config"
	ghlhttp "github.com/ghl-cli/ghl/internal/http"
	"github.com/ghl-cli/ghl/internal/output"
)

// Common static errors used throughout the commands package.
var (
	ErrAborted = errors.New("aborted")

	ErrNoToken = errors.New(
		"no API token configured. Run 'ghl config set-token' to set your token, " +
			"or set the GHL_API_TOKEN environment variable")
	ErrNoLocation = errors.New(
		"no location ID configured. Run 'ghl config set-location <location_id>' " +
			"to set your default location, or set the GHL_LOCATION_ID environment variable")

	ErrEmptyToken            = errors.New("token cannot be empty")
	ErrEmailOrPhoneRequired  = errors.New("at least --email or --phone is required")
	ErrEmailSubjectRequired  = errors.New("email messages require --subject")
	ErrNoFieldsToUpdate      = errors.New("no fields to update, specify at least one option")
	ErrClearTargetRequired   = errors.New("specify --token or --all to clear configuration")
	ErrInvalidOutputFormat   = errors.New("invalid output format, expected table, json, csv, or quiet")
	ErrInvalidMessageChannel = errors.New("invalid message type, expected sms, email, whatsapp, fb, or ig")
)

// Runtime carries the dependencies every command handler needs. Commands
// receive it explicitly instead of reaching for package globals.
type Runtime struct {
	Store *config.Store

	// ClientOptions are appended to every API client built by the
	// runtime; tests use them to point commands at a local server.
	ClientOptions []ghlhttp.Option
}

// location resolves the active location: the --location flag, then the
// environment, then the stored default.
func (r *Runtime) location(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("location"); flag != nil && flag.Value.String() != "" {
		return flag.Value.String()
	}

	return r.Store.LocationID()
}

// requireLocation is the guard for commands that cannot run without a
// location scope.
func (r *Runtime) requireLocation(cmd *cobra.Command) (string, error) {
	location := r.location(cmd)
	if location == "" {
		return "", ErrNoLocation
	}

	return location, nil
}

// newClient builds an API client for one command invocation. withLocation
// controls whether the default location is injected into request queries;
// agency-level commands (locations, users me) opt out.
func (r *Runtime) newClient(cmd *cobra.Command, withLocation bool) (*ghlhttp.Client, error) {
	token := r.Store.Token()
	if token == "" {
		return nil, ErrNoToken
	}

	settings := r.Store.Load()

	opts := []ghlhttp.Option{
		ghlhttp.WithAPIVersion(settings.APIVersion),
	}

	if withLocation {
		location, err := r.requireLocation(cmd)
		if err != nil {
			return nil, err
		}

		opts = append(opts, ghlhttp.WithLocationID(location))
	}

	if viper.GetBool("debug") {
		opts = append(opts, ghlhttp.WithDebug(true), ghlhttp.WithLogger(stderrLogger{}))
	}

	opts = append(opts, r.ClientOptions...)

	return ghlhttp.NewClient(token, opts...), nil
}

// outputFormat resolves the format for one invocation: shorthand flags, then
// the --output flag (or GHL_OUTPUT), then the stored default.
func (r *Runtime) outputFormat(cmd *cobra.Command) string {
	root := cmd.Root()

	for _, shorthand := range []struct {
		flag   string
		format string
	}{
		{"json", output.FormatJSON},
		{"csv", output.FormatCSV},
		{"quiet", output.FormatQuiet},
	} {
		if on, err := root.PersistentFlags().GetBool(shorthand.flag); err == nil && on {
			return shorthand.format
		}
	}

	if format := viper.GetString("output"); format != "" {
		return format
	}

	return r.Store.Load().OutputFormat
}

// render prints data on the command's stdout in the resolved format.
func (r *Runtime) render(cmd *cobra.Command, data any, opts output.Options) error {
	opts.Format = r.outputFormat(cmd)
	opts.Writer = cmd.OutOrStdout()

	return output.Render(data, opts)
}

// quiet reports whether the invocation only wants IDs, so success banners
// stay out of piped output.
func (r *Runtime) quiet(cmd *cobra.Command) bool {
	return r.outputFormat(cmd) == output.FormatQuiet
}

// confirm prompts before a destructive action. --yes skips the prompt;
// anything but an explicit yes aborts.
func confirm(cmd *cobra.Command, prompt string) error {
	if yes, err := cmd.Flags().GetBool("yes"); err == nil && yes {
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return ErrAborted
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrAborted
	}
}

// addConfirmFlag registers the --yes escape hatch on destructive commands.
func addConfirmFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}

// listField returns the first of the named keys that holds a list. API list
// responses wrap results under a resource-specific key.
func listField(result map[string]any, keys ...string) []any {
	for _, key := range keys {
		if list, ok := result[key].([]any); ok {
			return list
		}
	}

	return []any{}
}

// recordField returns the first of the named keys that holds an object,
// falling back to the response itself. Single-resource responses usually
// wrap the record, but not on every endpoint.
func recordField(result map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if record, ok := result[key].(map[string]any); ok {
			return record
		}
	}

	return result
}

// setIfPresent adds a body field only when the flag was given.
func setIfPresent(body map[string]any, key, value string) {
	if value != "" {
		body[key] = value
	}
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}

	return false
}

// stringField returns the named field when it is a string.
func stringField(record map[string]any, key string) string {
	if value, ok := record[key].(string); ok {
		return value
	}

	return ""
}

// stderrLogger backs --debug output with plain key=value lines.
type stderrLogger struct{}

func (stderrLogger) log(level, msg string, fields map[string]interface{}) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s", level, msg)

	for key, value := range fields {
		fmt.Fprintf(&sb, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr, sb.String())
}

func (l stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }
