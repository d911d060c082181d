package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ghl-cli/ghl/internal/output"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigSetTokenCommand(runtime))
	cmd.AddCommand(newConfigSetLocationCommand(runtime))
	cmd.AddCommand(newConfigSetFormatCommand(runtime))
	cmd.AddCommand(newConfigShowCommand(runtime))
	cmd.AddCommand(newConfigClearCommand(runtime))

	return cmd
}

func newConfigSetTokenCommand(runtime *Runtime) *cobra.Command {
	var useKeyring bool

	cmd := &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Set the API token for authentication",
		Long: `Set the API token for authentication.

You can provide the token as an argument or enter it interactively.
The token is stored in ~/.ghl/credentials.yml or the system keyring.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) > 0 {
				token = args[0]
			} else {
				prompted, err := promptToken(cmd)
				if err != nil {
					return err
				}

				token = prompted
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return ErrEmptyToken
			}

			if err := runtime.Store.SetToken(token, useKeyring); err != nil {
				return err
			}

			output.Success(cmd.OutOrStdout(), "API token saved successfully")

			return nil
		},
	}

	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "store token in system keyring")

	return cmd
}

// promptToken reads the token without echoing when stdin is a terminal, and
// falls back to a plain line read (for piped input) when it is not.
func promptToken(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter your GoHighLevel API token: ")

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		raw, err := term.ReadPassword(int(file.Fd()))

		fmt.Fprintln(cmd.OutOrStdout())

		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}

		return string(raw), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token: %w", err)
	}

	return line, nil
}

func newConfigSetLocationCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set-location LOCATION_ID",
		Short: "Set the default location (sub-account) ID",
		Long: `Set the default location (sub-account) ID.

Most API operations require a location ID. This sets the default so you
don't need to specify it for every command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := runtime.Store.Load()
			settings.LocationID = args[0]

			if err := runtime.Store.Save(settings); err != nil {
				return err
			}

			output.Success(cmd.OutOrStdout(), "Default location set to: %s", args[0])

			return nil
		},
	}
}

func newConfigSetFormatCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set-format FORMAT",
		Short: "Set the default output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case output.FormatTable, output.FormatJSON, output.FormatCSV:
			default:
				return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, args[0])
			}

			settings := runtime.Store.Load()
			settings.OutputFormat = args[0]

			if err := runtime.Store.Save(settings); err != nil {
				return err
			}

			output.Success(cmd.OutOrStdout(), "Default output format set to: %s", args[0])

			return nil
		},
	}
}

func newConfigShowCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := runtime.Store.Load()

			location := settings.LocationID
			if location == "" {
				location = "Not set"
			}

			tokenState := "Not set"
			if runtime.Store.Token() != "" {
				tokenState = "Configured"
			}

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "\nGHL CLI Configuration")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Location ID:    %s\n", location)
			fmt.Fprintf(out, "  API Version:    %s\n", settings.APIVersion)
			fmt.Fprintf(out, "  Output Format:  %s\n", settings.OutputFormat)
			fmt.Fprintf(out, "  API Token:      %s\n", tokenState)
			fmt.Fprintf(out, "\n  Config file: %s\n", filepath.Join(runtime.Store.Dir(), "config.yml"))

			return nil
		},
	}
}

func newConfigClearCommand(runtime *Runtime) *cobra.Command {
	var (
		clearToken bool
		clearAll   bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearToken && !clearAll {
				return ErrClearTargetRequired
			}

			if err := confirm(cmd, "Are you sure you want to clear the configuration?"); err != nil {
				return err
			}

			if err := runtime.Store.ClearToken(); err != nil {
				return err
			}

			if clearAll {
				if err := runtime.Store.ClearSettings(); err != nil {
					return err
				}

				output.Success(cmd.OutOrStdout(), "All configuration cleared")

				return nil
			}

			output.Success(cmd.OutOrStdout(), "API token cleared")

			return nil
		},
	}

	cmd.Flags().BoolVar(&clearToken, "token", false, "clear the stored API token")
	cmd.Flags().BoolVar(&clearAll, "all", false, "clear all configuration")
	addConfirmFlag(cmd)

	return cmd
}
