package commands

import (
	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(runtime *Runtime, version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runtime.render(cmd, map[string]any{
				"version": version,
				"commit":  commit,
				"built":   date,
			}, output.Options{
				Fields: []output.Column{
					{Key: "version", Header: "Version"},
					{Key: "commit", Header: "Commit"},
					{Key: "built", Header: "Built"},
				},
			})
		},
	}
}
