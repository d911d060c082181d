package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand assembles the full ghl command tree around one runtime.
func NewRootCommand(runtime *Runtime, version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghl",
		Short: "Command-line interface for the GoHighLevel API v2",
		Long: `Command-line interface for the GoHighLevel API v2.

Manage contacts, calendars, opportunities, conversations, and more from
the command line.

Quick Start:
  1. Run 'ghl config set-token' to configure your API token
  2. Run 'ghl config set-location <location_id>' to set your default location
  3. Run 'ghl contacts list' to verify everything works

For more information on getting your API token, see:
https://highlevel.stoplight.io/docs/integrations/`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("output", "o", "", "output format (table, json, csv, quiet)")
	cmd.PersistentFlags().Bool("json", false, "output as JSON")
	cmd.PersistentFlags().Bool("csv", false, "output as CSV")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "output only IDs")
	cmd.PersistentFlags().String("location", "", "location ID override for this invocation")
	cmd.PersistentFlags().Bool("debug", false, "log HTTP requests and responses")

	_ = viper.BindPFlag("output", cmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	viper.SetEnvPrefix("GHL")
	viper.AutomaticEnv()

	cmd.AddCommand(NewVersionCommand(runtime, version, commit, date))
	cmd.AddCommand(NewConfigCommand(runtime))
	cmd.AddCommand(NewContactsCommand(runtime))
	cmd.AddCommand(NewCalendarsCommand(runtime))
	cmd.AddCommand(NewOpportunitiesCommand(runtime))
	cmd.AddCommand(NewConversationsCommand(runtime))
	cmd.AddCommand(NewWorkflowsCommand(runtime))
	cmd.AddCommand(NewLocationsCommand(runtime))
	cmd.AddCommand(NewUsersCommand(runtime))
	cmd.AddCommand(NewTagsCommand(runtime))
	cmd.AddCommand(NewPipelinesCommand(runtime))

	return cmd
}
