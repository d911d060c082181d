package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var locationColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Phone"},
	{Key: "address", Header: "Address"},
}

var locationFields = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Phone"},
	{Key: "address", Header: "Address"},
	{Key: "city", Header: "City"},
	{Key: "state", Header: "State"},
	{Key: "postalCode", Header: "Postal Code"},
	{Key: "country", Header: "Country"},
	{Key: "website", Header: "Website"},
	{Key: "timezone", Header: "Timezone"},
	{Key: "dateAdded", Header: "Created"},
}

// NewLocationsCommand creates the locations command group. These commands
// run at agency scope, so no default location is injected.
func NewLocationsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"location"},
		Short:   "Manage locations (sub-accounts)",
	}

	cmd.AddCommand(newLocationsListCommand(runtime))
	cmd.AddCommand(newLocationsGetCommand(runtime))
	cmd.AddCommand(newLocationsSwitchCommand(runtime))
	cmd.AddCommand(newLocationsCurrentCommand(runtime))

	return cmd
}

func newLocationsListCommand(runtime *Runtime) *cobra.Command {
	var (
		companyID string
		limit     int
		skip      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/locations/search", map[string]string{
				"limit":     strconv.Itoa(limit),
				"skip":      strconv.Itoa(skip),
				"companyId": companyID,
			})
			if err != nil {
				return fmt.Errorf("failed to list locations: %w", err)
			}

			return runtime.render(cmd, listField(result, "locations"), output.Options{
				Columns: locationColumns,
				Title:   "Locations",
			})
		},
	}

	cmd.Flags().StringVarP(&companyID, "company", "c", "", "filter by company/agency ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")
	cmd.Flags().IntVarP(&skip, "skip", "s", 0, "number to skip")

	return cmd
}

func newLocationsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get LOCATION_ID",
		Short: "Get location details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/locations/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}

			return runtime.render(cmd, recordField(result, "location"), output.Options{
				Fields: locationFields,
			})
		},
	}
}

func newLocationsSwitchCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "switch LOCATION_ID",
		Short: "Switch to a different default location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := runtime.Store.Load()
			settings.LocationID = args[0]

			if err := runtime.Store.Save(settings); err != nil {
				return err
			}

			output.Success(cmd.OutOrStdout(), "Switched to location: %s", args[0])

			return nil
		},
	}
}

func newLocationsCurrentCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current default location",
		RunE: func(cmd *cobra.Command, args []string) error {
			location := runtime.Store.LocationID()
			if location == "" {
				fmt.Fprintln(cmd.OutOrStdout(),
					"No default location set. Use 'ghl locations switch <id>' to set one.")

				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Current location: %s\n", location)

			return nil
		},
	}
}
