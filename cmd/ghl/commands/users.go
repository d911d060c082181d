package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var userColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "email", Header: "Email"},
	{Key: "role", Header: "Role"},
	{Key: "phone", Header: "Phone"},
}

var userFields = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "firstName", Header: "First Name"},
	{Key: "lastName", Header: "Last Name"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Phone"},
	{Key: "extension", Header: "Extension"},
	{Key: "role", Header: "Role"},
	{Key: "permissions", Header: "Permissions"},
	{Key: "dateAdded", Header: "Created"},
}

// NewUsersCommand creates the users command group.
func NewUsersCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users and team members",
	}

	cmd.AddCommand(newUsersListCommand(runtime))
	cmd.AddCommand(newUsersGetCommand(runtime))
	cmd.AddCommand(newUsersMeCommand(runtime))
	cmd.AddCommand(newUsersSearchCommand(runtime))

	return cmd
}

func newUsersListCommand(runtime *Runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users in the location",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/users/", map[string]string{
				"limit": strconv.Itoa(limit),
			})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return runtime.render(cmd, listField(result, "users"), output.Options{
				Columns: userColumns,
				Title:   "Users",
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")

	return cmd
}

func newUsersGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/users/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return runtime.render(cmd, recordField(result, "user"), output.Options{
				Fields: userFields,
			})
		},
	}
}

func newUsersMeCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Get the current authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Token-scoped, so no location is injected.
			client, err := runtime.newClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/users/me", nil)
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}

			return runtime.render(cmd, recordField(result, "user"), output.Options{
				Fields: userFields,
			})
		},
	}
}

func newUsersSearchCommand(runtime *Runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search for users by name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/users/search", map[string]string{
				"query": args[0],
				"limit": strconv.Itoa(limit),
			})
			if err != nil {
				return fmt.Errorf("failed to search users: %w", err)
			}

			return runtime.render(cmd, listField(result, "users"), output.Options{
				Columns: userColumns,
				Title:   fmt.Sprintf("Users matching '%s'", args[0]),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")

	return cmd
}
