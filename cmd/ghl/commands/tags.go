package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var tagColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
}

// NewTagsCommand creates the tags command group.
func NewTagsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}

	cmd.AddCommand(newTagsListCommand(runtime))
	cmd.AddCommand(newTagsGetCommand(runtime))
	cmd.AddCommand(newTagsCreateCommand(runtime))
	cmd.AddCommand(newTagsDeleteCommand(runtime))

	return cmd
}

func newTagsListCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags in the location",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/locations/tags", nil)
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}

			return runtime.render(cmd, listField(result, "tags"), output.Options{
				Columns: tagColumns,
				Title:   "Tags",
			})
		},
	}
}

func newTagsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get TAG_ID",
		Short: "Get tag details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/locations/tags/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get tag: %w", err)
			}

			return runtime.render(cmd, recordField(result, "tag"), output.Options{
				Fields: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "name", Header: "Name"},
					{Key: "dateAdded", Header: "Created"},
				},
			})
		},
	}
}

func newTagsCreateCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Post(cmd.Context(), "/locations/tags", map[string]any{
				"name": args[0],
			})
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}

			tag := recordField(result, "tag")

			if runtime.quiet(cmd) {
				id := stringField(tag, "id")
				if id == "" {
					id = stringField(tag, "name")
				}

				fmt.Fprintln(cmd.OutOrStdout(), id)

				return nil
			}

			output.Success(cmd.OutOrStdout(), "Tag created: %s", args[0])

			return nil
		},
	}
}

func newTagsDeleteCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete TAG_ID",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirm(cmd, "Are you sure you want to delete this tag?"); err != nil {
				return err
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.Delete(cmd.Context(), "/locations/tags/"+args[0], nil); err != nil {
				return fmt.Errorf("failed to delete tag: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Tag deleted: %s", args[0])

			return nil
		},
	}

	addConfirmFlag(cmd)

	return cmd
}
