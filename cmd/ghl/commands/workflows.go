package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var workflowColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "status", Header: "Status"},
	{Key: "version", Header: "Version"},
}

// NewWorkflowsCommand creates the workflows command group.
func NewWorkflowsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"workflow"},
		Short:   "Manage workflows and automations",
	}

	cmd.AddCommand(newWorkflowsListCommand(runtime))
	cmd.AddCommand(newWorkflowsGetCommand(runtime))
	cmd.AddCommand(newWorkflowsTriggerCommand(runtime))

	return cmd
}

func newWorkflowsListCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/workflows/", nil)
			if err != nil {
				return fmt.Errorf("failed to list workflows: %w", err)
			}

			return runtime.render(cmd, listField(result, "workflows"), output.Options{
				Columns: workflowColumns,
				Title:   "Workflows",
			})
		},
	}
}

func newWorkflowsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get WORKFLOW_ID",
		Short: "Get workflow details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/workflows/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get workflow: %w", err)
			}

			return runtime.render(cmd, recordField(result, "workflow"), output.Options{
				Fields: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "name", Header: "Name"},
					{Key: "status", Header: "Status"},
					{Key: "version", Header: "Version"},
					{Key: "createdAt", Header: "Created"},
					{Key: "updatedAt", Header: "Updated"},
				},
			})
		},
	}
}

func newWorkflowsTriggerCommand(runtime *Runtime) *cobra.Command {
	var contactID string

	cmd := &cobra.Command{
		Use:   "trigger WORKFLOW_ID",
		Short: "Trigger a workflow for a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			// The enroll endpoint adds the contact to the workflow.
			result, err := client.Post(cmd.Context(), "/workflows/"+args[0]+"/enroll", map[string]any{
				"contactId": contactID,
			})
			if err != nil {
				return fmt.Errorf("failed to trigger workflow: %w", err)
			}

			if truthy(result["success"]) || truthy(result["enrolled"]) {
				output.Success(cmd.OutOrStdout(), "Contact %s enrolled in workflow %s", contactID, args[0])
			} else {
				output.Success(cmd.OutOrStdout(), "Workflow trigger sent for contact %s", contactID)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&contactID, "contact", "c", "", "contact ID to enroll")
	_ = cmd.MarkFlagRequired("contact")

	return cmd
}

func truthy(value any) bool {
	ok, _ := value.(bool)

	return ok
}
