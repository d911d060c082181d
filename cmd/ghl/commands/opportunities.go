package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var opportunityColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "contact.name", Header: "Contact"},
	{Key: "pipelineStageId", Header: "Stage ID"},
	{Key: "status", Header: "Status"},
	{Key: "monetaryValue", Header: "Value"},
}

var opportunityFields = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "contact.id", Header: "Contact ID"},
	{Key: "contact.name", Header: "Contact Name"},
	{Key: "contact.email", Header: "Contact Email"},
	{Key: "pipelineId", Header: "Pipeline ID"},
	{Key: "pipelineStageId", Header: "Stage ID"},
	{Key: "status", Header: "Status"},
	{Key: "monetaryValue", Header: "Monetary Value"},
	{Key: "source", Header: "Source"},
	{Key: "dateAdded", Header: "Created"},
	{Key: "dateUpdated", Header: "Updated"},
}

// NewOpportunitiesCommand creates the opportunities command group.
func NewOpportunitiesCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "opportunities",
		Aliases: []string{"opportunity", "opps"},
		Short:   "Manage opportunities (pipeline deals)",
	}

	cmd.AddCommand(newOpportunitiesListCommand(runtime))
	cmd.AddCommand(newOpportunitiesGetCommand(runtime))
	cmd.AddCommand(newOpportunitiesCreateCommand(runtime))
	cmd.AddCommand(newOpportunitiesUpdateCommand(runtime))
	cmd.AddCommand(newOpportunitiesMoveCommand(runtime))
	cmd.AddCommand(newOpportunitiesDeleteCommand(runtime))
	cmd.AddCommand(newOpportunitiesStatusCommand(runtime, "won"))
	cmd.AddCommand(newOpportunitiesStatusCommand(runtime, "lost"))

	return cmd
}

func newOpportunitiesListCommand(runtime *Runtime) *cobra.Command {
	var (
		pipelineID string
		stageID    string
		status     string
		contactID  string
		limit      int
		skip       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/opportunities/search", map[string]string{
				"limit":           strconv.Itoa(limit),
				"skip":            strconv.Itoa(skip),
				"pipelineId":      pipelineID,
				"pipelineStageId": stageID,
				"status":          status,
				"contactId":       contactID,
			})
			if err != nil {
				return fmt.Errorf("failed to list opportunities: %w", err)
			}

			return runtime.render(cmd, listField(result, "opportunities"), output.Options{
				Columns: opportunityColumns,
				Title:   "Opportunities",
			})
		},
	}

	cmd.Flags().StringVarP(&pipelineID, "pipeline", "p", "", "filter by pipeline ID")
	cmd.Flags().StringVarP(&stageID, "stage", "s", "", "filter by stage ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (open, won, lost, abandoned)")
	cmd.Flags().StringVar(&contactID, "contact", "", "filter by contact ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")
	cmd.Flags().IntVar(&skip, "skip", 0, "number to skip")

	return cmd
}

func newOpportunitiesGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get OPPORTUNITY_ID",
		Short: "Get opportunity details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/opportunities/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get opportunity: %w", err)
			}

			return runtime.render(cmd, recordField(result, "opportunity"), output.Options{
				Fields: opportunityFields,
			})
		},
	}
}

func newOpportunitiesCreateCommand(runtime *Runtime) *cobra.Command {
	var (
		contactID  string
		pipelineID string
		stageID    string
		name       string
		value      float64
		status     string
		source     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new opportunity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			location, err := runtime.requireLocation(cmd)
			if err != nil {
				return err
			}

			body := map[string]any{
				"contactId":       contactID,
				"pipelineId":      pipelineID,
				"pipelineStageId": stageID,
				"name":            name,
				"status":          status,
				"locationId":      location,
			}

			if cmd.Flags().Changed("value") {
				body["monetaryValue"] = value
			}

			setIfPresent(body, "source", source)

			result, err := client.Post(cmd.Context(), "/opportunities/", body)
			if err != nil {
				return fmt.Errorf("failed to create opportunity: %w", err)
			}

			opportunity := recordField(result, "opportunity")

			if runtime.quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), stringField(opportunity, "id"))

				return nil
			}

			output.Success(cmd.OutOrStdout(), "Opportunity created: %s", stringField(opportunity, "id"))

			return runtime.render(cmd, opportunity, output.Options{Fields: opportunityFields})
		},
	}

	cmd.Flags().StringVarP(&contactID, "contact", "c", "", "contact ID")
	cmd.Flags().StringVarP(&pipelineID, "pipeline", "p", "", "pipeline ID")
	cmd.Flags().StringVarP(&stageID, "stage", "s", "", "pipeline stage ID")
	cmd.Flags().StringVarP(&name, "name", "n", "", "opportunity name")
	cmd.Flags().Float64VarP(&value, "value", "v", 0, "monetary value")
	cmd.Flags().StringVar(&status, "status", "open", "status (open, won, lost, abandoned)")
	cmd.Flags().StringVar(&source, "source", "", "lead source")
	_ = cmd.MarkFlagRequired("contact")
	_ = cmd.MarkFlagRequired("pipeline")
	_ = cmd.MarkFlagRequired("stage")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newOpportunitiesUpdateCommand(runtime *Runtime) *cobra.Command {
	var (
		name   string
		value  float64
		status string
		source string
	)

	cmd := &cobra.Command{
		Use:   "update OPPORTUNITY_ID",
		Short: "Update an opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}

			setIfPresent(body, "name", name)
			setIfPresent(body, "status", status)
			setIfPresent(body, "source", source)

			if cmd.Flags().Changed("value") {
				body["monetaryValue"] = value
			}

			if len(body) == 0 {
				return ErrNoFieldsToUpdate
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Put(cmd.Context(), "/opportunities/"+args[0], body)
			if err != nil {
				return fmt.Errorf("failed to update opportunity: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Opportunity updated: %s", args[0])

			return runtime.render(cmd, recordField(result, "opportunity"), output.Options{
				Fields: opportunityFields,
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().Float64VarP(&value, "value", "v", 0, "new monetary value")
	cmd.Flags().StringVar(&status, "status", "", "new status (open, won, lost, abandoned)")
	cmd.Flags().StringVar(&source, "source", "", "new source")

	return cmd
}

func newOpportunitiesMoveCommand(runtime *Runtime) *cobra.Command {
	var stageID string

	cmd := &cobra.Command{
		Use:   "move OPPORTUNITY_ID",
		Short: "Move an opportunity to a different stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Put(cmd.Context(), "/opportunities/"+args[0], map[string]any{
				"pipelineStageId": stageID,
			})
			if err != nil {
				return fmt.Errorf("failed to move opportunity: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Opportunity moved to stage: %s", stageID)

			return runtime.render(cmd, recordField(result, "opportunity"), output.Options{
				Fields: opportunityFields,
			})
		},
	}

	cmd.Flags().StringVarP(&stageID, "stage", "s", "", "target stage ID")
	_ = cmd.MarkFlagRequired("stage")

	return cmd
}

func newOpportunitiesDeleteCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete OPPORTUNITY_ID",
		Short: "Delete an opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirm(cmd, "Are you sure you want to delete this opportunity?"); err != nil {
				return err
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.Delete(cmd.Context(), "/opportunities/"+args[0], nil); err != nil {
				return fmt.Errorf("failed to delete opportunity: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Opportunity deleted: %s", args[0])

			return nil
		},
	}

	addConfirmFlag(cmd)

	return cmd
}

// newOpportunitiesStatusCommand builds the won/lost shortcuts, which both
// hit the status endpoint.
func newOpportunitiesStatusCommand(runtime *Runtime, status string) *cobra.Command {
	return &cobra.Command{
		Use:   status + " OPPORTUNITY_ID",
		Short: "Mark an opportunity as " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.Put(cmd.Context(), "/opportunities/"+args[0]+"/status", map[string]any{
				"status": status,
			}); err != nil {
				return fmt.Errorf("failed to mark opportunity as %s: %w", status, err)
			}

			output.Success(cmd.OutOrStdout(), "Opportunity marked as %s: %s", status, args[0])

			return nil
		},
	}
}
