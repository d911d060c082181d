package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var pipelineColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
}

var stageColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "position", Header: "Position"},
}

// NewPipelinesCommand creates the pipelines command group.
func NewPipelinesCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"pipeline"},
		Short:   "Manage pipelines and stages",
	}

	cmd.AddCommand(newPipelinesListCommand(runtime))
	cmd.AddCommand(newPipelinesGetCommand(runtime))
	cmd.AddCommand(newPipelinesStagesCommand(runtime))

	return cmd
}

func newPipelinesListCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/opportunities/pipelines", nil)
			if err != nil {
				return fmt.Errorf("failed to list pipelines: %w", err)
			}

			return runtime.render(cmd, listField(result, "pipelines"), output.Options{
				Columns: pipelineColumns,
				Title:   "Pipelines",
			})
		},
	}
}

func newPipelinesGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get PIPELINE_ID",
		Short: "Get pipeline details including stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/opportunities/pipelines/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get pipeline: %w", err)
			}

			pipeline := recordField(result, "pipeline")

			if runtime.outputFormat(cmd) == output.FormatJSON {
				return runtime.render(cmd, pipeline, output.Options{})
			}

			if err := runtime.render(cmd, pipeline, output.Options{
				Fields: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "name", Header: "Name"},
					{Key: "locationId", Header: "Location ID"},
				},
			}); err != nil {
				return err
			}

			stages := listField(pipeline, "stages")
			if len(stages) == 0 {
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\nStages:")

			return runtime.render(cmd, stages, output.Options{Columns: stageColumns})
		},
	}
}

func newPipelinesStagesCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stages PIPELINE_ID",
		Short: "List stages in a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/opportunities/pipelines/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get pipeline: %w", err)
			}

			pipeline := recordField(result, "pipeline")

			name := stringField(pipeline, "name")
			if name == "" {
				name = args[0]
			}

			return runtime.render(cmd, listField(pipeline, "stages"), output.Options{
				Columns: stageColumns,
				Title:   "Stages in Pipeline: " + name,
			})
		},
	}
}
