package cli

import (
	"github.com/spf13/cobra"
)

func newWorkflowCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage document review workflows",
	}

	createCmd := &cobra.Command{
		Use:   "create <document-id>",
		Short: "Start a new review workflow for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.CreateWorkflow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <workflow-id>",
		Short: "Fetch a workflow by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetWorkflow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	var eventType string
	advanceCmd := &cobra.Command{
		Use:   "advance <workflow-id>",
		Short: "Submit an event to advance a workflow's state",
		Example: `  revengine-cli workflow advance wf-123 --event review_started
  revengine-cli workflow advance wf-123 --event workflow_completed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.SubmitWorkflowEvent(cmd.Context(), args[0], eventType, nil)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	advanceCmd.Flags().StringVar(&eventType, "event", "", "event type to submit (required)")
	_ = advanceCmd.MarkFlagRequired("event")

	cmd.AddCommand(createCmd, getCmd, advanceCmd)
	return cmd
}
