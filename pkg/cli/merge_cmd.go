package cli

import (
	"github.com/spf13/cobra"
)

func newMergeCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <base-doc-id> <incoming-doc-id>",
		Short: "Run a three-way merge between a base and incoming document",
		Example: `  revengine-cli merge doc-base doc-incoming
  revengine-cli merge doc-base doc-incoming --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Merge(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <merge-id>",
		Short: "Fetch a previously persisted merge run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetMerge(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	cmd.AddCommand(getCmd)

	var resolution string
	resolveCmd := &cobra.Command{
		Use:   "resolve <merge-id> <conflict-id>",
		Short: "Resolve a merge conflict",
		Example: `  revengine-cli merge resolve merge-123 conflict-456 --resolution accepted_base
  revengine-cli merge resolve merge-123 conflict-456 --resolution accepted_incoming`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.ResolveConflict(cmd.Context(), args[0], args[1], resolution)
		},
	}
	resolveCmd.Flags().StringVar(&resolution, "resolution", "", "accepted_base, accepted_incoming, or manual")
	cmd.AddCommand(resolveCmd)

	return cmd
}
