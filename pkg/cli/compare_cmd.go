package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCompareCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <left-doc-id> <right-doc-id>",
		Short: "Run a block-alignment comparison between two documents",
		Example: `  revengine-cli compare doc-left doc-right
  revengine-cli compare doc-left doc-right --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Fetch a previously persisted compare run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetCompare(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	cmd.AddCommand(getCmd)

	return cmd
}

func printResult(cmd *cobra.Command, result map[string]any) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(os.Stdout, result)
	}
	for k, v := range result {
		fmt.Fprintf(os.Stdout, "%s: %v\n", k, v)
	}
	return nil
}
