package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI, returning the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host   string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "revengine-cli",
		Short:         "Document revision engine CLI",
		Long:          "Command-line interface for the document revision engine HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("REVENGINE_CLI_HOST"); v != "" {
					host = v
				}
			}
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "revision engine API host URL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")

	client := NewClient(host)
	originalPreRun := rootCmd.PersistentPreRunE
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if originalPreRun != nil {
			if err := originalPreRun(cmd, args); err != nil {
				return err
			}
		}
		client.BaseURL = host
		return nil
	}

	rootCmd.AddCommand(newCompareCmd(client))
	rootCmd.AddCommand(newMergeCmd(client))
	rootCmd.AddCommand(newWorkflowCmd(client))

	return rootCmd
}
