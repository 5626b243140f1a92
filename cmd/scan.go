package cmd

import (
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the project and print a summary",
		Long: `Walk the dependency graph from the root documents, weigh every resource and
print the totals. Each scan is recorded in the history database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Scan(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
