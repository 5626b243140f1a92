package cmd

import (
	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

const defaultHistoryLimit = 20

// historyCmd represents the history command.
var historyCmd = newHistoryCmd()

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans, cleans and restores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.History(cmd.Context(), domain.HistoryArgs{Limit: limit})
		},
	}

	cmd.Flags().IntVarP(&limit, limitFlagName, "n", defaultHistoryLimit, "number of records to show")

	return cmd
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
