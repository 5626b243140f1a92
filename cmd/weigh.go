package cmd

import (
	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

// weighCmd represents the weigh command.
var weighCmd = newWeighCmd()

func newWeighCmd() *cobra.Command {
	flags := &listingFlags{}

	cmd := &cobra.Command{
		Use:   "weigh",
		Short: "Rank referenced resources by estimated memory cost",
		Long: `List every resource reachable from a root document with its estimated cost.
Textures are weighed by their in-memory size after import; other resources by their
size on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := flags.args("Resource weights")
			if err != nil {
				return err
			}

			args.Filter.Reachability = domain.ReachabilityReachable

			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.List(cmd.Context(), args)
		},
	}

	flags.register(cmd, "")

	return cmd
}

func init() {
	rootCmd.AddCommand(weighCmd)
}
