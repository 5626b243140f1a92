package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

var topLimitFlag int

// topCmd represents the top command.
var topCmd = newTopCmd()

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the heaviest textures and other resources",
		Long: `Show the textures with the highest estimated memory cost and the other
resources with the largest size on disk, next to the totals of the whole scan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Top(cmd.Context(), domain.TopArgs{Limit: viper.GetInt(topLimitConfigKey)})
		},
	}

	cmd.Flags().IntVarP(&topLimitFlag, limitFlagName, "n", viper.GetInt(topLimitConfigKey), "entries per list")
	bindFlagToConfig(cmd.Flags().Lookup(limitFlagName), topLimitConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(topCmd)
}
