package cmd

import (
	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

const (
	onlyFlagName   = "only"
	skipFlagName   = "skip"
	dryRunFlagName = "dry-run"
)

// selectionFlags narrow a batch to a subset of the candidates.
type selectionFlags struct {
	only   []string
	skip   []string
	dryRun bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.only, onlyFlagName, nil, "only include resources matching regex (can be repeated)")
	cmd.Flags().StringArrayVar(&f.skip, skipFlagName, nil, "leave out resources matching regex (can be repeated)")
	cmd.Flags().BoolVar(&f.dryRun, dryRunFlagName, false, "show what would change without writing anything")
}

// shrinkCmd represents the shrink command.
var shrinkCmd = newShrinkCmd()

func newShrinkCmd() *cobra.Command {
	var size int

	selection := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "shrink",
		Short: "Lower the max size import setting of textures",
		Long: `Set the max size import setting of the selected textures to --size. Textures
already at or below the target are left alone. Allowed sizes: 2048, 1024, 512, 256
and 128.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := domain.ValidateMaxSize(size); err != nil {
				return err
			}

			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Shrink(cmd.Context(), domain.ShrinkArgs{
				Target: size,
				Only:   selection.only,
				Skip:   selection.skip,
				DryRun: selection.dryRun,
			})
		},
	}

	cmd.Flags().IntVar(&size, "size", 1024, "target max size")
	selection.register(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(shrinkCmd)
}
