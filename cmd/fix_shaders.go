package cmd

import (
	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

const defaultTargetShader = "Standard"

// fixShadersCmd represents the fix-shaders command.
var fixShadersCmd = newFixShadersCmd()

func newFixShadersCmd() *cobra.Command {
	var shader string

	selection := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "fix-shaders",
		Short: "Replace deprecated shaders on materials",
		Long: `Point every selected material that uses a deprecated shader at --shader.
Nothing is changed when the target shader cannot be found. Materials whose shader
family needs a manual fix are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.FixShaders(cmd.Context(), domain.FixShadersArgs{
				Target: shader,
				Only:   selection.only,
				Skip:   selection.skip,
				DryRun: selection.dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&shader, "shader", defaultTargetShader, "name of the replacement shader")
	selection.register(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(fixShadersCmd)
}
