package cmd

import (
	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

var (
	auditLimitFlag       int
	auditInteractiveFlag bool
)

// auditCmd represents the audit command.
var auditCmd = newAuditCmd()

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List textures and materials worth optimizing",
		Long: `List uncompressed textures, materials using deprecated shaders and materials
whose shader family can only be fixed by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Audit(cmd.Context(), domain.AuditArgs{
				Limit:       auditLimitFlag,
				Interactive: auditInteractiveFlag,
			})
		},
	}

	cmd.Flags().IntVarP(&auditLimitFlag, limitFlagName, "n", 0, "show at most this many entries (0 for all)")
	cmd.Flags().BoolVarP(&auditInteractiveFlag, interactiveFlagName, "i", false, "browse the listing interactively on a terminal")

	return cmd
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
