package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// restoreCmd represents the restore command.
var restoreCmd = newRestoreCmd()

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-folder>",
		Short: "Move the resources of a backup folder back into the project",
		Long: `Read the relocation journal of a backup folder written by "assetmaid clean"
and move every item back to where it came from. Files that exist again in the project
are left untouched and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve backup folder: %w", err)
			}

			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Restore(cmd.Context(), domain.RestoreArgs{BackupPath: m.Path(backup)})
		},
	}
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
