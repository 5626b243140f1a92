package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

const (
	backupDirFlagName     = "backup-dir"
	confirmPhraseFlagName = "confirm-phrase"
)

var cleanBackupDirFlag string

// cleanCmd represents the clean command.
var cleanCmd = newCleanCmd()

func newCleanCmd() *cobra.Command {
	selection := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Move unreferenced resources into a backup folder",
		Long: `Move the selected unreferenced resources, with their .meta sidecars, into a
timestamped backup folder next to the project (or below --backup-dir). The move needs
two confirmations: a yes/no question and typing ` + domain.ConfirmationPhrase + `. With --yes the phrase
must be passed with --confirm-phrase. Use "assetmaid restore" to undo a clean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Clean(cmd.Context(), domain.CleanArgs{
				Only:   selection.only,
				Skip:   selection.skip,
				DryRun: selection.dryRun,
			})
		},
	}

	selection.register(cmd)

	cmd.Flags().StringVar(&cleanBackupDirFlag, backupDirFlagName, viper.GetString(backupDirConfigKey), "folder receiving backup folders (default: next to the project)")
	bindFlagToConfig(cmd.Flags().Lookup(backupDirFlagName), backupDirConfigKey)

	cmd.Flags().StringVar(&confirmPhraseFlag, confirmPhraseFlagName, "", "confirmation phrase used with --yes")

	return cmd
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
