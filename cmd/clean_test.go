package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

func TestCleanCmd(t *testing.T) {
	mockWorkflow := installMockWorkflow(t)
	mockWorkflow.On("Clean", mock.Anything, domain.CleanArgs{
		Only:   []string{`\.wav$`},
		DryRun: true,
	}).Return(nil).Once()

	cmd, _ := newTestRoot(newCleanCmd())
	cmd.SetArgs([]string{"clean", "--only", `\.wav$`, "--dry-run"})

	require.NoError(t, cmd.Execute())
}

func TestCleanCmd_ConfirmationFlags(t *testing.T) {
	mockWorkflow := installMockWorkflow(t)
	mockWorkflow.On("Clean", mock.Anything, mock.Anything).Return(nil).Once()

	clean := newCleanCmd()
	t.Cleanup(func() {
		bindFlagToConfig(newCleanCmd().Flags().Lookup(backupDirFlagName), backupDirConfigKey)
		confirmPhraseFlag = ""
	})

	cmd, _ := newTestRoot(clean)
	cmd.SetArgs([]string{"clean", "--yes", "--confirm-phrase", "CLEAN", "--backup-dir", "/var/backups"})

	require.NoError(t, cmd.Execute())

	assert.True(t, yesFlag)
	assert.Equal(t, "CLEAN", confirmPhraseFlag)
	assert.Equal(t, "/var/backups", viper.GetString(backupDirConfigKey))
}

func TestRestoreCmd(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "Demo_RemovedAssets_20240301_103015")

	mockWorkflow := installMockWorkflow(t)
	mockWorkflow.On("Restore", mock.Anything, domain.RestoreArgs{BackupPath: m.Path(backup)}).Return(nil).Once()

	cmd, _ := newTestRoot(newRestoreCmd())
	cmd.SetArgs([]string{"restore", backup})

	require.NoError(t, cmd.Execute())
}

func TestRestoreCmd_RequiresBackupFolder(t *testing.T) {
	installMockWorkflow(t)

	cmd, _ := newTestRoot(newRestoreCmd())
	cmd.SetArgs([]string{"restore"})

	assert.Error(t, cmd.Execute())
}
