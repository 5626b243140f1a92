package cmd

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "assetmaid", configBaseName)
	assert.Equal(t, "assetmaid.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "scan.roots", rootsConfigKey)
	assert.Equal(t, "clean.backup_dir", backupDirConfigKey)
	assert.Equal(t, ".assetmaid-reports", defaultReportsDir)
	assert.Equal(t, "ASSETMAID", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, defaultReportsDir, viper.GetString(outputFlagName))
	assert.Equal(t, domain.DefaultTopLimit, viper.GetInt(topLimitConfigKey))
	assert.Equal(t, []string{"Poiyomi"}, viper.GetStringSlice(manualFixConfigKey))
	assert.Equal(t, 4.0, viper.GetFloat64(bppConfigKey+".uncompressed_32bit"))
	assert.Contains(t, viper.GetStringSlice(formatsConfigKey+".compressed_4bpp"), "DXT1")
}

func TestFormatPolicyFromConfig(t *testing.T) {
	texture := m.ResourceNode{
		Kind:        m.KindTexture,
		PixelFormat: "RGBA32",
		Dimensions:  m.Dimensions{Width: 16, Height: 16},
	}

	assert.Equal(t, int64(1024), formatPolicyFromConfig().EstimateCost(texture))

	key := bppConfigKey + ".uncompressed_32bit"
	viper.Set(key, 2.0)
	t.Cleanup(func() { viper.Set(key, 4.0) })

	assert.Equal(t, int64(512), formatPolicyFromConfig().EstimateCost(texture))
}

func TestShaderPolicyFromConfig(t *testing.T) {
	policy := shaderPolicyFromConfig()

	assert.Equal(t, domain.DefaultShaderPolicy(), policy)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}
