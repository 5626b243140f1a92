package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "assetmaid"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."
	dotenvFileName   = ".env"

	projectFlagName  = "project"
	manifestFlagName = "manifest"
	rootFlagName     = "root"
	outputFlagName   = "output"
	excludeFlagName  = "exclude"
	verboseFlagName  = "verbose"
	logFileFlagName  = "log-file"
	yesFlagName      = "yes"
	limitFlagName    = "limit"

	projectConfigKey     = "project"
	manifestConfigKey    = "manifest"
	rootsConfigKey       = "scan.roots"
	excludeConfigKey     = "paths.exclude"
	parallelConfigKey    = "scan.parallel"
	platformConfigKey    = "scan.platform"
	cacheSizeConfigKey   = "scan.cache_size"
	topLimitConfigKey    = "top.limit"
	backupDirConfigKey   = "clean.backup_dir"
	formatsConfigKey     = "policy.formats"
	bppConfigKey         = "policy.bytes_per_pixel"
	bppDefaultConfigKey  = bppConfigKey + ".default"
	manualFixConfigKey   = "policy.manual_fix_families"
	deprecatedConfigKey  = "policy.deprecated_keywords"
	defaultProjectFolder = "."
	defaultParallel      = 1
	defaultCacheSize     = 4096

	defaultReportsDir = ".assetmaid-reports"

	envPrefix = "ASSETMAID"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".assetmaid.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	// A missing .env is the common case.
	_ = godotenv.Load(filepath.Join(configFolderPath, dotenvFileName))

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(projectConfigKey, defaultProjectFolder)
	viper.SetDefault(manifestConfigKey, "")
	viper.SetDefault(rootsConfigKey, []string{})
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(platformConfigKey, "")
	viper.SetDefault(cacheSizeConfigKey, defaultCacheSize)
	viper.SetDefault(topLimitConfigKey, domain.DefaultTopLimit)
	viper.SetDefault(backupDirConfigKey, "")
	viper.SetDefault(outputFlagName, defaultReportsDir)

	for class, formats := range domain.DefaultFormatClasses() {
		viper.SetDefault(formatsConfigKey+"."+string(class), formats)
	}

	for class, bpp := range domain.DefaultBytesPerPixelTable() {
		viper.SetDefault(bppConfigKey+"."+string(class), bpp)
	}

	viper.SetDefault(bppDefaultConfigKey, domain.DefaultBytesPerPixel)

	shaders := domain.DefaultShaderPolicy()
	viper.SetDefault(manualFixConfigKey, shaders.ManualFixFamilies)
	viper.SetDefault(deprecatedConfigKey, shaders.DeprecatedKeywords)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// formatPolicyFromConfig builds the bytes-per-pixel policy from policy.* keys.
func formatPolicyFromConfig() domain.FormatPolicy {
	defaultClasses := domain.DefaultFormatClasses()
	defaultBPP := domain.DefaultBytesPerPixelTable()

	known := make([]string, 0, len(defaultClasses))
	for class := range defaultClasses {
		known = append(known, string(class))
	}

	classes := make(map[domain.FormatClass][]string)
	for _, class := range subKeys(formatsConfigKey, known) {
		classes[domain.FormatClass(class)] = viper.GetStringSlice(formatsConfigKey + "." + class)
	}

	known = known[:0]
	for class := range defaultBPP {
		known = append(known, string(class))
	}

	bytesPerPixel := make(map[domain.FormatClass]float64)
	for _, class := range subKeys(bppConfigKey, known) {
		if class == "default" {
			continue
		}

		bytesPerPixel[domain.FormatClass(class)] = viper.GetFloat64(bppConfigKey + "." + class)
	}

	return domain.NewFormatPolicy(classes, bytesPerPixel, viper.GetFloat64(bppDefaultConfigKey))
}

// subKeys lists the children of a config map. Viper returns the map of the first
// source defining it, so the built-in children are always included.
func subKeys(key string, builtin []string) []string {
	keys := append([]string(nil), builtin...)

	for child := range viper.GetStringMap(key) {
		if !slices.Contains(keys, child) {
			keys = append(keys, child)
		}
	}

	return keys
}

func shaderPolicyFromConfig() domain.ShaderPolicy {
	return domain.ShaderPolicy{
		ManualFixFamilies:  viper.GetStringSlice(manualFixConfigKey),
		DeprecatedKeywords: viper.GetStringSlice(deprecatedConfigKey),
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
