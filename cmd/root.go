// Package cmd provides the root command and CLI setup for assetmaid.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	"assetmaid.dev/pkg/assetmaid/internal/controller"
	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// workflow is built on first use from the parsed flags; tests replace it with a mock.
var workflow domain.Workflow

// reportStore is closed after every command that opened it.
var reportStore adapter.ReportStore

var (
	projectFlag          string
	manifestFlag         string
	rootsFlag            []string
	excludePatterns      []string
	reportsOutputDirFlag string
	verboseFlag          bool
	logFileFlag          string
	yesFlag              bool
	confirmPhraseFlag    string
)

const rootLongDescription = `Assetmaid audits the content of a game project. It walks the dependency
graph from the project's root documents (scenes), estimates what every reachable
resource costs in memory, flags unoptimized textures and deprecated shaders, and moves
unreferenced resources into a backup folder that can be restored later.

Settings are read from assetmaid.yaml, from ASSETMAID_* environment variables (a .env
file is honored) and from flags.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assetmaid",
		Short: "Game project content audit tool",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			closeReportStore()
		},
		SilenceUsage: true,
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&projectFlag, projectFlagName, "p", viper.GetString(projectConfigKey), "project directory (contains Assets/)")
	bindFlagToConfig(flags.Lookup(projectFlagName), projectConfigKey)

	flags.StringVarP(&manifestFlag, manifestFlagName, "m", viper.GetString(manifestConfigKey), "read a project manifest export instead of the project directory")
	bindFlagToConfig(flags.Lookup(manifestFlagName), manifestConfigKey)

	flags.StringArrayVarP(&rootsFlag, rootFlagName, "r", viper.GetStringSlice(rootsConfigKey), "root document to scan from (can be repeated, default: every scene)")
	bindFlagToConfig(flags.Lookup(rootFlagName), rootsConfigKey)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude resources matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringVarP(&reportsOutputDirFlag, outputFlagName, "o", viper.GetString(outputFlagName), "output directory for reports and history")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	flags.StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename)")
	flags.BoolVarP(&yesFlag, yesFlagName, "y", false, "answer yes to confirmation questions")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// currentWorkflow returns the workflow, building it from configuration on first use.
func currentWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	if workflow != nil {
		return workflow, nil
	}

	wf, err := newWorkflow(cmd)
	if err != nil {
		return nil, err
	}

	workflow = wf

	return workflow, nil
}

func newWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	ctx := cmd.Context()
	fs := adapter.NewLocalProjectFSAdapter()

	provider, err := newContentProvider(ctx, fs)
	if err != nil {
		return nil, err
	}

	filter, err := domain.NewPathFilter(domain.DefaultContentPrefix, viper.GetStringSlice(excludeConfigKey))
	if err != nil {
		return nil, err
	}

	scanner := domain.NewScanner(provider, filter, formatPolicyFromConfig(), shaderPolicyFromConfig())
	journal := adapter.NewYAMLJournalStore(fs)
	relocator := domain.NewRelocator(fs, journal, backupRoot(provider.ProjectRoot()))
	restorer := domain.NewRestorer(fs, journal)
	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))

	var reports adapter.ReportStore

	store, err := adapter.NewSQLiteReportStore(ctx, fs, m.Path(viper.GetString(outputFlagName)))
	if err != nil {
		slog.Warn("History is disabled", "error", err)
	} else {
		reports = store
		reportStore = store
	}

	return domain.NewWorkflow(provider, reports, ui, newConfirmer(cmd), scanner, relocator, restorer), nil
}

func newContentProvider(ctx context.Context, fs adapter.ProjectFSAdapter) (adapter.ContentProvider, error) {
	if manifest := strings.TrimSpace(viper.GetString(manifestConfigKey)); manifest != "" {
		path, err := filepath.Abs(manifest)
		if err != nil {
			return nil, fmt.Errorf("resolve manifest: %w", err)
		}

		provider, err := adapter.NewManifestProvider(ctx, fs, m.Path(path))
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}

		return provider, nil
	}

	root, err := filepath.Abs(viper.GetString(projectConfigKey))
	if err != nil {
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	provider, err := adapter.NewUnityProject(fs, adapter.UnityProjectOptions{
		Root:      root,
		Roots:     parsePaths(viper.GetStringSlice(rootsConfigKey)),
		Platform:  viper.GetString(platformConfigKey),
		Parallel:  viper.GetInt(parallelConfigKey),
		CacheSize: viper.GetInt(cacheSizeConfigKey),
	})
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}

	return provider, nil
}

// backupRoot is clean.backup_dir, or the folder containing the project.
func backupRoot(projectRoot m.Path) m.Path {
	if dir := strings.TrimSpace(viper.GetString(backupDirConfigKey)); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return m.Path(abs)
		}

		return m.Path(dir)
	}

	return m.Path(filepath.Dir(string(projectRoot)))
}

func newConfirmer(cmd *cobra.Command) controller.Confirmer {
	if yesFlag {
		return controller.StaticConfirmer{Approve: true, Phrase: confirmPhraseFlag}
	}

	return controller.NewPromptConfirmer(cmd)
}

func closeReportStore() {
	if reportStore == nil {
		return
	}

	if err := reportStore.Close(); err != nil {
		slog.Warn("Failed to close history", "error", err)
	}

	reportStore = nil
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
