package main

import (
	"fmt"

	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/catalogue"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/config"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/metrics"
	"github.com/alvinalaphat/Automatic-Class-Scheduler/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// --- Global Command Variables ---
var (
	configPath    string
	logLevel      string
	cataloguePath string
	eventArgs     []string
	excludeArgs   []string
	mode          string
	frontier      uint
	outPath       string
	metricsPath   string
	searchLimit   int

	// Populated by PersistentPreRunE
	settings config.Config
	logger   *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "scheduler",
		Short:         "Build conflict-free course schedules from a catalogue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Search for a maximum-weight schedule of the selected entries",
		Args:  cobra.NoArgs,
		RunE:  runBuild, // Defined in cmd_build.go
	}

	searchCmd = &cobra.Command{
		Use:   "search TERMS...",
		Short: "Fuzzy-search the catalogue by name",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch, // Defined in cmd_search.go
	}

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Display the selected entries, their sections and their conflicts",
		Args:  cobra.NoArgs,
		RunE:  runShow, // Defined in cmd_search.go
	}

	interactiveCmd = &cobra.Command{
		Use:     "interactive",
		Short:   "Select entries and build schedules from an interactive shell",
		Aliases: []string{"i"},
		Args:    cobra.NoArgs,
		RunE:    runInteractive, // Defined in interactive.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file; defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	rootCmd.PersistentFlags().StringVar(&cataloguePath, "catalogue", "", "Catalogue JSON file")
	_ = rootCmd.MarkPersistentFlagRequired("catalogue")

	buildCmd.Flags().StringArrayVar(&eventArgs, "event", nil, "Entry to schedule as ID or ID:WEIGHT (repeatable)")
	buildCmd.Flags().StringArrayVar(&excludeArgs, "exclude", nil, "Blocked window as START-END (repeatable)")
	buildCmd.Flags().StringVar(&mode, "mode", "", "Search mode, \"exact\" or \"approx\"; overrides the configuration")
	buildCmd.Flags().UintVar(&frontier, "frontier", 0, "Frontier capacity in approx mode; overrides the configuration")
	buildCmd.Flags().StringVar(&outPath, "out", "", "File where the JSON report is written; if empty, it is written to the standard output")
	buildCmd.Flags().StringVar(&metricsPath, "metrics", "", "File where search metrics are written in the Prometheus text format")
	_ = buildCmd.MarkFlagRequired("event")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of matches")

	showCmd.Flags().StringArrayVar(&eventArgs, "event", nil, "Entry to display as ID or ID:WEIGHT (repeatable)")
	showCmd.Flags().StringArrayVar(&excludeArgs, "exclude", nil, "Blocked window as START-END (repeatable)")

	interactiveCmd.Flags().StringVar(&metricsPath, "metrics", "", "File where search metrics are written on exit in the Prometheus text format")

	rootCmd.AddCommand(buildCmd, searchCmd, showCmd, interactiveCmd)
}

func setup(cmd *cobra.Command) error {
	settings = config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	var err error
	logger, err = newLogger(settings.Level())
	if err != nil {
		return fmt.Errorf("cannot build logger: %v", err)
	}
	logger.Debug("configuration loaded", zap.String("command", cmd.Name()), zap.Any("settings", settings))
	return nil
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		loggerConfig = zap.NewDevelopmentConfig()
	}
	loggerConfig.Level = zap.NewAtomicLevelAt(level)
	return loggerConfig.Build()
}

// newSession loads the catalogue and wires a session with a private metrics registry
func newSession() (*session.Session, *catalogue.Catalogue, *prometheus.Registry, error) {
	cat, err := catalogue.Load(cataloguePath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("catalogue loaded", zap.String("path", cataloguePath), zap.Int("entries", cat.Len()))

	registry := prometheus.NewRegistry()
	return session.New(cat, settings, logger, metrics.New(registry)), cat, registry, nil
}

func writeMetrics(registry *prometheus.Registry) error {
	if metricsPath == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsPath, registry); err != nil {
		return fmt.Errorf("cannot write metrics: %v", err)
	}
	return nil
}
