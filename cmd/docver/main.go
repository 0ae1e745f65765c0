package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/usishare/docver/internal/config"
	"github.com/usishare/docver/internal/fingerprint"
	"github.com/usishare/docver/internal/reconcile"
	"github.com/usishare/docver/internal/report"
	"github.com/usishare/docver/internal/store"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	dryRun    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docver",
	Short: "Bump a document version counter when its sources change",
	Long: `docver watches a fixed set of document source files and maintains a
persisted version counter. When the combined content of the watched files
differs from the fingerprint recorded on the last run, the counter advances
by exactly one and the generated version file is rewritten.

The version file keeps the exact "Version: N" shape the document build
consumes as its displayed version number.`,
	SilenceUsage: true,
}

var bumpCmd = &cobra.Command{
	Use:   "bump",
	Short: "Reconcile the watched files against the stored fingerprint",
	Long: `Bump computes the fingerprint of the watched source files, compares it
with the stored one, and on mismatch advances the version counter and
rewrites both store files. With unchanged sources it is a no-op and still
exits zero.

Both store files are created on first run (the version file as "Version: 0",
so the first real fingerprint bumps it to 1).`,
	RunE: runBump,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current version and whether the sources changed",
	Long: `Status reads the stores and the watched files without writing anything
and reports the current version number together with whether the sources
drifted from the last recorded fingerprint.`,
	RunE: runStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docver %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/docver/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Bump command flags
	bumpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without making changes")

	// Add commands
	rootCmd.AddCommand(bumpCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	logger := setupLogger()
	rep := report.New()

	cfg, err := loadConfig(logger)
	if err != nil {
		rep.Fail("failed to load config: %v", err)
		return err
	}

	stores := store.Pair{
		HashPath:    cfg.Stores.HashFile,
		VersionPath: cfg.Stores.VersionFile,
	}
	engine := reconcile.NewEngine(stores, cfg.Observed.Files, logger, dryRun)

	res, err := engine.Run()
	if err != nil {
		rep.Fail("reconcile failed: %v", err)
		return err
	}

	switch {
	case res.State == reconcile.StateAdvanced && dryRun:
		rep.Info("sources changed, would advance version %d -> %d", res.OldVersion, res.NewVersion)
	case res.State == reconcile.StateAdvanced:
		rep.Done("sources changed, version advanced %d -> %d", res.OldVersion, res.NewVersion)
	default:
		rep.Done("sources unchanged, version kept")
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := setupLogger()
	rep := report.New()

	cfg, err := loadConfig(logger)
	if err != nil {
		rep.Fail("failed to load config: %v", err)
		return err
	}

	// Status never writes, so missing stores are reported instead of created
	stores := store.Pair{
		HashPath:    cfg.Stores.HashFile,
		VersionPath: cfg.Stores.VersionFile,
	}

	ver, err := stores.ReadVersion()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rep.Warn("stores not initialized yet, run \"docver bump\" first")
		} else {
			rep.Fail("cannot read version store: %v", err)
		}
		return err
	}

	stored, err := stores.ReadFingerprint()
	if err != nil {
		rep.Fail("cannot read hash store: %v", err)
		return err
	}

	current, err := fingerprint.Compute(cfg.Observed.Files)
	if err != nil {
		rep.Fail("cannot fingerprint watched files: %v", err)
		return err
	}

	if stored == current {
		rep.Done("version %d, sources unchanged", ver)
	} else {
		rep.Info("version %d, sources changed since last bump", ver)
	}

	return nil
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format. Logs go to stderr: stdout stays clean
	// for the document build that wraps docver.
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	// An explicitly given config file must exist; the default path is
	// optional because the built-in defaults are a complete configuration.
	configPath := cfgFile
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "docver", "config.yaml")

		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			logger.Debug("no config file found, using built-in defaults")
			return config.Default(), nil
		}
	}

	logger.Info("loading configuration", "path", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"observed_files", len(cfg.Observed.Files),
		"hash_store", cfg.Stores.HashFile,
		"version_store", cfg.Stores.VersionFile)

	return cfg, nil
}
