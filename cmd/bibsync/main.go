// Package main provides the bibsync CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibsync/internal/config"
	"github.com/matsen/bibsync/internal/i18n"
	"github.com/matsen/bibsync/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// verbose switches logging to zap's development config
	verbose bool
	// logger is built before every command runs
	logger = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibsync",
	Short: "BibTeX interchange for a typed publication library",
	Long: `bibsync imports BibTeX into a library of typed publications and exports
them back, resolving journals and conferences against a venue registry.

Data is stored in git-versionable JSONL with ephemeral SQLite for queries.
All commands output JSON by default; use --human for text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.Version = Version
}

// setup loads .env overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	return nil
}

// getStartingDirectory returns the directory to start searching for a repository.
// Checks global config library_path first, then current working directory.
func getStartingDirectory() (string, int) {
	if root := config.GetLibraryPath(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustOpenRegistry opens the database with the venue and person tables
// freshly loaded from JSONL.
func mustOpenRegistry(repoRoot string) *storage.DB {
	db := mustOpenDatabase(repoRoot)
	if _, err := db.RebuildVenues(config.VenuesPath(repoRoot)); err != nil {
		db.Close()
		exitWithError(ExitDataError, "loading venues: %v", err)
	}
	if _, err := db.RebuildPersons(config.PersonsPath(repoRoot)); err != nil {
		db.Close()
		exitWithError(ExitDataError, "loading persons: %v", err)
	}
	return db
}

// mustLoadConfig loads repository configuration merged with the global
// config, exits on error.
func mustLoadConfig(repoRoot string) config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return cfg.WithDefaults(global)
}

// mustLoadCatalog builds the message catalog, adding the repository's
// catalog file when one is configured.
func mustLoadCatalog(cfg config.Config) *i18n.MessageCatalog {
	cat := i18n.NewMessageCatalog()
	if cfg.CatalogPath == "" {
		return cat
	}

	f, err := os.Open(cfg.CatalogPath)
	if err != nil {
		exitWithError(ExitConfigError, "opening catalog: %v", err)
	}
	defer f.Close()

	if err := cat.LoadYAML(f); err != nil {
		exitWithError(ExitConfigError, "loading catalog %s: %v", cfg.CatalogPath, err)
	}
	return cat
}
