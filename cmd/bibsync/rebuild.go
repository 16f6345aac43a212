package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibsync/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSONL source files.

Use this after pulling changes from git or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status       string `json:"status"`
	Publications int    `json:"publications"`
	Venues       int    `json:"venues"`
	Persons      int    `json:"persons"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	pubsCount, err := db.RebuildPublications(config.PublicationsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding publications: %v", err)
	}

	venuesCount, err := db.RebuildVenues(config.VenuesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding venues: %v", err)
	}

	personsCount, err := db.RebuildPersons(config.PersonsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding persons: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d publications, %d venues, and %d persons\n",
			pubsCount, venuesCount, personsCount)
	} else {
		outputJSON(RebuildResult{
			Status:       "rebuilt",
			Publications: pubsCount,
			Venues:       venuesCount,
			Persons:      personsCount,
		})
	}

	return nil
}
