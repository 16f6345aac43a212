package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/config"
	"github.com/matsen/bibsync/internal/importer"
	"github.com/matsen/bibsync/internal/metrics"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/storage"
	"github.com/matsen/bibsync/internal/venue"
)

var (
	importFormat      string
	importDryRun      bool
	importMetricsFile string
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "bibtex", "Import format (bibtex, paperpile)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.Flags().StringVar(&importMetricsFile, "metrics-file", "", "Write import metrics in Prometheus text format to this file")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import publications from BibTeX or another format",
	Long: `Import publications from a file.

Every entry is classified by its type, checked for required fields, and
its journal or conference is resolved against the venue registry. Entries
that fail are reported and skipped; the rest are added to the library or
update the publication with the same DOI or citation key.

Usage:
  bibsync import refs.bib
  bibsync import refs.bib --dry-run
  bibsync import --format paperpile export.json

Supported formats:
  bibtex     - BibTeX (.bib)
  paperpile  - Paperpile JSON export`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	New      int            `json:"new"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Rejected int            `json:"rejected"`
	Errors   []ImportDetail `json:"errors"`
}

// DryRunResult represents the result of a dry-run import.
type DryRunResult struct {
	WouldAdd    int            `json:"would_add"`
	WouldUpdate int            `json:"would_update"`
	WouldSkip   int            `json:"would_skip"`
	WouldReject int            `json:"would_reject"`
	Details     []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	Key    string `json:"key"`
	Action string `json:"action"` // new, update, skip, reject
	Kind   string `json:"kind,omitempty"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// importStats tracks import operation counts.
type importStats struct {
	newCount int
	updated  int
	skipped  int
	rejected int
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	entries, parseErrors := parseImportFile(args[0], importFormat)

	pubsPath := config.PublicationsPath(repoRoot)
	persisted, err := storage.ReadPublications(pubsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing publications: %v", err)
	}

	db := mustOpenRegistry(repoRoot)
	defer db.Close()

	m := metrics.NewImport()
	imp := importer.New(venue.NewResolver(db), author.NewDirectory(db), importer.Options{
		AllowProxyVenues:   cfg.AllowProxyVenues,
		RequireKnownAuthor: cfg.RequireKnownAuthor,
		Workers:            cfg.Workers,
		Serials:            importer.SerialCounter(storage.MaxSerial(persisted)),
		Logger:             logger.With(zap.String("file", args[0])),
		Metrics:            m,
	})

	results, err := imp.ImportAll(cmd.Context(), entries)
	if err != nil {
		exitWithError(ExitError, "import interrupted: %v", err)
	}

	stats, details, actions := processImports(results, persisted)
	for _, perr := range parseErrors {
		stats.rejected++
		details = append(details, ImportDetail{Action: "reject", Reason: "syntax", Error: perr.Error()})
	}

	if importMetricsFile != "" {
		if err := m.WriteTextfile(importMetricsFile); err != nil {
			exitWithError(ExitError, "writing metrics: %v", err)
		}
	}

	if importDryRun {
		reportDryRun(stats, details)
		return nil
	}

	if err := persistImports(pubsPath, persisted, actions); err != nil {
		exitWithError(ExitError, "writing publications: %v", err)
	}
	if _, err := db.RebuildPublications(pubsPath); err != nil {
		exitWithError(ExitDataError, "rebuilding publications: %v", err)
	}

	reportImportResults(stats, details)
	if stats.rejected > 0 && stats.newCount+stats.updated == 0 {
		logger.Sync()
		os.Exit(ExitDataError)
	}
	return nil
}

// parseImportFile reads the import file and splits it into raw entries.
func parseImportFile(path, format string) ([]*bibtex.Entry, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}

	var entries []*bibtex.Entry
	var parseErrors []error
	switch format {
	case "bibtex":
		entries, parseErrors = bibtex.Parse(bytes.NewReader(data))
	case "paperpile":
		entries, parseErrors = importer.ParsePaperpile(data)
	default:
		exitWithError(ExitError, "unknown format: %s", format)
	}

	if len(parseErrors) > 0 && len(entries) == 0 {
		exitWithError(ExitDataError, "failed to parse any entries: %v", parseErrors[0])
	}
	return entries, parseErrors
}

// processImports classifies each import result and builds the action list.
func processImports(results []importer.Result, persisted []reference.Publication) (importStats, []ImportDetail, []storage.PubWithAction) {
	// The working set includes in-progress imports so duplicates within one
	// batch are caught.
	working := make([]reference.Publication, len(persisted))
	copy(working, persisted)

	var stats importStats
	var details []ImportDetail
	var actions []storage.PubWithAction

	for _, r := range results {
		if r.Err != nil {
			stats.rejected++
			details = append(details, ImportDetail{
				Key:    r.Key,
				Action: "reject",
				Reason: importer.KindOf(r.Err),
				Error:  r.Err.Error(),
			})
			continue
		}

		pub := r.Publication
		h := pub.Head()
		action := classifyImport(working, pub)

		switch action.action {
		case "new":
			// Only a key_conflict can collide here
			h.Key = storage.GenerateUniqueKey(working, h.Key)
			actions = append(actions, storage.PubWithAction{Pub: pub, Action: "new"})
			working = append(working, pub)
			stats.newCount++
		case "update":
			if action.existingIdx < len(persisted) {
				// The stored identity survives an update
				old := persisted[action.existingIdx].Head()
				h.Key = old.Key
				h.Serial = old.Serial
				actions = append(actions, storage.PubWithAction{Pub: pub, Action: "update", ExistingIdx: action.existingIdx})
				stats.updated++
			} else {
				stats.skipped++
				action.action = "skip"
				action.reason = "duplicate_in_batch"
			}
		}

		details = append(details, ImportDetail{
			Key:    h.Key,
			Action: action.action,
			Kind:   string(pub.Kind()),
			Title:  truncateString(h.Title, ImportTitleMaxLen),
			Reason: action.reason,
		})
	}

	return stats, details, actions
}

// reportDryRun outputs the dry-run results.
func reportDryRun(stats importStats, details []ImportDetail) {
	if humanOutput {
		fmt.Println("Dry run - would import:")
		fmt.Printf("  Would add:    %d new publications\n", stats.newCount)
		fmt.Printf("  Would update: %d existing publications (matched by DOI or key)\n", stats.updated)
		fmt.Printf("  Would skip:   %d duplicates\n", stats.skipped)
		fmt.Printf("  Would reject: %d entries\n", stats.rejected)
		printRejections(details)
	} else {
		outputJSON(DryRunResult{
			WouldAdd:    stats.newCount,
			WouldUpdate: stats.updated,
			WouldSkip:   stats.skipped,
			WouldReject: stats.rejected,
			Details:     details,
		})
	}
}

// reportImportResults outputs the actual import results.
func reportImportResults(stats importStats, details []ImportDetail) {
	rejected := rejections(details)
	if humanOutput {
		fmt.Println("Imported:")
		fmt.Printf("  Added:    %d new publications\n", stats.newCount)
		fmt.Printf("  Updated:  %d existing publications (matched by DOI or key)\n", stats.updated)
		fmt.Printf("  Skipped:  %d duplicates\n", stats.skipped)
		fmt.Printf("  Rejected: %d entries\n", stats.rejected)
		printRejections(details)
	} else {
		outputJSON(ImportResult{
			New:      stats.newCount,
			Updated:  stats.updated,
			Skipped:  stats.skipped,
			Rejected: stats.rejected,
			Errors:   rejected,
		})
	}
}

func rejections(details []ImportDetail) []ImportDetail {
	out := []ImportDetail{}
	for _, d := range details {
		if d.Action == "reject" {
			out = append(out, d)
		}
	}
	return out
}

func printRejections(details []ImportDetail) {
	rejected := rejections(details)
	if len(rejected) == 0 {
		return
	}
	fmt.Println("\nRejected:")
	for _, d := range rejected {
		fmt.Printf("  - [%s] %s\n", d.Reason, d.Error)
	}
}

type importAction struct {
	action      string // new, update, skip
	reason      string
	existingIdx int
}

// classifyImport determines what to do with an incoming publication.
// Panics if it has an empty key, as this indicates a bug in the parser.
func classifyImport(existing []reference.Publication, pub reference.Publication) importAction {
	h := pub.Head()
	if h.Key == "" {
		panic("classifyImport called with empty key - parser bug")
	}

	// DOI match first (primary deduplication)
	if h.DOI != "" {
		if idx, found := storage.FindByDOI(existing, h.DOI); found {
			return importAction{action: "update", reason: "doi_match", existingIdx: idx}
		}
	}

	// Citation key match (secondary deduplication). Two different DOIs
	// under one key are two papers; the newcomer gets a fresh key.
	if idx, found := storage.FindByKey(existing, h.Key); found {
		if doi := existing[idx].Head().DOI; h.DOI != "" && doi != "" {
			return importAction{action: "new", reason: "key_conflict"}
		}
		return importAction{action: "update", reason: "key_match", existingIdx: idx}
	}

	return importAction{action: "new"}
}

// persistImports writes the import results to the publications file.
func persistImports(path string, existing []reference.Publication, actions []storage.PubWithAction) error {
	pubs := make([]reference.Publication, len(existing))
	copy(pubs, existing)

	// Apply updates first
	for _, a := range actions {
		if a.Action == "update" {
			pubs[a.ExistingIdx] = a.Pub
		}
	}

	// Append new entries
	for _, a := range actions {
		if a.Action == "new" {
			pubs = append(pubs, a.Pub)
		}
	}

	return storage.WritePublications(path, pubs)
}
