package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/config"
	"github.com/matsen/bibsync/internal/export"
	"github.com/matsen/bibsync/internal/i18n"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/storage"
	"github.com/matsen/bibsync/internal/venue"
)

var (
	exportKeys     string
	exportLocale   string
	exportAppend   string
	exportAuthors  []string
	exportKeyword  string
	exportYearFrom int
	exportYearTo   int
	exportKind     string
	exportVenue    string
	exportDOI      string
)

func init() {
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified citation keys (comma-separated)")
	exportCmd.Flags().StringVar(&exportLocale, "locale", "", "Locale for ranking notes (default from config)")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append to a .bib file, skipping entries it already has")
	exportCmd.Flags().StringArrayVarP(&exportAuthors, "author", "a", nil, "Filter by author name (repeatable, AND)")
	exportCmd.Flags().StringVar(&exportKeyword, "keyword", "", "Filter by full-text keyword")
	exportCmd.Flags().IntVar(&exportYearFrom, "year-from", 0, "Filter by minimum year")
	exportCmd.Flags().IntVar(&exportYearTo, "year-to", 0, "Filter by maximum year")
	exportCmd.Flags().StringVar(&exportKind, "kind", "", "Filter by publication kind (article, thesis, ...)")
	exportCmd.Flags().StringVar(&exportVenue, "venue", "", "Filter by venue name substring")
	exportCmd.Flags().StringVar(&exportDOI, "doi", "", "Filter by exact DOI")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export publications to BibTeX",
	Long: `Export publications to BibTeX.

Ranked journals and conferences get a note with their quartiles and impact
factor for the publication year, phrased in the chosen locale.

Examples:
  bibsync export > refs.bib
  bibsync export --keys Ahn2026-rs,Gao2026-gi
  bibsync export --author Matsen --year-from 2020 --locale es
  bibsync export --kind thesis --append paper/refs.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// AppendResult is the response for export --append.
type AppendResult struct {
	Path     string   `json:"path"`
	Appended []string `json:"appended"`
	Skipped  []string `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	localeName := exportLocale
	if localeName == "" {
		localeName = cfg.Locale
	}
	locale, err := i18n.ParseLocale(localeName)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db := mustOpenRegistry(repoRoot)
	defer db.Close()
	if _, err := db.RebuildPublications(config.PublicationsPath(repoRoot)); err != nil {
		exitWithError(ExitDataError, "loading publications: %v", err)
	}

	pubs := selectPublications(db)
	if err := venue.Relink(pubs, db); err != nil {
		exitWithError(ExitDataError, "linking venues: %v", err)
	}
	serializer := export.NewSerializer(mustLoadCatalog(cfg))

	if exportAppend != "" {
		appendPublications(serializer, pubs, locale)
		return nil
	}

	// BibTeX is always text output, never JSON
	if err := serializer.WriteAll(os.Stdout, pubs, locale); err != nil {
		exitWithError(ExitDataError, "exporting: %v", err)
	}
	return nil
}

// selectPublications returns the publications named by --keys, or those
// matching the filter flags.
func selectPublications(db *storage.DB) []reference.Publication {
	if exportKeys != "" {
		var pubs []reference.Publication
		for _, key := range strings.Split(exportKeys, ",") {
			key = strings.TrimSpace(key)
			pub, err := db.GetByKey(key)
			if err != nil {
				exitWithError(ExitError, "getting publication %s: %v", key, err)
			}
			if pub == nil {
				exitWithError(ExitError, "unknown key: %s", key)
			}
			pubs = append(pubs, pub)
		}
		return pubs
	}

	filters := storage.SearchFilters{
		Keyword:  exportKeyword,
		Authors:  exportAuthors,
		YearFrom: exportYearFrom,
		YearTo:   exportYearTo,
		Venue:    exportVenue,
		DOI:      exportDOI,
	}
	if exportKind != "" {
		kind, ok := parseKind(exportKind)
		if !ok {
			exitWithError(ExitError, "unknown kind: %s", exportKind)
		}
		filters.Kind = kind
	}

	pubs, err := db.SearchWithFilters(filters, 0)
	if err != nil {
		exitWithError(ExitError, "listing publications: %v", err)
	}
	return pubs
}

// appendPublications adds entries missing from the --append file.
func appendPublications(serializer *export.Serializer, pubs []reference.Publication, locale language.Tag) {
	idx, err := bibtex.ParseIndexFile(exportAppend)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", exportAppend, err)
	}

	result := AppendResult{Path: exportAppend, Appended: []string{}, Skipped: []string{}}
	for _, pub := range pubs {
		h := pub.Head()
		if idx.HasEntry(h.Key, h.DOI) {
			result.Skipped = append(result.Skipped, h.Key)
			continue
		}
		text, err := serializer.ToBibTeX(pub, locale)
		if err != nil {
			exitWithError(ExitDataError, "exporting %s: %v", h.Key, err)
		}
		if err := bibtex.AppendToFile(exportAppend, text); err != nil {
			exitWithError(ExitError, "appending %s: %v", h.Key, err)
		}
		result.Appended = append(result.Appended, h.Key)
	}

	if humanOutput {
		fmt.Printf("Appended %d entries to %s (%d already present)\n",
			len(result.Appended), result.Path, len(result.Skipped))
	} else {
		outputJSON(result)
	}
}

// parseKind accepts a publication kind by name, also allowing dashes.
func parseKind(s string) (reference.Kind, bool) {
	s = strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for _, k := range reference.Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
