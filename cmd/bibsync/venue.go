package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/bibsync/internal/config"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/storage"
	"github.com/matsen/bibsync/internal/venue"
)

var (
	venueKind      string
	venueName      string
	venuePublisher string
	venueISSN      string
	venueISBN      string
	venueFile      string

	venueListKind    string
	venueResolveKind string
)

func init() {
	venueAddCmd.Flags().StringVar(&venueKind, "kind", "journal", "Venue kind (journal, conference)")
	venueAddCmd.Flags().StringVar(&venueName, "name", "", "Venue name")
	venueAddCmd.Flags().StringVar(&venuePublisher, "publisher", "", "Publisher")
	venueAddCmd.Flags().StringVar(&venueISSN, "issn", "", "ISSN")
	venueAddCmd.Flags().StringVar(&venueISBN, "isbn", "", "ISBN (conferences)")
	venueAddCmd.Flags().StringVar(&venueFile, "file", "", "Add every venue from a YAML seed file")

	venueListCmd.Flags().StringVar(&venueListKind, "kind", "", "Only list venues of this kind")

	venueResolveCmd.Flags().StringVar(&venueResolveKind, "kind", "journal", "Venue kind (journal, conference)")
	venueResolveCmd.Flags().StringVar(&venuePublisher, "publisher", "", "Publisher used to break ties")
	venueResolveCmd.Flags().StringVar(&venueISSN, "issn", "", "ISSN used to break ties")
	venueResolveCmd.Flags().StringVar(&venueISBN, "isbn", "", "ISBN used to break ties (conferences)")

	venueCmd.AddCommand(venueAddCmd, venueListCmd, venueGetCmd, venueResolveCmd)
	rootCmd.AddCommand(venueCmd)
}

var venueCmd = &cobra.Command{
	Use:   "venue",
	Short: "Manage the journal and conference registry",
	Long: `Manage the registry of known journals and conferences.

Journals and conferences have separate id spaces. Imported entries are
matched against the registry by exact name.`,
}

var venueAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add venues to the registry",
	Long: `Add a venue to the registry, or every venue in a YAML seed file.

Examples:
  bibsync venue add --name Nature --issn 0028-0836 --publisher Springer
  bibsync venue add --kind conference --name "Proc. ICML"
  bibsync venue add --file venues.yml

Seed files are a YAML list:
  - kind: journal
    name: Nature
    issn: 0028-0836
    rankings:
      - {year: 2023, jcr: Q1, sjr: Q1, impact: 50.5}`,
	Args: cobra.NoArgs,
	RunE: runVenueAdd,
}

var venueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registry venues",
	Args:  cobra.NoArgs,
	RunE:  runVenueList,
}

var venueGetCmd = &cobra.Command{
	Use:   "get <kind> <id>",
	Short: "Show one registry venue",
	Args:  cobra.ExactArgs(2),
	RunE:  runVenueGet,
}

var venueResolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a venue name the way import does",
	Args:  cobra.ExactArgs(1),
	RunE:  runVenueResolve,
}

// VenueAddResult is the response for venue add.
type VenueAddResult struct {
	Added []reference.Venue `json:"added"`
}

func runVenueAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	var incoming []reference.Venue
	if venueFile != "" {
		f, err := os.Open(venueFile)
		if err != nil {
			exitWithError(ExitError, "opening seed: %v", err)
		}
		incoming, err = venue.LoadSeed(f)
		f.Close()
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
	} else {
		kind, err := venue.ParseKind(venueKind)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if venueName == "" {
			exitWithError(ExitError, "--name is required")
		}
		incoming = []reference.Venue{{
			Kind:      kind,
			Name:      venueName,
			Publisher: venuePublisher,
			ISSN:      venueISSN,
			ISBN:      venueISBN,
		}}
	}

	venuesPath := config.VenuesPath(repoRoot)
	added, err := addVenues(venuesPath, incoming)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if _, err := db.RebuildVenues(venuesPath); err != nil {
		exitWithError(ExitDataError, "rebuilding venues: %v", err)
	}

	if humanOutput {
		for _, v := range added {
			fmt.Printf("Added %s\n", formatVenueHuman(v))
		}
	} else {
		outputJSON(VenueAddResult{Added: added})
	}
	return nil
}

// addVenues assigns ids to incoming venues and appends them to the venue
// file. An explicit id that is already taken is an error.
func addVenues(path string, incoming []reference.Venue) ([]reference.Venue, error) {
	existing, err := storage.ReadVenues(path)
	if err != nil {
		return nil, fmt.Errorf("reading venues: %w", err)
	}
	reg := venue.NewMemRegistry(existing...)

	added := make([]reference.Venue, 0, len(incoming))
	for _, v := range incoming {
		if v.ID != 0 {
			taken, err := reg.FindByID(v.Kind, v.ID)
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, fmt.Errorf("%s id %d is already used by %q", v.Kind, v.ID, taken.Name)
			}
		}
		stored := reg.Add(v)
		if err := storage.AppendVenue(path, stored); err != nil {
			return nil, err
		}
		added = append(added, stored)
	}
	return added, nil
}

func runVenueList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	var kind reference.VenueKind
	if venueListKind != "" {
		k, err := venue.ParseKind(venueListKind)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		kind = k
	}

	db := mustOpenRegistry(repoRoot)
	defer db.Close()

	venues, err := db.ListVenues(kind)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(venues) == 0 {
			fmt.Println("No venues registered")
		}
		for _, v := range venues {
			fmt.Println(formatVenueHuman(v))
		}
	} else {
		if venues == nil {
			venues = []reference.Venue{}
		}
		outputJSON(venues)
	}
	return nil
}

func runVenueGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	kind, err := venue.ParseKind(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		exitWithError(ExitError, "invalid id: %s", args[1])
	}

	db := mustOpenRegistry(repoRoot)
	defer db.Close()

	v, err := db.FindByID(kind, id)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if v == nil {
		exitWithError(ExitError, "no %s with id %d", kind, id)
	}

	if humanOutput {
		fmt.Println(formatVenueHuman(*v))
		for _, r := range v.Rankings {
			fmt.Printf("  %d: JCR %s, SJR %s, impact %.3f\n", r.Year, r.JCR, r.SJR, r.Impact)
		}
	} else {
		outputJSON(v)
	}
	return nil
}

// ResolveResult is the response for venue resolve.
type ResolveResult struct {
	Venue      *reference.Venue  `json:"venue,omitempty"`
	Error      string            `json:"error,omitempty"`
	Candidates []reference.Venue `json:"candidates,omitempty"`
}

func runVenueResolve(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	kind, err := venue.ParseKind(venueResolveKind)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db := mustOpenRegistry(repoRoot)
	defer db.Close()

	v, err := venue.NewResolver(db).Resolve(venue.Request{
		Kind:        kind,
		Name:        args[0],
		Publisher:   venuePublisher,
		Identifiers: reference.Identifiers{ISSN: venueISSN, ISBN: venueISBN},
		AllowProxy:  cfg.AllowProxyVenues,
	})

	result := ResolveResult{Venue: v}
	if err != nil {
		result.Error = err.Error()
		var amb *venue.AmbiguousVenueError
		if errors.As(err, &amb) {
			result.Candidates = amb.Candidates
		}
	}

	if humanOutput {
		switch {
		case v != nil && v.Persistent():
			fmt.Println(formatVenueHuman(*v))
		case v != nil:
			fmt.Printf("Not registered; would use proxy %q\n", v.Name)
		default:
			fmt.Printf("error: %s\n", result.Error)
			for _, c := range result.Candidates {
				fmt.Printf("  candidate %s\n", formatVenueHuman(c))
			}
		}
	} else {
		outputJSON(result)
	}

	if err != nil {
		logger.Sync()
		os.Exit(ExitDataError)
	}
	return nil
}
