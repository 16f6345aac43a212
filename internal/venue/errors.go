package venue

import (
	"fmt"
	"strings"

	"github.com/matsen/bibsync/internal/reference"
)

// MissingVenueError reports a venue that is not in the registry when no
// proxy may be used, or a registry failure during the lookup.
type MissingVenueError struct {
	Key  string // Citation key of the entry
	Name string // Venue name as given in the entry
	Err  error  // Registry failure, nil when the venue is simply absent
}

func (e *MissingVenueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: venue %q could not be looked up: %v", e.Key, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: venue %q not found in registry", e.Key, e.Name)
}

func (e *MissingVenueError) Unwrap() error { return e.Err }

// EntryKey returns the citation key of the failing entry.
func (e *MissingVenueError) EntryKey() string { return e.Key }

// AmbiguousVenueError reports a name shared by several registry venues that
// identifiers and publisher could not narrow to one. It needs a human
// decision, typically an explicit venueid on the entry.
type AmbiguousVenueError struct {
	Key        string
	Name       string
	Candidates []reference.Venue // Every venue with the name, in registry order
}

func (e *AmbiguousVenueError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = fmt.Sprintf("%d", c.ID)
	}
	return fmt.Sprintf("%s: venue %q is ambiguous (%d candidates: %s)",
		e.Key, e.Name, len(e.Candidates), strings.Join(ids, ", "))
}

// EntryKey returns the citation key of the failing entry.
func (e *AmbiguousVenueError) EntryKey() string { return e.Key }
