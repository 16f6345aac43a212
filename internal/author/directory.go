package author

import (
	"fmt"
	"strings"

	"github.com/matsen/bibsync/internal/reference"
)

// Lookup finds people already known to the local registry.
type Lookup interface {
	// FindPerson returns the registry person with the given name parts.
	// The bool is false when nobody matches.
	FindPerson(n Name) (reference.Person, bool, error)
}

// Directory resolves parsed names against a Lookup. Unknown names become
// unsaved persons with a zero ID; the directory never writes.
type Directory struct {
	lookup Lookup
}

// NewDirectory creates a directory. A nil lookup knows nobody.
func NewDirectory(lookup Lookup) *Directory {
	return &Directory{lookup: lookup}
}

// ParseNameList parses a BibTeX name list.
func (d *Directory) ParseNameList(text string) ([]Name, error) {
	return ParseNameList(text)
}

// FindOrCreate returns the registry person for n, or a new unsaved person.
func (d *Directory) FindOrCreate(n Name) (reference.Person, error) {
	if d.lookup != nil {
		p, ok, err := d.lookup.FindPerson(n)
		if err != nil {
			return reference.Person{}, fmt.Errorf("looking up %s: %w", n.Last, err)
		}
		if ok {
			return p, nil
		}
	}
	return reference.Person{First: n.First, Von: n.Von, Last: n.Last, Jr: n.Jr}, nil
}

// Roster is an in-memory Lookup.
type Roster []reference.Person

// FindPerson matches on von and last name case-insensitively. A first name
// must match too unless either side has none.
func (r Roster) FindPerson(n Name) (reference.Person, bool, error) {
	for _, p := range r {
		if SameName(p, n) {
			return p, true, nil
		}
	}
	return reference.Person{}, false, nil
}

// SameName reports whether a registry person and a parsed name refer to
// the same spelling.
func SameName(p reference.Person, n Name) bool {
	if !strings.EqualFold(p.Last, n.Last) || !strings.EqualFold(p.Von, n.Von) {
		return false
	}
	if p.First == "" || n.First == "" {
		return true
	}
	return strings.EqualFold(p.First, n.First)
}
