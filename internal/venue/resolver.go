// Package venue resolves free-text journal and conference names against a
// registry of known venues.
package venue

import (
	"strconv"
	"strings"

	"github.com/matsen/bibsync/internal/reference"
)

// Registry is the read-only view of known venues. Ids are unique within a
// venue kind.
type Registry interface {
	// FindByID returns the venue with the id, or nil if there is none.
	FindByID(kind reference.VenueKind, id int64) (*reference.Venue, error)
	// FindByExactName returns every venue whose normalized name equals name.
	// Matching is case-sensitive.
	FindByExactName(kind reference.VenueKind, name string) ([]reference.Venue, error)
}

// Request describes one venue to resolve.
type Request struct {
	EntryKey    string
	Kind        reference.VenueKind
	Name        string
	IDHint      string // Raw venueid field; ignored unless a positive integer
	Publisher   string
	Identifiers reference.Identifiers
	AllowProxy  bool
}

// Resolver matches venue requests against a registry.
type Resolver struct {
	registry Registry
}

// NewResolver creates a resolver over registry.
func NewResolver(registry Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the registry venue for req, a proxy, or an error.
//
// An id hint that names an existing venue wins outright. Otherwise venues
// are matched by exact normalized name. No match yields a proxy when
// allowed and MissingVenueError otherwise. Several matches are narrowed by
// identifier or publisher; if that does not leave exactly one,
// AmbiguousVenueError lists every candidate. Registry failures are
// reported as MissingVenueError.
func (r *Resolver) Resolve(req Request) (*reference.Venue, error) {
	name := NormalizeName(req.Name)

	if id, ok := parseID(req.IDHint); ok {
		v, err := r.registry.FindByID(req.Kind, id)
		if err != nil {
			return nil, &MissingVenueError{Key: req.EntryKey, Name: name, Err: err}
		}
		if v != nil {
			return v, nil
		}
	}

	candidates, err := r.registry.FindByExactName(req.Kind, name)
	if err != nil {
		return nil, &MissingVenueError{Key: req.EntryKey, Name: name, Err: err}
	}

	switch len(candidates) {
	case 0:
		if req.AllowProxy {
			return reference.NewProxy(req.Kind, name, req.Publisher, req.Identifiers), nil
		}
		return nil, &MissingVenueError{Key: req.EntryKey, Name: name}
	case 1:
		return &candidates[0], nil
	}

	var narrowed []int
	for i := range candidates {
		if identifierMatches(req.Kind, &candidates[i], req.Identifiers) ||
			(req.Publisher != "" && strings.Contains(candidates[i].Publisher, req.Publisher)) {
			narrowed = append(narrowed, i)
		}
	}
	if len(narrowed) == 1 {
		return &candidates[narrowed[0]], nil
	}
	return nil, &AmbiguousVenueError{Key: req.EntryKey, Name: name, Candidates: candidates}
}

// identifierMatches compares ISSN for journals and ISBN or ISSN for
// conferences. Empty identifiers never match.
func identifierMatches(kind reference.VenueKind, v *reference.Venue, ids reference.Identifiers) bool {
	if sameIdentifier(v.ISSN, ids.ISSN) {
		return true
	}
	return kind == reference.VenueConference && sameIdentifier(v.ISBN, ids.ISBN)
}

func sameIdentifier(a, b string) bool {
	a, b = NormalizeIdentifier(a), NormalizeIdentifier(b)
	return a != "" && a == b
}

// NormalizeIdentifier strips hyphens and spaces from an ISSN or ISBN and
// upper-cases the check character.
func NormalizeIdentifier(s string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(s))
}

// NormalizeName collapses runs of whitespace and trims the ends. Case is
// kept.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseID(hint string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(hint), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
