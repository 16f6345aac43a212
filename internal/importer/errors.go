package importer

import (
	"errors"
	"fmt"

	"github.com/matsen/bibsync/internal/venue"
)

// MissingFieldError reports a required field that is absent or empty.
type MissingFieldError struct {
	Key         string // Citation key of the entry
	Field       string
	Alternative string // Interchangeable field name, if any ("school" for "institution")
}

func (e *MissingFieldError) Error() string {
	if e.Alternative != "" {
		return fmt.Sprintf("%s: missing required field %q (or %q)", e.Key, e.Field, e.Alternative)
	}
	return fmt.Sprintf("%s: missing required field %q", e.Key, e.Field)
}

// EntryKey returns the citation key of the failing entry.
func (e *MissingFieldError) EntryKey() string { return e.Key }

// InvalidFieldError reports a field whose value cannot be interpreted,
// such as a non-numeric year or an unknown month name.
type InvalidFieldError struct {
	Key   string
	Field string
	Value string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q: %v", e.Key, e.Field, e.Value, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// EntryKey returns the citation key of the failing entry.
func (e *InvalidFieldError) EntryKey() string { return e.Key }

// MarkupParseError reports LaTeX that could not be converted to text.
type MarkupParseError struct {
	Key   string
	Field string
	Text  string // Offending raw value
	Err   error  // Converter diagnostic
}

func (e *MarkupParseError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s %q: %v", e.Key, e.Field, e.Text, e.Err)
}

func (e *MarkupParseError) Unwrap() error { return e.Err }

// EntryKey returns the citation key of the failing entry.
func (e *MarkupParseError) EntryKey() string { return e.Key }

// UnsupportedTypeError reports an entry-type tag outside the known set.
type UnsupportedTypeError struct {
	Key string
	Tag string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported entry type @%s", e.Key, e.Tag)
}

// EntryKey returns the citation key of the failing entry.
func (e *UnsupportedTypeError) EntryKey() string { return e.Key }

// NoAuthorError reports an entry without usable authors.
type NoAuthorError struct {
	Key          string
	RequireKnown bool // True when authors exist but none is in the registry
}

func (e *NoAuthorError) Error() string {
	if e.RequireKnown {
		return fmt.Sprintf("%s: no author is known to the registry", e.Key)
	}
	return fmt.Sprintf("%s: no authors", e.Key)
}

// EntryKey returns the citation key of the failing entry.
func (e *NoAuthorError) EntryKey() string { return e.Key }

// Outcome labels returned by KindOf.
const (
	OutcomeImported       = "imported"
	OutcomeMissingField   = "missing_field"
	OutcomeInvalidField   = "invalid_field"
	OutcomeMarkup         = "markup"
	OutcomeUnsupported    = "unsupported_type"
	OutcomeMissingVenue   = "missing_venue"
	OutcomeAmbiguousVenue = "ambiguous_venue"
	OutcomeNoAuthor       = "no_author"
	OutcomeCanceled       = "canceled"
	OutcomeOther          = "other"
)

// KindOf returns a stable label for an import error, used for metrics and
// CLI output. A joined error is labelled by its first recognized member.
func KindOf(err error) string {
	var (
		missing   *MissingFieldError
		invalid   *InvalidFieldError
		markup    *MarkupParseError
		tag       *UnsupportedTypeError
		noVenue   *venue.MissingVenueError
		ambiguous *venue.AmbiguousVenueError
		noAuthor  *NoAuthorError
	)
	switch {
	case err == nil:
		return OutcomeImported
	case errors.As(err, &tag):
		return OutcomeUnsupported
	case errors.As(err, &markup):
		return OutcomeMarkup
	case errors.As(err, &missing):
		return OutcomeMissingField
	case errors.As(err, &invalid):
		return OutcomeInvalidField
	case errors.As(err, &ambiguous):
		return OutcomeAmbiguousVenue
	case errors.As(err, &noVenue):
		return OutcomeMissingVenue
	case errors.As(err, &noAuthor):
		return OutcomeNoAuthor
	case isCanceled(err):
		return OutcomeCanceled
	}
	return OutcomeOther
}

// EntryKeyOf returns the citation key carried by err, or "".
func EntryKeyOf(err error) string {
	var keyed interface{ EntryKey() string }
	if errors.As(err, &keyed) {
		return keyed.EntryKey()
	}
	return ""
}
