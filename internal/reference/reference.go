// Package reference defines the core domain types for typed publications.
package reference

import "time"

// Kind identifies one of the closed set of publication variants.
type Kind string

const (
	KindArticle         Kind = "article"          // Journal paper
	KindConferencePaper Kind = "conference_paper" // Paper in conference proceedings
	KindProceedings     Kind = "proceedings"      // Edited conference volume
	KindBook            Kind = "book"
	KindBookPart        Kind = "book_part" // Chapter or contribution to a collection
	KindThesis          Kind = "thesis"
	KindTechReport      Kind = "tech_report"
	KindManual          Kind = "manual"
	KindPatent          Kind = "patent"
	KindMisc            Kind = "misc"
)

// Kinds lists every publication kind in declaration order.
var Kinds = []Kind{
	KindArticle,
	KindConferencePaper,
	KindProceedings,
	KindBook,
	KindBookPart,
	KindThesis,
	KindTechReport,
	KindManual,
	KindPatent,
	KindMisc,
}

// Publication is implemented by exactly one struct per Kind.
type Publication interface {
	Kind() Kind
	Head() *Header
	Accept(v Visitor) error
}

// Header holds the attributes shared by every publication kind.
type Header struct {
	// Identity
	Key    string `json:"key"`              // Citation key from the interchange entry
	Serial int64  `json:"serial,omitempty"` // Generated numeric identifier, 0 if unassigned

	// Metadata
	Title    string   `json:"title"`
	Abstract string   `json:"abstract,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Language string   `json:"language,omitempty"`
	Authors  []Person `json:"authors"`

	Published PublicationDate `json:"published"`

	// External Identifiers
	ISBN string `json:"isbn,omitempty"`
	ISSN string `json:"issn,omitempty"`
	DOI  string `json:"doi,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Head returns the header itself; it is promoted to every variant.
func (h *Header) Head() *Header {
	return h
}

// PublicationDate is a year with an optional month.
type PublicationDate struct {
	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month,omitempty"` // 0 if unknown
}

// Date returns the first day of the publication month.
// The second result is false when no month is known.
func (d PublicationDate) Date() (time.Time, bool) {
	if d.Year == 0 || d.Month < time.January || d.Month > time.December {
		return time.Time{}, false
	}
	return time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC), true
}
