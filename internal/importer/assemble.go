package importer

import (
	"fmt"
	"strings"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/venue"
)

// PersonResolver turns name-list fields into people.
type PersonResolver interface {
	ParseNameList(text string) ([]author.Name, error)
	FindOrCreate(n author.Name) (reference.Person, error)
}

// assembler fills the kind-specific fields of a publication. Field
// problems go to the extractor; a venue failure is kept separately so it
// is reported only when the fields themselves are sound.
type assembler struct {
	imp      *Importer
	entry    *bibtex.Entry
	x        *Extractor
	venueErr error
}

func (a *assembler) header(h *reference.Header, kind reference.Kind) {
	h.Key = a.entry.Key
	h.Title = a.x.Required("title")
	h.Abstract = a.x.Optional("abstract")
	h.Keywords = a.x.Keywords()
	h.Language = a.x.Optional("language")
	h.Published = a.x.Date(kind == reference.KindMisc)
	h.ISBN = a.x.Optional("isbn")
	h.ISSN = a.x.Optional("issn")
	h.DOI = a.x.Optional("doi")
	h.URL = a.x.Optional("url")
}

func (a *assembler) venue(kind reference.VenueKind, field string) *reference.Venue {
	name := a.x.Required(field)
	if name == "" {
		return nil
	}
	v, err := a.imp.resolver.Resolve(venue.Request{
		EntryKey:  a.entry.Key,
		Kind:      kind,
		Name:      name,
		IDHint:    a.x.Optional("venueid"),
		Publisher: a.x.Optional("publisher"),
		Identifiers: reference.Identifiers{
			ISSN: a.x.Optional("issn"),
			ISBN: a.x.Optional("isbn"),
		},
		AllowProxy: a.imp.opts.AllowProxyVenues,
	})
	if err != nil {
		a.venueErr = err
		return nil
	}
	return v
}

// people resolves an optional name-list field.
func (a *assembler) people(field string) []reference.Person {
	raw, ok := a.x.Raw(field)
	if !ok {
		return nil
	}
	names, err := a.imp.people.ParseNameList(raw)
	if err != nil {
		a.x.Fail(&MarkupParseError{Key: a.entry.Key, Field: field, Text: raw, Err: err})
		return nil
	}
	out := make([]reference.Person, 0, len(names))
	for _, n := range names {
		p, err := a.imp.people.FindOrCreate(n)
		if err != nil {
			a.x.Fail(fmt.Errorf("%s: resolving %s %q: %w", a.entry.Key, field, n.Last, err))
			return nil
		}
		out = append(out, p)
	}
	return out
}

// authors fills the header authors from the first of two name-list fields
// that is present and reports which one was used.
func (a *assembler) authors(h *reference.Header, primary, fallback string) string {
	field := primary
	if _, ok := a.x.Raw(primary); !ok {
		field = fallback
		if _, ok := a.x.Raw(fallback); !ok {
			a.x.Fail(&MissingFieldError{Key: a.entry.Key, Field: primary, Alternative: fallback})
			return ""
		}
	}
	h.Authors = a.people(field)
	return field
}

func (a *assembler) VisitArticle(p *reference.Article) error {
	a.authors(&p.Header, "author", "editor")
	p.Journal = a.venue(reference.VenueJournal, "journal")
	p.Volume = a.x.Optional("volume")
	p.Number = a.x.Optional("number")
	p.Pages = a.x.Pages()
	p.Series = a.x.Optional("series")
	return nil
}

func (a *assembler) VisitConferencePaper(p *reference.ConferencePaper) error {
	if a.authors(&p.Header, "author", "editor") == "author" {
		p.Editors = a.people("editor")
	}
	p.Conference = a.venue(reference.VenueConference, "booktitle")
	p.Volume = a.x.Optional("volume")
	p.Number = a.x.Optional("number")
	p.Pages = a.x.Pages()
	p.Series = a.x.Optional("series")
	p.Address = a.x.Optional("address")
	p.Organization = a.x.Optional("organization")
	p.Publisher = a.x.Optional("publisher")
	return nil
}

func (a *assembler) VisitProceedings(p *reference.Proceedings) error {
	a.authors(&p.Header, "editor", "author")
	p.Publisher = a.x.Optional("publisher")
	p.Address = a.x.Optional("address")
	p.Volume = a.x.Optional("volume")
	p.Series = a.x.Optional("series")
	p.Organization = a.x.Optional("organization")
	return nil
}

func (a *assembler) VisitBook(p *reference.Book) error {
	p.Edited = a.authors(&p.Header, "author", "editor") == "editor"
	p.Publisher = a.x.Optional("publisher")
	p.Address = a.x.Optional("address")
	p.Edition = a.x.Optional("edition")
	p.Volume = a.x.Optional("volume")
	p.Series = a.x.Optional("series")
	return nil
}

func (a *assembler) VisitBookPart(p *reference.BookPart) error {
	if a.authors(&p.Header, "author", "editor") == "author" {
		p.Editors = a.people("editor")
	}
	p.Collection = a.entry.Type == "incollection"
	p.BookTitle = a.x.Required("booktitle")
	p.Chapter = a.x.Optional("chapter")
	p.Pages = a.x.Pages()
	p.Publisher = a.x.Optional("publisher")
	p.Address = a.x.Optional("address")
	p.Volume = a.x.Optional("volume")
	p.Series = a.x.Optional("series")
	return nil
}

func (a *assembler) VisitThesis(p *reference.Thesis) error {
	a.authors(&p.Header, "author", "editor")
	switch a.entry.Type {
	case "phdthesis":
		p.Degree = reference.DegreePhD
	case "mastersthesis":
		p.Degree = reference.DegreeMasters
	default:
		p.Degree = degreeFromType(a.x.Optional("type"))
	}
	p.Institution = a.x.RequiredEither("school", "institution")
	p.Address = a.x.Optional("address")
	return nil
}

func (a *assembler) VisitTechReport(p *reference.TechReport) error {
	a.authors(&p.Header, "author", "editor")
	p.Institution = a.x.RequiredEither("institution", "school")
	p.Number = a.x.Optional("number")
	p.Address = a.x.Optional("address")
	p.ReportType = a.x.Optional("type")
	return nil
}

func (a *assembler) VisitManual(p *reference.Manual) error {
	a.authors(&p.Header, "author", "editor")
	p.Organization = a.x.Optional("organization")
	p.Address = a.x.Optional("address")
	p.Edition = a.x.Optional("edition")
	return nil
}

func (a *assembler) VisitPatent(p *reference.Patent) error {
	a.authors(&p.Header, "author", "editor")
	p.Number = a.x.Required("number")
	p.Holder = a.x.Optional("holder")
	p.Address = a.x.Optional("address")
	return nil
}

func (a *assembler) VisitMisc(p *reference.Misc) error {
	a.authors(&p.Header, "author", "editor")
	p.HowPublished = a.x.Optional("howpublished")
	p.Note = a.x.Optional("note")
	p.Unpublished = a.entry.Type == "unpublished"
	return nil
}

// degreeFromType reads the degree of a generic @thesis from its type field.
func degreeFromType(t string) reference.Degree {
	t = strings.ToLower(t)
	switch {
	case strings.Contains(t, "phd"), strings.Contains(t, "doctor"):
		return reference.DegreePhD
	case strings.Contains(t, "master"):
		return reference.DegreeMasters
	}
	return reference.DegreeUnspecified
}
