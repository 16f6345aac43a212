// Package export writes typed publications back out as BibTeX.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/i18n"
	"github.com/matsen/bibsync/internal/latex"
	"github.com/matsen/bibsync/internal/reference"
)

// Serializer converts publications to BibTeX entries.
type Serializer struct {
	catalog i18n.Catalog
}

// NewSerializer creates a serializer that phrases ranking notes with cat.
func NewSerializer(cat i18n.Catalog) *Serializer {
	return &Serializer{catalog: cat}
}

// Serialize converts one publication. Fields come out in a fixed order per
// kind. Markup-bearing values are escaped, pages use "--" and the month is
// a bare macro. Registry venues add a venueid field so a later import
// resolves the same venue. Ranked venues get a note phrased in locale.
func (s *Serializer) Serialize(pub reference.Publication, locale language.Tag) (*bibtex.Entry, error) {
	w := &entryWriter{s: s, locale: locale}
	if err := pub.Accept(w); err != nil {
		return nil, err
	}
	return w.entry, nil
}

// ToBibTeX renders one publication as BibTeX text.
func (s *Serializer) ToBibTeX(pub reference.Publication, locale language.Tag) (string, error) {
	e, err := s.Serialize(pub, locale)
	if err != nil {
		return "", err
	}
	return bibtex.Format(e), nil
}

// WriteAll serializes pubs in order and writes them to w as one document.
// Nothing is written if any publication fails to serialize.
func (s *Serializer) WriteAll(w io.Writer, pubs []reference.Publication, locale language.Tag) error {
	entries := make([]*bibtex.Entry, 0, len(pubs))
	for _, pub := range pubs {
		e, err := s.Serialize(pub, locale)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	return bibtex.Write(w, entries)
}

// entryWriter builds one entry; it implements reference.Visitor.
type entryWriter struct {
	s      *Serializer
	locale language.Tag
	entry  *bibtex.Entry
}

func (w *entryWriter) start(tag string, h *reference.Header) {
	w.entry = bibtex.NewEntry(tag, h.Key)
}

// text sets a markup-bearing field.
func (w *entryWriter) text(name, value string) {
	if value != "" {
		w.entry.Set(name, latex.Escape(value))
	}
}

// plain sets a markup-exempt field as is.
func (w *entryWriter) plain(name, value string) {
	if value != "" {
		w.entry.Set(name, value)
	}
}

func (w *entryWriter) people(name string, people []reference.Person) {
	if len(people) > 0 {
		w.entry.Set(name, author.FormatNameList(people))
	}
}

func (w *entryWriter) date(h *reference.Header) {
	if h.Published.Year == 0 {
		return
	}
	w.plain("year", strconv.Itoa(h.Published.Year))
	w.plain("month", bibtex.MonthMacro(h.Published.Month))
}

func (w *entryWriter) pages(p string) {
	w.plain("pages", bibtex.CanonicalPages(p))
}

// venue writes the venue name and, for registry venues, its id. A proxy
// contributes its publisher when the entry has none of its own.
func (w *entryWriter) venue(field string, v *reference.Venue, publisher string) {
	w.text(field, v.Name)
	if v.Persistent() {
		w.plain("venueid", strconv.FormatInt(v.ID, 10))
	}
	if publisher == "" && v.Proxy {
		publisher = v.Publisher
	}
	w.text("publisher", publisher)
}

// tail writes the header fields shared by every kind.
func (w *entryWriter) tail(h *reference.Header) {
	w.plain("isbn", h.ISBN)
	w.plain("issn", h.ISSN)
	w.plain("doi", h.DOI)
	w.plain("url", h.URL)
	w.text("abstract", h.Abstract)
	w.text("keywords", strings.Join(h.Keywords, ", "))
	w.text("language", h.Language)
}

func (w *entryWriter) VisitArticle(p *reference.Article) error {
	if p.Journal == nil {
		return fmt.Errorf("%s: article has no journal", p.Key)
	}
	w.start("article", &p.Header)
	w.people("author", p.Authors)
	w.text("title", p.Title)
	w.venue("journal", p.Journal, "")
	w.date(&p.Header)
	w.text("volume", p.Volume)
	w.text("number", p.Number)
	w.pages(p.Pages)
	w.text("series", p.Series)
	w.text("note", w.s.note(p.Journal, p.Published.Year, w.locale))
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitConferencePaper(p *reference.ConferencePaper) error {
	if p.Conference == nil {
		return fmt.Errorf("%s: conference paper has no conference", p.Key)
	}
	w.start("inproceedings", &p.Header)
	w.people("author", p.Authors)
	w.people("editor", p.Editors)
	w.text("title", p.Title)
	w.venue("booktitle", p.Conference, p.Publisher)
	w.date(&p.Header)
	w.text("volume", p.Volume)
	w.text("number", p.Number)
	w.pages(p.Pages)
	w.text("series", p.Series)
	w.text("address", p.Address)
	w.text("organization", p.Organization)
	w.text("note", w.s.note(p.Conference, p.Published.Year, w.locale))
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitProceedings(p *reference.Proceedings) error {
	w.start("proceedings", &p.Header)
	w.people("editor", p.Authors)
	w.text("title", p.Title)
	w.date(&p.Header)
	w.text("publisher", p.Publisher)
	w.text("address", p.Address)
	w.text("volume", p.Volume)
	w.text("series", p.Series)
	w.text("organization", p.Organization)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitBook(p *reference.Book) error {
	w.start("book", &p.Header)
	if p.Edited {
		w.people("editor", p.Authors)
	} else {
		w.people("author", p.Authors)
	}
	w.text("title", p.Title)
	w.date(&p.Header)
	w.text("publisher", p.Publisher)
	w.text("address", p.Address)
	w.text("edition", p.Edition)
	w.text("volume", p.Volume)
	w.text("series", p.Series)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitBookPart(p *reference.BookPart) error {
	tag := "inbook"
	if p.Collection {
		tag = "incollection"
	}
	w.start(tag, &p.Header)
	w.people("author", p.Authors)
	w.people("editor", p.Editors)
	w.text("title", p.Title)
	w.text("booktitle", p.BookTitle)
	w.text("chapter", p.Chapter)
	w.pages(p.Pages)
	w.date(&p.Header)
	w.text("publisher", p.Publisher)
	w.text("address", p.Address)
	w.text("volume", p.Volume)
	w.text("series", p.Series)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitThesis(p *reference.Thesis) error {
	switch p.Degree {
	case reference.DegreePhD:
		w.start("phdthesis", &p.Header)
	case reference.DegreeMasters:
		w.start("mastersthesis", &p.Header)
	default:
		w.start("thesis", &p.Header)
	}
	w.people("author", p.Authors)
	w.text("title", p.Title)
	w.text("school", p.Institution)
	w.date(&p.Header)
	w.text("address", p.Address)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitTechReport(p *reference.TechReport) error {
	w.start("techreport", &p.Header)
	w.people("author", p.Authors)
	w.text("title", p.Title)
	w.text("institution", p.Institution)
	w.date(&p.Header)
	w.text("number", p.Number)
	w.text("type", p.ReportType)
	w.text("address", p.Address)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitManual(p *reference.Manual) error {
	w.start("manual", &p.Header)
	w.people("author", p.Authors)
	w.text("title", p.Title)
	w.text("organization", p.Organization)
	w.date(&p.Header)
	w.text("address", p.Address)
	w.text("edition", p.Edition)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitPatent(p *reference.Patent) error {
	w.start("patent", &p.Header)
	w.people("author", p.Authors)
	w.text("title", p.Title)
	w.text("number", p.Number)
	w.text("holder", p.Holder)
	w.date(&p.Header)
	w.text("address", p.Address)
	w.tail(&p.Header)
	return nil
}

func (w *entryWriter) VisitMisc(p *reference.Misc) error {
	if p.Unpublished {
		w.start("unpublished", &p.Header)
	} else {
		w.start("misc", &p.Header)
	}
	w.people("author", p.Authors)
	w.text("title", p.Title)
	w.text("howpublished", p.HowPublished)
	w.date(&p.Header)
	w.text("note", p.Note)
	w.tail(&p.Header)
	return nil
}
