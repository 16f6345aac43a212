// Package importer turns raw BibTeX entries into typed publications.
//
// Import runs the pipeline for one entry: classify the entry type, extract
// and decode fields, resolve the venue, then assemble the publication with
// its authors. ImportAll runs it over a batch in parallel.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/latex"
	"github.com/matsen/bibsync/internal/reference"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	PubType   string         `json:"pubtype"`
	DOI       string         `json:"doi"`
	Title     string         `json:"title"`
	Abstract  string         `json:"abstract"`
	Journal   string         `json:"journal"`
	Publisher string         `json:"publisher"`
	Volume    FlexibleString `json:"volume"`
	Issue     FlexibleString `json:"issue"`
	Pages     FlexibleString `json:"pages"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
	Attachments []struct {
		ArticlePDF int    `json:"article_pdf"` // 1 = main PDF, 0 = supplement
		Filename   string `json:"filename"`
	} `json:"attachments"`
}

// paperpileTags maps Paperpile publication types to BibTeX entry types.
var paperpileTags = map[string]string{
	"JOUR": "article",
	"CONF": "inproceedings",
	"BOOK": "book",
	"CHAP": "incollection",
	"THES": "phdthesis",
	"RPRT": "techreport",
	"PAT":  "patent",
}

// ParsePaperpile converts a Paperpile JSON export into raw BibTeX entries,
// which then go through the same import pipeline as a .bib file.
func ParsePaperpile(data []byte) ([]*bibtex.Entry, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var out []*bibtex.Entry
	var errs []error
	for i, entry := range entries {
		e, err := paperpileToEntry(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		out = append(out, e)
	}
	return out, errs
}

func paperpileToEntry(entry PaperpileEntry) (*bibtex.Entry, error) {
	if entry.Title == "" {
		return nil, fmt.Errorf("missing required field 'title'")
	}
	if len(entry.Author) == 0 {
		return nil, fmt.Errorf("missing required field 'author'")
	}
	year := entry.Published.Year.String()
	if year == "" {
		return nil, fmt.Errorf("missing required field 'published.year'")
	}
	if _, err := strconv.Atoi(year); err != nil {
		return nil, fmt.Errorf("invalid year: %s", year)
	}

	tag, ok := paperpileTags[strings.ToUpper(entry.PubType)]
	if !ok {
		tag = "misc"
		if entry.Journal != "" {
			tag = "article"
		}
	}

	// Use citekey as key, falling back to Paperpile ID if no citekey
	key := entry.Citekey
	if key == "" {
		key = entry.ID
	}
	e := bibtex.NewEntry(tag, key)

	authors := make([]reference.Person, len(entry.Author))
	for i, a := range entry.Author {
		authors[i] = reference.Person{First: a.First, Last: a.Last}
	}
	e.Set("author", author.FormatNameList(authors))
	e.Set("title", latex.Escape(entry.Title))

	if entry.Journal != "" {
		venueField := "journal"
		if tag == "inproceedings" || tag == "incollection" {
			venueField = "booktitle"
		}
		e.Set(venueField, latex.Escape(entry.Journal))
	}
	setIf(e, "publisher", latex.Escape(entry.Publisher))
	setIf(e, "volume", entry.Volume.String())
	setIf(e, "number", entry.Issue.String())
	setIf(e, "pages", entry.Pages.String())

	e.Set("year", year)
	if month, err := strconv.Atoi(entry.Published.Month.String()); err == nil {
		if macro := bibtex.MonthMacro(time.Month(month)); macro != "" {
			e.Set("month", macro)
		}
	}

	setIf(e, "doi", entry.DOI)
	setIf(e, "abstract", latex.Escape(entry.Abstract))
	for _, att := range entry.Attachments {
		if att.ArticlePDF == 1 {
			e.Set("file", att.Filename)
			break
		}
	}
	return e, nil
}

func setIf(e *bibtex.Entry, name, value string) {
	if value != "" {
		e.Set(name, value)
	}
}
