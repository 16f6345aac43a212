package importer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/latex"
	"github.com/matsen/bibsync/internal/reference"
)

// Extractor decodes the fields of one raw entry. Problems are recorded
// rather than returned, so one pass reports every missing required field;
// Err returns them all.
type Extractor struct {
	entry *bibtex.Entry
	errs  []error
}

// NewExtractor creates an extractor for e.
func NewExtractor(e *bibtex.Entry) *Extractor {
	return &Extractor{entry: e}
}

// Raw returns a field with whitespace normalized but markup intact.
func (x *Extractor) Raw(name string) (string, bool) {
	v, ok := x.entry.Get(name)
	if !ok {
		return "", false
	}
	v = strings.Join(strings.Fields(v), " ")
	return v, v != ""
}

// Lookup returns the decoded value of a field. Markup-bearing fields are
// converted to plain text; a conversion failure is recorded as a
// MarkupParseError and reported as absent.
func (x *Extractor) Lookup(name string) (string, bool) {
	raw, ok := x.Raw(name)
	if !ok {
		return "", false
	}
	if !bibtex.IsMarkupField(name) {
		return raw, true
	}
	text, err := latex.ToText(raw)
	if err != nil {
		x.errs = append(x.errs, &MarkupParseError{Key: x.entry.Key, Field: name, Text: raw, Err: err})
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// Optional returns the decoded field, or "" when absent.
func (x *Extractor) Optional(name string) string {
	v, _ := x.Lookup(name)
	return v
}

// Required returns the decoded field and records a MissingFieldError when
// it is absent or empty.
func (x *Extractor) Required(name string) string {
	v, ok := x.Lookup(name)
	if !ok && !x.failedMarkup(name) {
		x.errs = append(x.errs, &MissingFieldError{Key: x.entry.Key, Field: name})
	}
	return v
}

// RequiredEither returns the first of two interchangeable fields that is
// present, recording a MissingFieldError only when both are absent.
func (x *Extractor) RequiredEither(name, alternative string) string {
	if v, ok := x.Lookup(name); ok {
		return v
	}
	if v, ok := x.Lookup(alternative); ok {
		return v
	}
	if !x.failedMarkup(name) && !x.failedMarkup(alternative) {
		x.errs = append(x.errs, &MissingFieldError{Key: x.entry.Key, Field: name, Alternative: alternative})
	}
	return ""
}

// Pages returns the pages field with a single hyphen between bounds.
func (x *Extractor) Pages() string {
	v, ok := x.Lookup("pages")
	if !ok {
		return ""
	}
	return bibtex.PageRange(v)
}

// Keywords splits the keywords field on commas and semicolons.
func (x *Extractor) Keywords() []string {
	v, ok := x.Lookup("keywords")
	if !ok {
		return nil
	}
	var out []string
	for _, k := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Date reads year and month. The year is required unless yearOptional.
func (x *Extractor) Date(yearOptional bool) reference.PublicationDate {
	var d reference.PublicationDate

	var year string
	if yearOptional {
		year = x.Optional("year")
	} else {
		year = x.Required("year")
	}
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y <= 0 {
			if err == nil {
				err = errors.New("year must be positive")
			}
			x.errs = append(x.errs, &InvalidFieldError{Key: x.entry.Key, Field: "year", Value: year, Err: err})
		}
		d.Year = y
	}

	if month, ok := x.Lookup("month"); ok {
		m, err := bibtex.ParseMonth(month)
		if err != nil {
			x.errs = append(x.errs, &InvalidFieldError{Key: x.entry.Key, Field: "month", Value: month, Err: err})
		}
		d.Month = m
	}
	if d.Month != 0 && d.Year == 0 {
		d.Month = 0
	}
	return d
}

// Fail records an error found outside the extractor.
func (x *Extractor) Fail(err error) {
	x.errs = append(x.errs, err)
}

// Err returns every recorded problem, or nil. Several problems are joined
// with errors.Join.
func (x *Extractor) Err() error {
	switch len(x.errs) {
	case 0:
		return nil
	case 1:
		return x.errs[0]
	}
	return errors.Join(x.errs...)
}

func (x *Extractor) failedMarkup(name string) bool {
	for _, err := range x.errs {
		var m *MarkupParseError
		if errors.As(err, &m) && m.Field == name {
			return true
		}
	}
	return false
}
