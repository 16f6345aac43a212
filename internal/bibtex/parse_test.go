package bibtex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_BasicEntries(t *testing.T) {
	src := `Leading text is a comment.

@Article{Smith2026-ab,
  Author = {Smith, John and Doe, Jane},
  title  = "A {BERT} Study",
  journal = {Nature},
  year = 2026,
  month = jan,
  pages = {12--34},
}

@inproceedings(Brown2025,
  author = {Brown, Alice},
  title = {Conference Paper},
  booktitle = {Proc. of ICML}
)
`
	entries, errs := ParseString(src)
	if len(errs) > 0 {
		t.Fatalf("ParseString() returned errors: %v", errs)
	}
	if len(entries) != 2 {
		t.Fatalf("ParseString() returned %d entries, want 2", len(entries))
	}

	e := entries[0]
	if e.Type != "article" {
		t.Errorf("Type = %q, want article", e.Type)
	}
	if e.Key != "Smith2026-ab" {
		t.Errorf("Key = %q, want Smith2026-ab", e.Key)
	}
	if v, _ := e.Get("AUTHOR"); v != "Smith, John and Doe, Jane" {
		t.Errorf("author = %q", v)
	}
	if v, _ := e.Get("title"); v != "A {BERT} Study" {
		t.Errorf("title = %q, want braces preserved", v)
	}
	if v, _ := e.Get("year"); v != "2026" {
		t.Errorf("year = %q, want 2026", v)
	}
	if v, _ := e.Get("month"); v != "jan" {
		t.Errorf("month = %q, want bare macro kept verbatim", v)
	}

	names := []string{}
	for _, f := range e.Fields() {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "author,title,journal,year,month,pages" {
		t.Errorf("field order = %s", got)
	}

	if entries[1].Type != "inproceedings" || entries[1].Key != "Brown2025" {
		t.Errorf("second entry = %s/%s", entries[1].Type, entries[1].Key)
	}
}

func TestParse_StringMacrosAndConcatenation(t *testing.T) {
	src := `@string{ieee = "IEEE Transactions"}
@comment{ignored @article{nope, title={x}} }
@preamble{"\newcommand{\noop}[1]{}"}
@article{k1,
  journal = ieee # " on Software",
  title = {T},
}`
	entries, errs := ParseString(src)
	if len(errs) > 0 {
		t.Fatalf("ParseString() returned errors: %v", errs)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if v, _ := entries[0].Get("journal"); v != "IEEE Transactions on Software" {
		t.Errorf("journal = %q", v)
	}
}

func TestParse_RecoversFromMalformedEntry(t *testing.T) {
	src := `@article{broken,
  title = {Unclosed,
  year = 2020

@article{good,
  title = {Fine},
}`
	entries, errs := ParseString(src)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	serr, ok := errs[0].(*SyntaxError)
	if !ok {
		t.Fatalf("error type = %T, want *SyntaxError", errs[0])
	}
	if serr.Key != "broken" {
		t.Errorf("SyntaxError.Key = %q, want broken", serr.Key)
	}
	if len(entries) != 1 || entries[0].Key != "good" {
		t.Errorf("entries = %v, want only 'good'", entries)
	}
}

func TestParse_MissingEquals(t *testing.T) {
	_, errs := ParseString("@misc{k, title {x}}")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "expected '='") {
		t.Errorf("error = %v", errs[0])
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	e := NewEntry("Article", "Key2026")
	e.Set("author", "Smith, John")
	e.Set("title", `A \& B`)
	e.Set("month", "mar")
	e.Set("pages", "1--2")

	got := Format(e)
	want := "@article{Key2026,\n  author = {Smith, John},\n  title = {A \\& B},\n  month = mar,\n  pages = {1--2},\n}\n"
	if got != want {
		t.Fatalf("Format() =\n%s\nwant\n%s", got, want)
	}

	entries, errs := ParseString(got)
	if len(errs) > 0 || len(entries) != 1 {
		t.Fatalf("re-parse failed: %v", errs)
	}
	for _, f := range e.Fields() {
		if v, _ := entries[0].Get(f.Name); v != f.Value {
			t.Errorf("%s = %q, want %q", f.Name, v, f.Value)
		}
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Month
		wantErr bool
	}{
		{"01", time.January, false},
		{"1", time.January, false},
		{"jan", time.January, false},
		{"Jan.", time.January, false},
		{"January", time.January, false},
		{"SEPTEMBER", time.September, false},
		{"dec", time.December, false},
		{"13", 0, true},
		{"Janvier", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonth(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonthMacro(t *testing.T) {
	if got := MonthMacro(time.January); got != "jan" {
		t.Errorf("MonthMacro(January) = %q, want jan", got)
	}
	if got := MonthMacro(0); got != "" {
		t.Errorf("MonthMacro(0) = %q, want empty", got)
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		input     string
		pageRange string
		canonical string
	}{
		{"12-34", "12-34", "12--34"},
		{"12--34", "12-34", "12--34"},
		{"12---34", "12-34", "12--34"},
		{"12 -- 34", "12-34", "12--34"},
		{"12–34", "12-34", "12--34"},
		{"e1234", "e1234", "e1234"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := PageRange(tt.input); got != tt.pageRange {
				t.Errorf("PageRange(%q) = %q, want %q", tt.input, got, tt.pageRange)
			}
			if got := CanonicalPages(tt.input); got != tt.canonical {
				t.Errorf("CanonicalPages(%q) = %q, want %q", tt.input, got, tt.canonical)
			}
		})
	}
}

func TestIsMarkupField(t *testing.T) {
	for _, name := range []string{"doi", "URL", "isbn", "issn", "file", "pages"} {
		if IsMarkupField(name) {
			t.Errorf("IsMarkupField(%q) = true, want false", name)
		}
	}
	for _, name := range []string{"title", "abstract", "note", "booktitle"} {
		if !IsMarkupField(name) {
			t.Errorf("IsMarkupField(%q) = false, want true", name)
		}
	}
}

func TestParseIndexFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	content := `@article{Smith2026,
  title = {One},
  doi = {https://doi.org/10.1234/ABC},
}

@book{Jones2020,
  title = {Two},
}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	idx, err := ParseIndexFile(path)
	if err != nil {
		t.Fatalf("ParseIndexFile() error = %v", err)
	}
	if !idx.HasEntry("other", "10.1234/abc") {
		t.Error("HasEntry() should match normalized DOI")
	}
	if !idx.HasEntry("Jones2020", "") {
		t.Error("HasEntry() should match key")
	}
	if idx.HasEntry("Nobody", "10.9999/none") {
		t.Error("HasEntry() should not match unknown entry")
	}
}

func TestParseIndexFile_Missing(t *testing.T) {
	idx, err := ParseIndexFile(filepath.Join(t.TempDir(), "absent.bib"))
	if err != nil {
		t.Fatalf("ParseIndexFile() error = %v", err)
	}
	if len(idx.Keys) != 0 {
		t.Errorf("expected empty index, got %d keys", len(idx.Keys))
	}
}

func TestAppendToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bib")
	e := NewEntry("misc", "A1")
	e.Set("title", "X")

	if err := AppendToFile(path, Format(e)); err != nil {
		t.Fatalf("AppendToFile() error = %v", err)
	}
	idx, err := ParseIndexFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !idx.Keys["A1"] {
		t.Error("appended entry should be indexed")
	}
}
