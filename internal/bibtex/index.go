package bibtex

import (
	"fmt"
	"os"
	"strings"
)

// Index indexes existing BibTeX entries for deduplication.
type Index struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// Add records an entry in the index.
func (idx *Index) Add(e *Entry) {
	idx.Keys[e.Key] = true
	if doi, ok := e.Get("doi"); ok {
		if doi = NormalizeDOI(doi); doi != "" {
			idx.DOIs[doi] = e.Key
		}
	}
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *Index) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[NormalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// ParseIndexFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist. Malformed entries are
// skipped; only read errors are returned.
func ParseIndexFile(path string) (*Index, error) {
	idx := NewIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	entries, errs := Parse(file)
	if len(entries) == 0 && len(errs) > 0 {
		if _, ok := errs[0].(*SyntaxError); !ok {
			return nil, errs[0]
		}
	}
	for _, e := range entries {
		idx.Add(e)
	}
	return idx, nil
}

// NormalizeDOI normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// AppendToFile appends rendered BibTeX to a file, creating it if needed.
func AppendToFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}
