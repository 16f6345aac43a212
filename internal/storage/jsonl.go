// Package storage persists the library as JSONL files, the source of
// truth, and mirrors them into an ephemeral SQLite query layer.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
// This constant is shared across all JSONL file readers.
const MaxJSONLLineCapacity = 1024 * 1024

// PubWithAction pairs an imported publication with the action planned for it.
type PubWithAction struct {
	Pub         reference.Publication
	Action      string // new, update
	ExistingIdx int    // Index in existing publications (for updates)
}

// readLines calls fn for every non-empty line of a JSONL file. A missing
// file has no lines.
func readLines(path string, fn func(line []byte, lineNum int) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line, lineNum); err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// appendLine appends one encoded record to a JSONL file.
func appendLine(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeLines replaces a JSONL file with n records produced by encode.
func writeLines(path string, n int, encode func(i int) ([]byte, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		data, err := encode(i)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadPublications reads all publications from a JSONL file.
func ReadPublications(path string) ([]reference.Publication, error) {
	var pubs []reference.Publication
	err := readLines(path, func(line []byte, _ int) error {
		pub, err := reference.Unmarshal(line)
		if err != nil {
			return err
		}
		pubs = append(pubs, pub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pubs, nil
}

// AppendPublication adds a publication to the end of a JSONL file.
func AppendPublication(path string, pub reference.Publication) error {
	data, err := reference.Marshal(pub)
	if err != nil {
		return err
	}
	return appendLine(path, data)
}

// WritePublications writes all publications to a JSONL file, replacing existing content.
func WritePublications(path string, pubs []reference.Publication) error {
	return writeLines(path, len(pubs), func(i int) ([]byte, error) {
		return reference.Marshal(pubs[i])
	})
}

// FindByDOI searches for a publication by DOI. DOIs are compared after
// normalization, so "https://doi.org/10.1/X" matches "10.1/x".
func FindByDOI(pubs []reference.Publication, doi string) (int, bool) {
	doi = bibtex.NormalizeDOI(doi)
	if doi == "" {
		return -1, false
	}
	for i, pub := range pubs {
		if bibtex.NormalizeDOI(pub.Head().DOI) == doi {
			return i, true
		}
	}
	return -1, false
}

// FindByKey searches for a publication by citation key.
func FindByKey(pubs []reference.Publication, key string) (int, bool) {
	for i, pub := range pubs {
		if pub.Head().Key == key {
			return i, true
		}
	}
	return -1, false
}

// GenerateUniqueKey returns a citation key that doesn't conflict with existing publications.
// If the base key exists, appends -2, -3, etc.
func GenerateUniqueKey(pubs []reference.Publication, baseKey string) string {
	if _, found := FindByKey(pubs, baseKey); !found {
		return baseKey
	}

	// Start at 2: baseKey is taken, so first duplicate becomes baseKey-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseKey, i)
		if _, found := FindByKey(pubs, candidate); !found {
			return candidate
		}
	}
}

// MaxSerial returns the largest serial number among pubs.
func MaxSerial(pubs []reference.Publication) int64 {
	var max int64
	for _, pub := range pubs {
		if s := pub.Head().Serial; s > max {
			max = s
		}
	}
	return max
}

// ReadVenues reads all registry venues from a JSONL file.
func ReadVenues(path string) ([]reference.Venue, error) {
	var venues []reference.Venue
	err := readLines(path, func(line []byte, _ int) error {
		var v reference.Venue
		if err := json.Unmarshal(line, &v); err != nil {
			return err
		}
		venues = append(venues, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return venues, nil
}

// AppendVenue adds a venue to the end of a JSONL file. Proxies are refused.
func AppendVenue(path string, v reference.Venue) error {
	if v.Proxy || v.ID <= 0 {
		return fmt.Errorf("venue %q is not a registry venue", v.Name)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding venue: %w", err)
	}
	return appendLine(path, data)
}

// WriteVenues writes all venues to a JSONL file, replacing existing content.
func WriteVenues(path string, venues []reference.Venue) error {
	return writeLines(path, len(venues), func(i int) ([]byte, error) {
		return json.Marshal(venues[i])
	})
}

// ReadPersons reads all known persons from a JSONL file.
func ReadPersons(path string) ([]reference.Person, error) {
	var people []reference.Person
	err := readLines(path, func(line []byte, _ int) error {
		var p reference.Person
		if err := json.Unmarshal(line, &p); err != nil {
			return err
		}
		people = append(people, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

// WritePersons writes all persons to a JSONL file, replacing existing content.
func WritePersons(path string, people []reference.Person) error {
	return writeLines(path, len(people), func(i int) ([]byte, error) {
		return json.Marshal(people[i])
	})
}
