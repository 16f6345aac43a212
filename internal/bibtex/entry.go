// Package bibtex reads and writes BibTeX entries.
//
// An Entry is the raw, untyped form of one citation record: a citation key,
// an entry-type tag and ordered fields whose values still carry LaTeX
// markup. Typing and markup conversion happen in the importer.
package bibtex

import "strings"

// Field is one name/value pair of an entry.
type Field struct {
	Name  string
	Value string
}

// Entry is one citation record prior to typing.
type Entry struct {
	Type string // Entry-type tag, lower case ("article", "inproceedings")
	Key  string // Citation key

	values map[string]string
	order  []string
}

// NewEntry creates an empty entry.
func NewEntry(entryType, key string) *Entry {
	return &Entry{
		Type:   strings.ToLower(entryType),
		Key:    key,
		values: make(map[string]string),
	}
}

// Get returns a raw field value. Field names are case-insensitive.
func (e *Entry) Get(name string) (string, bool) {
	v, ok := e.values[strings.ToLower(name)]
	return v, ok
}

// Set stores a raw field value. A field set twice keeps its first position.
func (e *Entry) Set(name, value string) {
	name = strings.ToLower(name)
	if _, exists := e.values[name]; !exists {
		e.order = append(e.order, name)
	}
	e.values[name] = value
}

// Fields returns the fields in insertion order.
func (e *Entry) Fields() []Field {
	fields := make([]Field, len(e.order))
	for i, name := range e.order {
		fields[i] = Field{Name: name, Value: e.values[name]}
	}
	return fields
}

// Len returns the number of fields.
func (e *Entry) Len() int {
	return len(e.order)
}
