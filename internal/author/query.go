// Package author parses BibTeX name lists and matches people by name.
package author

import (
	"strings"

	"github.com/matsen/bibsync/internal/reference"
)

// Query represents a parsed author filter, as given to export --author.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author filter string into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu"
//   - "Yu, Timothy"  → first="Timothy", last="Yu"
//   - "van Gogh"     → last="van Gogh" (particles stay with the last name)
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		return Query{
			First: strings.TrimSpace(input[idx+1:]),
			Last:  strings.TrimSpace(input[:idx]),
		}
	}

	n := firstVonLast(words(input))
	last := n.Last
	if n.Von != "" {
		last = n.Von + " " + n.Last
	}
	return Query{First: n.First, Last: last}
}

// Matches checks if the query matches a person.
//
// The last name must equal the person's family name (von part included)
// case-insensitively. A first name in the query is a case-insensitive
// prefix of the person's first name, so "Tim" matches "Timothy C".
func (q Query) Matches(p reference.Person) bool {
	if !strings.EqualFold(q.Last, p.FamilyName()) && !strings.EqualFold(q.Last, p.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(p.First), strings.ToLower(q.First))
}

// MatchesAny checks if the query matches any person in the list.
func (q Query) MatchesAny(people []reference.Person) bool {
	for _, p := range people {
		if q.Matches(p) {
			return true
		}
	}
	return false
}

// AllMatch checks if every query matches at least one person.
func AllMatch(queries []Query, people []reference.Person) bool {
	for _, q := range queries {
		if !q.MatchesAny(people) {
			return false
		}
	}
	return true
}
