package author

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bibsync/internal/latex"
	"github.com/matsen/bibsync/internal/reference"
)

// FormatNameList renders people as a BibTeX name list, each as
// "von Last, Jr, First" with LaTeX special characters escaped. Parts that
// would split differently on re-parse are braced.
func FormatNameList(people []reference.Person) string {
	formatted := make([]string, 0, len(people))
	for _, p := range people {
		formatted = append(formatted, formatName(p))
	}
	return strings.Join(formatted, " and ")
}

func formatName(p reference.Person) string {
	last := part(p.Last)
	if p.Von == "" && len(strings.Fields(p.Last)) > 1 {
		if r, _ := utf8.DecodeRuneInString(p.Last); unicode.IsLower(r) {
			last = "{" + latex.Escape(p.Last) + "}"
		}
	}
	family := last
	if p.Von != "" {
		family = part(p.Von) + " " + last
	}

	switch {
	case p.Jr != "":
		return family + ", " + part(p.Jr) + ", " + part(p.First)
	case p.First != "":
		return family + ", " + part(p.First)
	}
	return family
}

// part escapes one name part and braces it when it holds a comma or the
// word "and".
func part(s string) string {
	escaped := latex.Escape(s)
	if strings.Contains(s, ",") || len(splitTopLevel(s, " and ")) > 1 {
		return "{" + escaped + "}"
	}
	return escaped
}
