package author

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bibsync/internal/latex"
)

// Name is one person from a BibTeX name list, split into its four parts.
type Name struct {
	First string
	Von   string
	Last  string
	Jr    string
}

// ParseNameList splits a BibTeX author or editor field into names.
//
// Names are separated by "and" at brace depth zero. Each name may be
// written as "First von Last", "von Last, First" or "von Last, Jr, First".
// Text inside braces is never split and is treated as upper case, so
// "{Barnes and Noble}" stays one corporate name. Each part is converted
// from LaTeX to plain text. A trailing "and others" is dropped.
func ParseNameList(text string) ([]Name, error) {
	var names []Name
	for _, raw := range splitTopLevel(text, " and ") {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "others" {
			continue
		}
		n, err := parseName(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing name %q: %w", raw, err)
		}
		names = append(names, n)
	}
	return names, nil
}

func parseName(raw string) (Name, error) {
	parts := splitTopLevel(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var n Name
	switch len(parts) {
	case 1:
		n = firstVonLast(words(parts[0]))
	case 2:
		n = vonLast(words(parts[0]))
		n.First = parts[1]
	default:
		n = vonLast(words(parts[0]))
		n.Jr = parts[1]
		n.First = strings.Join(parts[2:], ", ")
	}
	if n.Last == "" {
		return Name{}, fmt.Errorf("missing last name")
	}
	return n.decode()
}

// firstVonLast handles the comma-free form. The von part is the span from
// the first to the last lower-case word, provided a last name remains.
func firstVonLast(ws []string) Name {
	if len(ws) == 0 {
		return Name{}
	}
	vonStart, vonEnd := -1, -1
	for i, w := range ws[:len(ws)-1] {
		if isLower(w) {
			if vonStart < 0 {
				vonStart = i
			}
			vonEnd = i
		}
	}
	if vonStart < 0 {
		return Name{
			First: strings.Join(ws[:len(ws)-1], " "),
			Last:  ws[len(ws)-1],
		}
	}
	return Name{
		First: strings.Join(ws[:vonStart], " "),
		Von:   strings.Join(ws[vonStart:vonEnd+1], " "),
		Last:  strings.Join(ws[vonEnd+1:], " "),
	}
}

// vonLast handles the part before the first comma: leading lower-case
// words are the von part, the rest is the last name.
func vonLast(ws []string) Name {
	end := 0
	for end < len(ws)-1 && isLower(ws[end]) {
		end++
	}
	return Name{
		Von:  strings.Join(ws[:end], " "),
		Last: strings.Join(ws[end:], " "),
	}
}

func (n Name) decode() (Name, error) {
	var err error
	for _, p := range []*string{&n.First, &n.Von, &n.Last, &n.Jr} {
		if *p, err = latex.ToText(*p); err != nil {
			return Name{}, err
		}
	}
	return n, nil
}

// isLower reports whether a word starts with a lower-case letter outside
// braces. Braced words count as upper case.
func isLower(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLower(r)
}

// words splits on whitespace at brace depth zero.
func words(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case unicode.IsSpace(r) && depth == 0:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// splitTopLevel splits s on sep wherever sep occurs at brace depth zero.
// Matching is case-insensitive so "AND" separates names too.
func splitTopLevel(s, sep string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && i+len(sep) <= len(s) && strings.EqualFold(s[i:i+len(sep)], sep) {
			out = append(out, s[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	return append(out, s[start:])
}
