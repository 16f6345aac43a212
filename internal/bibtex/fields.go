package bibtex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// plainFields never carry LaTeX markup: identifiers, locators and the
// numeric fields whose punctuation has its own normalization.
var plainFields = map[string]bool{
	"doi":     true,
	"url":     true,
	"isbn":    true,
	"issn":    true,
	"file":    true,
	"pdf":     true,
	"eprint":  true,
	"venueid": true,
	"pages":   true,
	"year":    true,
	"month":   true,
}

// IsMarkupField reports whether a field's value goes through LaTeX
// conversion. The set is the same for every entry type.
func IsMarkupField(name string) bool {
	return !plainFields[strings.ToLower(name)]
}

var monthMacros = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// ParseMonth accepts a numeric month ("1", "01"), a three-letter
// abbreviation ("jan", "Jan.") or a full English name ("January").
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	if s == "" {
		return 0, fmt.Errorf("empty month")
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}

	lower := strings.ToLower(s)
	for i, abbrev := range monthMacros {
		m := time.Month(i + 1)
		if lower == abbrev || lower == strings.ToLower(m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unrecognized month %q", s)
}

// MonthMacro returns the three-letter BibTeX macro for a month.
func MonthMacro(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthMacros[m-1]
}

func isMonthMacro(s string) bool {
	for _, m := range monthMacros {
		if s == m {
			return true
		}
	}
	return false
}

var pageSeparator = regexp.MustCompile(`\s*(?:-+|–|—)\s*`)

// PageRange normalizes any run of hyphens (or an en/em dash) between page
// numbers to a single hyphen, the form stored on typed publications.
func PageRange(s string) string {
	return pageSeparator.ReplaceAllString(strings.TrimSpace(s), "-")
}

// CanonicalPages renders a page range with the two-hyphen BibTeX separator.
func CanonicalPages(s string) string {
	return pageSeparator.ReplaceAllString(strings.TrimSpace(s), "--")
}
