package bibtex

import (
	"fmt"
	"io"
	"strings"
)

// Format renders one entry. Values are written inside braces except month
// macros, which are written bare. Values must already be markup-escaped.
func Format(e *Entry) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", e.Type, e.Key))
	for _, f := range e.Fields() {
		if f.Name == "month" && isMonthMacro(f.Value) {
			b.WriteString(fmt.Sprintf("  %s = %s,\n", f.Name, f.Value))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.Name, f.Value))
	}
	b.WriteString("}\n")

	return b.String()
}

// Write renders entries in order, separated by blank lines.
func Write(w io.Writer, entries []*Entry) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, Format(e)); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.Key, err)
		}
	}
	return nil
}
