// Package latex converts the LaTeX markup found in BibTeX field values to
// plain text and back.
//
// ToText understands brace groups, escaped specials, accent macros, the
// common letter and symbol macros, dash and quote ligatures, and inline
// math. Unknown control words are dropped and their arguments kept, so
// \emph{word} becomes "word". Structural errors (unbalanced braces, a
// trailing backslash, an accent with nothing to accent, unterminated math)
// are reported as *ParseError.
//
// Escape is the inverse for plain text: ToText(Escape(s)) == s for any
// NFC-normalized s.
package latex

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ParseError describes malformed markup.
type ParseError struct {
	Offset int    // Rune offset where the problem was detected
	Msg    string // Description of the problem
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// ToText converts LaTeX markup to plain text.
func ToText(s string) (string, error) {
	if !strings.ContainsAny(s, "{}\\$~-`'") {
		return s, nil
	}
	p := &parser{src: []rune(s)}
	var b strings.Builder
	if err := p.parseGroup(&b, -1); err != nil {
		return "", err
	}
	return norm.NFC.String(b.String()), nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) errorf(offset int, format string, args ...interface{}) error {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() (rune, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

// parseGroup renders text until end of input (open < 0) or the '}' that
// closes the group opened at offset open.
func (p *parser) parseGroup(b *strings.Builder, open int) error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			p.pos++
			if err := p.parseGroup(b, p.pos-1); err != nil {
				return err
			}
		case '}':
			if open < 0 {
				return p.errorf(p.pos, "unexpected '}'")
			}
			p.pos++
			return nil
		case '\\':
			if err := p.parseCommand(b); err != nil {
				return err
			}
		case '$':
			if err := p.parseMath(b); err != nil {
				return err
			}
		case '~':
			p.pos++
			b.WriteByte(' ')
		case '-':
			n := p.run('-')
			switch {
			case n == 2:
				b.WriteRune('–')
			case n >= 3:
				b.WriteRune('—')
				b.WriteString(strings.Repeat("-", n-3))
			default:
				b.WriteByte('-')
			}
		case '`':
			if p.run('`') >= 2 {
				b.WriteRune('“')
			} else {
				b.WriteRune('‘')
			}
		case '\'':
			if p.run('\'') >= 2 {
				b.WriteRune('”')
			} else {
				b.WriteByte('\'')
			}
		default:
			p.pos++
			b.WriteRune(c)
		}
	}
	if open >= 0 {
		return p.errorf(open, "unbalanced '{'")
	}
	return nil
}

// run consumes up to three repetitions of c (two for quotes) and returns
// how many were consumed. Longer dash runs are consumed entirely.
func (p *parser) run(c rune) int {
	limit := 2
	if c == '-' {
		limit = len(p.src)
	}
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] == c && n < limit {
		p.pos++
		n++
	}
	return n
}

func (p *parser) parseCommand(b *strings.Builder) error {
	start := p.pos
	p.pos++ // backslash
	c, ok := p.peek()
	if !ok {
		return p.errorf(start, "trailing backslash")
	}

	if !isLetter(c) {
		p.pos++
		if mark, ok := symbolAccents[c]; ok {
			return p.applyAccent(b, mark, start)
		}
		switch c {
		case '\\', ' ', '\n', '\t', ',', ';', ':':
			b.WriteByte(' ')
		case '-', '!', '/', '@':
			// discretionary hyphen and spacing corrections render as nothing
		default:
			b.WriteRune(c)
		}
		return nil
	}

	name := p.word()
	if mark, ok := letterAccents[name]; ok {
		return p.applyAccent(b, mark, start)
	}
	p.skipSpaces()
	if s, ok := symbols[name]; ok {
		b.WriteString(s)
		p.skipEmptyGroup()
	}
	// Other control words vanish; a following argument group is rendered
	// by the caller as ordinary text.
	return nil
}

// applyAccent reads the accent target (a letter, a group, or a letter
// macro) and writes it with the combining mark after its first rune.
func (p *parser) applyAccent(b *strings.Builder, mark rune, start int) error {
	p.skipSpaces()
	c, ok := p.peek()
	if !ok {
		return p.errorf(start, "accent at end of input")
	}

	var target string
	switch c {
	case '{':
		p.pos++
		var inner strings.Builder
		if err := p.parseGroup(&inner, p.pos-1); err != nil {
			return err
		}
		target = inner.String()
	case '\\':
		var inner strings.Builder
		if err := p.parseCommand(&inner); err != nil {
			return err
		}
		target = inner.String()
	case '}':
		target = ""
	default:
		p.pos++
		target = string(c)
	}

	if target == "" {
		return p.errorf(start, "accent without a target")
	}
	runes := []rune(target)
	switch runes[0] {
	case 'ı':
		runes[0] = 'i'
	case 'ȷ':
		runes[0] = 'j'
	}
	b.WriteRune(runes[0])
	b.WriteRune(mark)
	b.WriteString(string(runes[1:]))
	return nil
}

func (p *parser) parseMath(b *strings.Builder) error {
	start := p.pos
	p.pos++ // opening $
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '$':
			p.pos++
			return nil
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteRune(c)
			b.WriteRune(p.src[p.pos+1])
			p.pos += 2
		case c == '{' || c == '}':
			p.pos++
		default:
			b.WriteRune(c)
			p.pos++
		}
	}
	return p.errorf(start, "unterminated math")
}

func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) skipEmptyGroup() {
	if p.pos+1 < len(p.src) && p.src[p.pos] == '{' && p.src[p.pos+1] == '}' {
		p.pos += 2
	}
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Escape converts plain text to LaTeX markup that ToText maps back to the
// same text. Non-ASCII characters are kept as UTF-8.
func Escape(s string) string {
	var b strings.Builder
	runes := []rune(s)
	paired := pairedBraces(runes)
	for i, c := range runes {
		switch c {
		case '\\':
			b.WriteString(`\textbackslash{}`)
		case '{', '}':
			// An escaped brace still counts toward BibTeX's brace balance,
			// so only matched pairs may be written as \{ \}.
			switch {
			case paired[i]:
				b.WriteByte('\\')
				b.WriteRune(c)
			case c == '{':
				b.WriteString(`\textbraceleft{}`)
			default:
				b.WriteString(`\textbraceright{}`)
			}
		case '&', '%', '$', '#', '_':
			b.WriteByte('\\')
			b.WriteRune(c)
		case '~':
			b.WriteString(`\textasciitilde{}`)
		case '^':
			b.WriteString(`\textasciicircum{}`)
		case '`':
			b.WriteString(`\textasciigrave{}`)
		case '-', '\'':
			// Break ligatures: "--" would read back as a dash, "''" as a quote.
			b.WriteRune(c)
			if i+1 < len(runes) && runes[i+1] == c {
				b.WriteString("{}")
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// pairedBraces reports, by rune index, the braces that close or are
// closed by another brace of s.
func pairedBraces(runes []rune) map[int]bool {
	paired := make(map[int]bool)
	var open []int
	for i, c := range runes {
		switch c {
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				continue
			}
			paired[open[len(open)-1]] = true
			paired[i] = true
			open = open[:len(open)-1]
		}
	}
	return paired
}
