package bibtex

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed entry. Scanning resumes at the next '@'.
type SyntaxError struct {
	Line int    // Line number where the error was detected (1-indexed)
	Key  string // Citation key, if it was read before the error
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("line %d (%s): %s", e.Line, e.Key, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads every entry from r. Malformed entries are skipped and
// reported in the error slice; well-formed entries around them are kept.
// @string macros are expanded, @comment and @preamble are ignored, and a
// bare identifier with no @string definition is kept verbatim (so month
// macros such as jan stay "jan").
func Parse(r io.Reader) ([]*Entry, []error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, []error{fmt.Errorf("reading bibtex: %w", err)}
	}
	return ParseString(string(data))
}

// ParseString is Parse over an in-memory document.
func ParseString(src string) ([]*Entry, []error) {
	s := &scanner{
		src:    []rune(src),
		line:   1,
		macros: make(map[string]string),
	}

	var entries []*Entry
	var errs []error
	for s.skipToEntry() {
		start, startLine := s.pos, s.line
		e, err := s.entry()
		if err != nil {
			errs = append(errs, err)
			s.pos, s.line = start+1, startLine
			continue
		}
		if e != nil {
			entries = append(entries, e)
		}
	}
	return entries, errs
}

type scanner struct {
	src    []rune
	pos    int
	line   int
	macros map[string]string
	key    string // key of the entry being scanned, for errors
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Line: s.line, Key: s.key, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) next() rune {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.next()
	}
}

// skipToEntry advances to the next '@'. Text between entries is a comment.
func (s *scanner) skipToEntry() bool {
	for !s.eof() {
		if s.peek() == '@' {
			return true
		}
		s.next()
	}
	return false
}

func (s *scanner) expect(c rune) error {
	s.skipSpace()
	if s.eof() {
		return s.errorf("expected %q, found end of input", c)
	}
	if got := s.peek(); got != c {
		return s.errorf("expected %q, found %q", c, got)
	}
	s.next()
	return nil
}

func isIdentRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("_-:.+/'", c)
}

func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() && isIdentRune(s.peek()) {
		s.next()
	}
	return string(s.src[start:s.pos])
}

// entry scans one @-block. It returns nil without error for @comment,
// @preamble and @string blocks.
func (s *scanner) entry() (*Entry, error) {
	s.key = ""
	s.next() // '@'
	s.skipSpace()
	entryType := strings.ToLower(s.ident())
	if entryType == "" {
		return nil, s.errorf("missing entry type after '@'")
	}

	s.skipSpace()
	var closing rune
	switch s.peek() {
	case '{':
		closing = '}'
	case '(':
		closing = ')'
	default:
		return nil, s.errorf("expected '{' or '(' after @%s", entryType)
	}
	s.next()

	switch entryType {
	case "comment", "preamble":
		_, err := s.balanced(closing)
		return nil, err
	case "string":
		return nil, s.stringMacro(closing)
	}

	s.skipSpace()
	keyStart := s.pos
	for !s.eof() && s.peek() != ',' && s.peek() != closing && !unicode.IsSpace(s.peek()) {
		s.next()
	}
	s.key = string(s.src[keyStart:s.pos])
	if s.key == "" {
		return nil, s.errorf("missing citation key in @%s", entryType)
	}
	e := NewEntry(entryType, s.key)

	for {
		s.skipSpace()
		if s.eof() {
			return nil, s.errorf("unterminated entry")
		}
		switch s.peek() {
		case closing:
			s.next()
			return e, nil
		case ',':
			s.next()
			continue
		}

		name := s.ident()
		if name == "" {
			return nil, s.errorf("expected field name, found %q", s.peek())
		}
		if err := s.expect('='); err != nil {
			return nil, err
		}
		value, err := s.value(closing)
		if err != nil {
			return nil, err
		}
		e.Set(name, value)

		s.skipSpace()
		if s.eof() {
			return nil, s.errorf("unterminated entry")
		}
		if c := s.peek(); c != ',' && c != closing {
			return nil, s.errorf("expected ',' or %q after field %s, found %q", closing, name, c)
		}
	}
}

func (s *scanner) stringMacro(closing rune) error {
	s.skipSpace()
	name := strings.ToLower(s.ident())
	if name == "" {
		return s.errorf("missing @string name")
	}
	if err := s.expect('='); err != nil {
		return err
	}
	value, err := s.value(closing)
	if err != nil {
		return err
	}
	s.macros[name] = value
	return s.expect(closing)
}

// value scans a field value: braced, quoted, numeric or macro parts joined
// by '#'.
func (s *scanner) value(closing rune) (string, error) {
	var b strings.Builder
	for {
		s.skipSpace()
		if s.eof() {
			return "", s.errorf("missing field value")
		}

		switch c := s.peek(); {
		case c == '{':
			s.next()
			part, err := s.balanced('}')
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		case c == '"':
			s.next()
			part, err := s.quoted()
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		case isIdentRune(c):
			word := s.ident()
			if expansion, ok := s.macros[strings.ToLower(word)]; ok {
				b.WriteString(expansion)
			} else {
				b.WriteString(word)
			}
		default:
			return "", s.errorf("unexpected %q in field value", c)
		}

		s.skipSpace()
		if s.peek() != '#' {
			return b.String(), nil
		}
		s.next()
	}
}

// balanced returns the raw text up to the closing delimiter, keeping
// nested braces intact.
func (s *scanner) balanced(closing rune) (string, error) {
	start := s.pos
	startLine := s.line
	depth := 0
	for !s.eof() {
		c := s.next()
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closing && depth == 0:
			return string(s.src[start : s.pos-1]), nil
		case c == '}':
			return "", s.errorf("unbalanced '}'")
		}
	}
	return "", &SyntaxError{Line: startLine, Key: s.key, Msg: "unterminated braced value"}
}

// quoted returns the raw text up to the next '"' outside braces.
func (s *scanner) quoted() (string, error) {
	start := s.pos
	startLine := s.line
	depth := 0
	for !s.eof() {
		c := s.next()
		switch {
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return "", s.errorf("unbalanced '}' in quoted value")
			}
			depth--
		case c == '"' && depth == 0:
			return string(s.src[start : s.pos-1]), nil
		}
	}
	return "", &SyntaxError{Line: startLine, Key: s.key, Msg: "unterminated quoted value"}
}
