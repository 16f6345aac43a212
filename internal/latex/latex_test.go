package latex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Plain title", "Plain title"},
		{"acute without braces", `Caf\'e`, "Café"},
		{"acute with braces", `Caf\'{e}`, "Café"},
		{"umlaut in group", `{\"O}sterreich`, "Österreich"},
		{"cedilla letter accent", `\c{c}a va`, "ça va"},
		{"cedilla with space", `Fran\c cois`, "François"},
		{"sharp s", `Stra{\ss}e`, "Straße"},
		{"dotless i accent", `Mart\'{\i}nez`, "Martínez"},
		{"diaeresis on dotless i", `Na\"{\i}ve`, "Naïve"},
		{"formatting macro keeps argument", `\emph{Deep} Learning`, "Deep Learning"},
		{"protective braces", `{BERT}: Pre-training`, "BERT: Pre-training"},
		{"en dash", `pages 1--10`, "pages 1–10"},
		{"em dash", `yes---no`, "yes—no"},
		{"escaped specials", `A \& B \% C \_ D \# E \$`, "A & B % C _ D # E $"},
		{"inline math", `$O(n^2)$ time`, "O(n^2) time"},
		{"logo with empty group", `\LaTeX{} rocks`, "LaTeX rocks"},
		{"tie becomes space", `Fig.~3`, "Fig. 3"},
		{"double quotes", "``quoted''", "“quoted”"},
		{"caron", `Dvo\v{r}\'ak`, "Dvořák"},
		{"brace symbols", `\textbraceleft{}x\textbraceright{}`, "{x}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToText(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"unbalanced open brace", "{unbalanced", 0},
		{"stray closing brace", "extra}", 5},
		{"trailing backslash", `trailing\`, 8},
		{"unterminated math", "$x + y", 0},
		{"accent at end", `caf\'`, 3},
		{"accent without target", `{\'}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToText(tt.input)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.offset, perr.Offset)
		})
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `Deep Learning \& Friends: 100\% \{cool\}`, Escape("Deep Learning & Friends: 100% {cool}"))
	assert.Equal(t, `a-{}-b`, Escape("a--b"))
	assert.Equal(t, `x\textasciicircum{}2`, Escape("x^2"))
}

func TestEscape_UnmatchedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lone open", "Sets like { a", `Sets like \textbraceleft{} a`},
		{"lone close", "a } b", `a \textbraceright{} b`},
		{"close before open", "} x {", `\textbraceright{} x \textbraceleft{}`},
		{"one pair and a spare", "{a} {b", `\{a\} \textbraceleft{}b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escape(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.Count(got, "{"), strings.Count(got, "}"), "escaped text must keep braces balanced")
		})
	}
}

func TestEscape_RoundTrip(t *testing.T) {
	inputs := []string{
		"Deep Learning & Friends: 100% {cool}",
		`C:\path\to`,
		"a--b---c",
		"it''s",
		"x^2 ~ y_1",
		"`quoted`",
		"#hash $dollar",
		"Café Ñandú",
		"O'Brien's -- notes",
		"{{nested}}",
		"Sets like { a",
		"a } b { c",
		"{{a}",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := ToText(Escape(in))
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}
