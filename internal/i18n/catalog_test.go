package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestFormat_BuiltinLocales(t *testing.T) {
	c := NewMessageCatalog()

	assert.Equal(t, "JCR quartile Q1", c.Format(KeyQuartileJCR, language.English, "Q1"))
	assert.Equal(t, "cuartil JCR Q1", c.Format(KeyQuartileJCR, language.Spanish, "Q1"))
	assert.Equal(t, "Quality indicators: x.", c.Format(KeySentence, language.English, "x"))
	assert.Equal(t, "Indicadores de calidad: x.", c.Format(KeySentence, language.Spanish, "x"))
	assert.Equal(t, "impact factor 2.500", c.Format(KeyImpact, language.English, 2.5))
}

func TestFormat_RegionalFallsBackToBase(t *testing.T) {
	c := NewMessageCatalog()

	assert.Equal(t, language.Spanish, c.Match(language.MustParse("es-MX")))
	assert.Equal(t, "cuartil SJR Q2", c.Format(KeyQuartileSJR, language.MustParse("es-MX"), "Q2"))
}

func TestFormat_UnsupportedFallsBackToEnglish(t *testing.T) {
	c := NewMessageCatalog()

	assert.Equal(t, language.English, c.Match(language.Japanese))
	assert.Equal(t, "SJR quartile Q3", c.Format(KeyQuartileSJR, language.Japanese, "Q3"))
}

func TestLoadYAML(t *testing.T) {
	c := NewMessageCatalog()
	doc := `
fr:
  note.sentence: "Indicateurs de qualité : %s."
en:
  note.impact: "IF %.1f"
`
	require.NoError(t, c.LoadYAML(strings.NewReader(doc)))

	assert.Equal(t, language.French, c.Match(language.French))
	assert.Equal(t, "Indicateurs de qualité : x.", c.Format(KeySentence, language.French, "x"))
	assert.Equal(t, "IF 2.5", c.Format(KeyImpact, language.English, 2.5))
	// Keys missing from a loaded locale come from the English fallback.
	assert.Equal(t, "JCR quartile Q4", c.Format(KeyQuartileJCR, language.French, "Q4"))
}

func TestLoadYAML_Errors(t *testing.T) {
	c := NewMessageCatalog()

	assert.Error(t, c.LoadYAML(strings.NewReader("not: [valid")))
	assert.Error(t, c.LoadYAML(strings.NewReader("\"not a locale!\":\n  k: v\n")))
	assert.NoError(t, c.LoadYAML(strings.NewReader("")))
}

func TestParseLocale(t *testing.T) {
	tag, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, language.English, tag)

	tag, err = ParseLocale("es")
	require.NoError(t, err)
	assert.Equal(t, language.Spanish, tag)

	_, err = ParseLocale("??")
	assert.Error(t, err)
}
