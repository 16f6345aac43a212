// Package i18n formats localized messages for exported notes.
//
// The locale is always an explicit argument. Nothing here reads or changes
// a process-wide default language.
package i18n

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys used by the entry serializer.
const (
	KeyQuartileBoth = "note.quartile.both" // arg: quartile shared by JCR and SJR
	KeyQuartileJCR  = "note.quartile.jcr"  // arg: JCR quartile
	KeyQuartileSJR  = "note.quartile.sjr"  // arg: SJR quartile
	KeyImpact       = "note.impact"        // arg: impact factor
	KeyList         = "note.list"          // args: phrase so far, next phrase
	KeySentence     = "note.sentence"      // arg: joined phrases
)

// Catalog formats the message for key in the given locale.
type Catalog interface {
	Format(key string, tag language.Tag, args ...interface{}) string
}

var builtin = map[language.Tag]map[string]string{
	language.English: {
		KeyQuartileBoth: "JCR and SJR quartile %s",
		KeyQuartileJCR:  "JCR quartile %s",
		KeyQuartileSJR:  "SJR quartile %s",
		KeyImpact:       "impact factor %.3f",
		KeyList:         "%s; %s",
		KeySentence:     "Quality indicators: %s.",
	},
	language.Spanish: {
		KeyQuartileBoth: "cuartil %s en JCR y SJR",
		KeyQuartileJCR:  "cuartil JCR %s",
		KeyQuartileSJR:  "cuartil SJR %s",
		KeyImpact:       "factor de impacto %.3f",
		KeyList:         "%s; %s",
		KeySentence:     "Indicadores de calidad: %s.",
	},
}

// MessageCatalog is a Catalog backed by golang.org/x/text. English is the
// fallback for unsupported locales and missing keys.
type MessageCatalog struct {
	mu        sync.RWMutex
	builder   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	keys      map[language.Tag]map[string]bool
}

// NewMessageCatalog returns a catalog holding the built-in English and
// Spanish messages.
func NewMessageCatalog() *MessageCatalog {
	c := &MessageCatalog{
		builder: catalog.NewBuilder(catalog.Fallback(language.English)),
		keys:    make(map[language.Tag]map[string]bool),
	}
	for _, tag := range []language.Tag{language.English, language.Spanish} {
		if err := c.setAll(tag, builtin[tag]); err != nil {
			panic(err)
		}
	}
	return c
}

// setAll must be called with mu held for writing (or before publication).
func (c *MessageCatalog) setAll(tag language.Tag, msgs map[string]string) error {
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.builder.SetString(tag, k, msgs[k]); err != nil {
			return fmt.Errorf("setting %s/%s: %w", tag, k, err)
		}
		if c.keys[tag] == nil {
			c.keys[tag] = make(map[string]bool)
		}
		c.keys[tag][k] = true
	}

	known := false
	for _, t := range c.supported {
		if t == tag {
			known = true
			break
		}
	}
	if !known {
		c.supported = append(c.supported, tag)
		c.matcher = language.NewMatcher(c.supported)
	}
	return nil
}

// LoadYAML adds messages from a document mapping locale to key to format:
//
//	fr:
//	  note.sentence: "Indicateurs de qualité : %s."
//
// Existing messages for the same locale and key are replaced.
func (c *MessageCatalog) LoadYAML(r io.Reader) error {
	var doc map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decoding message catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for locale, msgs := range doc {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("invalid locale %q: %w", locale, err)
		}
		if err := c.setAll(tag, msgs); err != nil {
			return err
		}
	}
	return nil
}

// Match returns the supported locale closest to tag.
func (c *MessageCatalog) Match(tag language.Tag) language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return c.supported[idx]
}

// Format implements Catalog. A key the matched locale lacks is formatted
// in English.
func (c *MessageCatalog) Format(key string, tag language.Tag, args ...interface{}) string {
	matched := c.Match(tag)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.keys[matched][key] {
		matched = language.English
	}
	p := message.NewPrinter(matched, message.Catalog(c.builder))
	return p.Sprintf(key, args...)
}

// ParseLocale parses a BCP 47 locale name such as "en" or "es-MX".
// An empty name means English.
func ParseLocale(name string) (language.Tag, error) {
	if name == "" {
		return language.English, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", name, err)
	}
	return tag, nil
}
