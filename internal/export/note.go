package export

import (
	"golang.org/x/text/language"

	"github.com/matsen/bibsync/internal/i18n"
	"github.com/matsen/bibsync/internal/reference"
)

// note phrases the venue's ranking for the publication year. Equal JCR and
// SJR quartiles collapse into one phrase. It returns "" when the venue has
// no ranking for that year.
func (s *Serializer) note(v *reference.Venue, year int, locale language.Tag) string {
	r, ok := v.RankingFor(year)
	if !ok || r.Empty() || s.catalog == nil {
		return ""
	}

	var phrases []string
	if r.JCR.Valid() && r.JCR == r.SJR {
		phrases = append(phrases, s.catalog.Format(i18n.KeyQuartileBoth, locale, r.JCR.String()))
	} else {
		if r.JCR.Valid() {
			phrases = append(phrases, s.catalog.Format(i18n.KeyQuartileJCR, locale, r.JCR.String()))
		}
		if r.SJR.Valid() {
			phrases = append(phrases, s.catalog.Format(i18n.KeyQuartileSJR, locale, r.SJR.String()))
		}
	}
	if r.Impact > 0 {
		phrases = append(phrases, s.catalog.Format(i18n.KeyImpact, locale, r.Impact))
	}

	joined := phrases[0]
	for _, p := range phrases[1:] {
		joined = s.catalog.Format(i18n.KeyList, locale, joined, p)
	}
	return s.catalog.Format(i18n.KeySentence, locale, joined)
}
