package venue

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matsen/bibsync/internal/reference"
)

// seedVenue is the YAML form of a registry venue. Quartiles are written
// as "Q1".."Q4".
type seedVenue struct {
	ID        int64         `yaml:"id"`
	Kind      string        `yaml:"kind"`
	Name      string        `yaml:"name"`
	Publisher string        `yaml:"publisher"`
	ISSN      string        `yaml:"issn"`
	ISBN      string        `yaml:"isbn"`
	Rankings  []seedRanking `yaml:"rankings"`
}

type seedRanking struct {
	Year   int     `yaml:"year"`
	JCR    string  `yaml:"jcr"`
	SJR    string  `yaml:"sjr"`
	Impact float64 `yaml:"impact"`
}

// LoadSeed reads a YAML list of venues. Ids may be omitted; see
// MemRegistry.Add.
func LoadSeed(r io.Reader) ([]reference.Venue, error) {
	var seeds []seedVenue
	if err := yaml.NewDecoder(r).Decode(&seeds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing venue seed: %w", err)
	}

	venues := make([]reference.Venue, 0, len(seeds))
	for i, s := range seeds {
		v, err := s.venue()
		if err != nil {
			return nil, fmt.Errorf("venue %d: %w", i+1, err)
		}
		venues = append(venues, v)
	}
	return venues, nil
}

func (s seedVenue) venue() (reference.Venue, error) {
	kind, err := ParseKind(s.Kind)
	if err != nil {
		return reference.Venue{}, err
	}
	name := NormalizeName(s.Name)
	if name == "" {
		return reference.Venue{}, fmt.Errorf("missing name")
	}

	v := reference.Venue{
		ID:        s.ID,
		Kind:      kind,
		Name:      name,
		Publisher: s.Publisher,
		ISSN:      s.ISSN,
		ISBN:      s.ISBN,
	}
	for _, r := range s.Rankings {
		jcr, err := ParseQuartile(r.JCR)
		if err != nil {
			return reference.Venue{}, fmt.Errorf("%s %d: %w", name, r.Year, err)
		}
		sjr, err := ParseQuartile(r.SJR)
		if err != nil {
			return reference.Venue{}, fmt.Errorf("%s %d: %w", name, r.Year, err)
		}
		v.Rankings = append(v.Rankings, reference.Ranking{Year: r.Year, JCR: jcr, SJR: sjr, Impact: r.Impact})
	}
	return v, nil
}

// ParseKind accepts "journal" or "conference" in any case.
func ParseKind(s string) (reference.VenueKind, error) {
	switch reference.VenueKind(strings.ToLower(strings.TrimSpace(s))) {
	case reference.VenueJournal:
		return reference.VenueJournal, nil
	case reference.VenueConference:
		return reference.VenueConference, nil
	}
	return "", fmt.Errorf("unknown venue kind %q", s)
}

// ParseQuartile accepts "Q1".."Q4" in any case; empty means unranked.
func ParseQuartile(s string) (reference.Quartile, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return reference.QuartileNone, nil
	}
	for q := reference.Q1; q <= reference.Q4; q++ {
		if q.String() == s {
			return q, nil
		}
	}
	return reference.QuartileNone, fmt.Errorf("invalid quartile %q", s)
}
