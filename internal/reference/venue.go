package reference

import "fmt"

// VenueKind distinguishes journals from conferences. Each kind has its own
// registry id space.
type VenueKind string

const (
	VenueJournal    VenueKind = "journal"
	VenueConference VenueKind = "conference"
)

// Identifiers are the bibliographic identifiers a venue may carry.
type Identifiers struct {
	ISSN string `json:"issn,omitempty"`
	ISBN string `json:"isbn,omitempty"`
}

// Venue is a journal or conference. Registry entries have a positive ID;
// proxies have none and are never persisted.
type Venue struct {
	ID        int64     `json:"id,omitempty"`
	Kind      VenueKind `json:"kind"`
	Name      string    `json:"name"`
	Publisher string    `json:"publisher,omitempty"`
	ISSN      string    `json:"issn,omitempty"`
	ISBN      string    `json:"isbn,omitempty"`
	Proxy     bool      `json:"proxy,omitempty"`
	Rankings  []Ranking `json:"rankings,omitempty"`
}

// NewProxy builds a transient stand-in for a venue missing from the registry.
func NewProxy(kind VenueKind, name, publisher string, ids Identifiers) *Venue {
	return &Venue{
		Kind:      kind,
		Name:      name,
		Publisher: publisher,
		ISSN:      ids.ISSN,
		ISBN:      ids.ISBN,
		Proxy:     true,
	}
}

// Persistent reports whether the venue is a registry entry.
func (v *Venue) Persistent() bool {
	return v != nil && !v.Proxy && v.ID > 0
}

// Identifiers returns the venue's ISSN and ISBN.
func (v *Venue) Identifiers() Identifiers {
	return Identifiers{ISSN: v.ISSN, ISBN: v.ISBN}
}

// RankingFor returns the ranking recorded for the given year.
func (v *Venue) RankingFor(year int) (Ranking, bool) {
	if v == nil {
		return Ranking{}, false
	}
	for _, r := range v.Rankings {
		if r.Year == year {
			return r, true
		}
	}
	return Ranking{}, false
}

// Quartile is a journal ranking quartile; 0 means unranked.
type Quartile int

const (
	QuartileNone Quartile = iota
	Q1
	Q2
	Q3
	Q4
)

// Valid reports whether q is one of Q1..Q4.
func (q Quartile) Valid() bool {
	return q >= Q1 && q <= Q4
}

func (q Quartile) String() string {
	if !q.Valid() {
		return ""
	}
	return fmt.Sprintf("Q%d", int(q))
}

// Ranking holds externally supplied quality indicators for one year.
type Ranking struct {
	Year   int      `json:"year"`
	JCR    Quartile `json:"jcr,omitempty"`    // Journal Citation Reports quartile
	SJR    Quartile `json:"sjr,omitempty"`    // SCImago Journal Rank quartile
	Impact float64  `json:"impact,omitempty"` // Impact factor, 0 if unknown
}

// Empty reports whether the ranking carries no indicator at all.
func (r Ranking) Empty() bool {
	return !r.JCR.Valid() && !r.SJR.Valid() && r.Impact <= 0
}
