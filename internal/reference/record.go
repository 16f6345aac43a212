package reference

import (
	"encoding/json"
	"fmt"
)

// New returns an empty publication of the given kind.
func New(kind Kind) (Publication, error) {
	switch kind {
	case KindArticle:
		return &Article{}, nil
	case KindConferencePaper:
		return &ConferencePaper{}, nil
	case KindProceedings:
		return &Proceedings{}, nil
	case KindBook:
		return &Book{}, nil
	case KindBookPart:
		return &BookPart{}, nil
	case KindThesis:
		return &Thesis{}, nil
	case KindTechReport:
		return &TechReport{}, nil
	case KindManual:
		return &Manual{}, nil
	case KindPatent:
		return &Patent{}, nil
	case KindMisc:
		return &Misc{}, nil
	}
	return nil, fmt.Errorf("unknown publication kind %q", kind)
}

// envelope is the persisted form of a publication: its kind plus the
// variant's own JSON.
type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Marshal encodes a publication together with its kind. A registry venue
// is stored as a link (kind, id and name) and must be re-linked after
// decoding; a proxy keeps only the attributes its entry supplied.
func Marshal(p Publication) ([]byte, error) {
	if v := VenueOf(p); v != nil {
		p = withVenue(p, v.link())
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", p.Kind(), err)
	}
	return json.Marshal(envelope{Kind: p.Kind(), Data: data})
}

// Unmarshal decodes a publication written by Marshal.
func Unmarshal(data []byte) (Publication, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	p, err := New(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Data, p); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", env.Kind, err)
	}
	if v := VenueOf(p); v != nil && v.ID <= 0 {
		SetVenue(p, NewProxy(v.Kind, v.Name, v.Publisher, v.Identifiers()))
	}
	return p, nil
}

// link is the stored form of a venue inside a publication record.
func (v *Venue) link() *Venue {
	if v.Persistent() {
		return &Venue{ID: v.ID, Kind: v.Kind, Name: v.Name}
	}
	return &Venue{Kind: v.Kind, Name: v.Name, Publisher: v.Publisher, ISSN: v.ISSN, ISBN: v.ISBN}
}

// SetVenue replaces the venue of a publication that requires one. Other
// kinds are left unchanged.
func SetVenue(p Publication, v *Venue) {
	switch p := p.(type) {
	case *Article:
		p.Journal = v
	case *ConferencePaper:
		p.Conference = v
	}
}

// withVenue returns a shallow copy of p carrying v, leaving p untouched.
func withVenue(p Publication, v *Venue) Publication {
	switch p := p.(type) {
	case *Article:
		c := *p
		c.Journal = v
		return &c
	case *ConferencePaper:
		c := *p
		c.Conference = v
		return &c
	}
	return p
}
