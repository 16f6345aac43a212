package venue

import (
	"sync"

	"github.com/matsen/bibsync/internal/reference"
)

// MemRegistry is an in-memory Registry, used for tests and for dry runs.
type MemRegistry struct {
	mu     sync.RWMutex
	venues map[reference.VenueKind][]reference.Venue
}

// NewMemRegistry creates a registry holding venues. See Add.
func NewMemRegistry(venues ...reference.Venue) *MemRegistry {
	m := &MemRegistry{venues: make(map[reference.VenueKind][]reference.Venue)}
	for _, v := range venues {
		m.Add(v)
	}
	return m
}

// Add stores a copy of v with its name normalized. A zero ID is replaced
// by the next free id of the venue's kind. The stored venue is returned.
func (m *MemRegistry) Add(v reference.Venue) reference.Venue {
	m.mu.Lock()
	defer m.mu.Unlock()

	v.Name = NormalizeName(v.Name)
	v.Proxy = false
	if v.ID == 0 {
		var max int64
		for _, existing := range m.venues[v.Kind] {
			if existing.ID > max {
				max = existing.ID
			}
		}
		v.ID = max + 1
	}
	m.venues[v.Kind] = append(m.venues[v.Kind], v)
	return v
}

// FindByID implements Registry.
func (m *MemRegistry) FindByID(kind reference.VenueKind, id int64) (*reference.Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.venues[kind] {
		if v.ID == id {
			found := v
			return &found, nil
		}
	}
	return nil, nil
}

// FindByExactName implements Registry.
func (m *MemRegistry) FindByExactName(kind reference.VenueKind, name string) ([]reference.Venue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name = NormalizeName(name)
	var out []reference.Venue
	for _, v := range m.venues[kind] {
		if v.Name == name {
			out = append(out, v)
		}
	}
	return out, nil
}

// All returns every venue of a kind in insertion order.
func (m *MemRegistry) All(kind reference.VenueKind) []reference.Venue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]reference.Venue(nil), m.venues[kind]...)
}
