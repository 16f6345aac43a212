package reference

import "strings"

// Person is an author or editor split into BibTeX name parts.
type Person struct {
	ID    int64  `json:"id,omitempty"`    // Local registry id, 0 if not known
	First string `json:"first,omitempty"` // First/given name(s)
	Von   string `json:"von,omitempty"`   // Lower-case particle ("van", "de la")
	Last  string `json:"last"`            // Last/family name
	Jr    string `json:"jr,omitempty"`    // Suffix ("Jr.", "III")
	ORCID string `json:"orcid,omitempty"` // ORCID identifier (without URL prefix)
}

// Known reports whether the person exists in the local registry.
func (p Person) Known() bool {
	return p.ID != 0
}

// FamilyName returns the von part and last name joined.
func (p Person) FamilyName() string {
	if p.Von == "" {
		return p.Last
	}
	return p.Von + " " + p.Last
}

// DisplayName formats the person as "First von Last, Jr".
func (p Person) DisplayName() string {
	var parts []string
	if p.First != "" {
		parts = append(parts, p.First)
	}
	parts = append(parts, p.FamilyName())
	name := strings.Join(parts, " ")
	if p.Jr != "" {
		name += ", " + p.Jr
	}
	return name
}
