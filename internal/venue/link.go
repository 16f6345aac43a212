package venue

import (
	"fmt"

	"github.com/matsen/bibsync/internal/reference"
)

// Relink replaces each stored registry venue link with the registry's
// current record, so rankings added after import reach the export note.
// Proxies are left as they are. A link to a venue the registry no longer
// has is a MissingVenueError.
func Relink(pubs []reference.Publication, registry Registry) error {
	for _, pub := range pubs {
		v := reference.VenueOf(pub)
		if !v.Persistent() {
			continue
		}
		key := pub.Head().Key
		current, err := registry.FindByID(v.Kind, v.ID)
		if err != nil {
			return &MissingVenueError{Key: key, Name: v.Name, Err: err}
		}
		if current == nil {
			return &MissingVenueError{Key: key, Name: fmt.Sprintf("%s #%d", v.Kind, v.ID)}
		}
		reference.SetVenue(pub, current)
	}
	return nil
}
