package catalog

import (
	"github.com/MrSnakeDoc/reel/internal/domain"
)

// Source is the authoritative, read-only catalog the binary ships with.
// Nothing mutates a Source after it has been mapped; callers receive copies.
type Source struct {
	Version    int
	Entries    []domain.Entry
	Categories []domain.Category

	// DefaultFavorites seeds the vault of known identities, keyed by identity
	// name, valued by catalog entry ids.
	DefaultFavorites map[string][]string
}

// EntriesCopy returns a deep copy of the catalog entries.
func (s *Source) EntriesCopy() []domain.Entry {
	out := make([]domain.Entry, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Clone()
	}
	return out
}

// CategoryNames returns the declared category names in order.
func (s *Source) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Colors returns a fresh name -> color map.
func (s *Source) Colors() map[string]string {
	colors := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		colors[c.Name] = c.Color
	}
	return colors
}

// Favorites returns a fresh copy of the default favorites.
func (s *Source) Favorites() map[string][]string {
	out := make(map[string][]string, len(s.DefaultFavorites))
	for identity, ids := range s.DefaultFavorites {
		out[identity] = append([]string(nil), ids...)
	}
	return out
}
