package store

import (
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
	"github.com/MrSnakeDoc/reel/internal/library"
)

// Source tells where a loaded Snapshot came from.
type Source int

const (
	// SourceNone means nothing was persisted yet.
	SourceNone Source = iota
	// SourceCurrent means the current key layout was read.
	SourceCurrent
	// SourceLegacy means only the legacy keys were found.
	SourceLegacy
)

func (s Source) String() string {
	switch s {
	case SourceCurrent:
		return "current"
	case SourceLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// Snapshot is the persisted part of library.State.
type Snapshot struct {
	CatalogVersion int
	Entries        []domain.Entry
	Categories     []string
	CategoryColors map[string]string
	Favorites      favorites.Ledger
	ActiveIdentity string
	IsAuthorized   bool

	// Legacy is set only for SourceLegacy; Entries is empty in that case
	// until the legacy-shape migration has run.
	Legacy []LegacyEntry
}

// FromState extracts the persisted fields of s.
func FromState(s library.State) Snapshot {
	c := s.Clone()
	return Snapshot{
		CatalogVersion: c.CatalogVersion,
		Entries:        c.Entries,
		Categories:     c.Categories,
		CategoryColors: c.CategoryColors,
		Favorites:      c.Favorites,
		ActiveIdentity: c.ActiveIdentity,
		IsAuthorized:   c.IsAuthorized,
	}
}

// State builds a normalized working state. Session-only fields start empty.
func (s Snapshot) State() library.State {
	return library.State{
		CatalogVersion: s.CatalogVersion,
		Entries:        s.Entries,
		Categories:     s.Categories,
		CategoryColors: s.CategoryColors,
		Favorites:      s.Favorites,
		ActiveIdentity: s.ActiveIdentity,
		IsAuthorized:   s.IsAuthorized,
	}.Clone().Normalize()
}
