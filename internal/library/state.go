// Package library holds the working set of a session and the pure transition
// functions applied to it for every user intent.
//
// State is a value. Every transition takes a State and returns a new one; the
// entries slice, the reviews of touched entries, the category list and the
// favorites ledger are copied before being changed, so a State handed out to a
// reader is never modified behind its back.
package library

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
)

// Playlist filters besides category names.
const (
	FilterAll   = "All"
	FilterVault = "Vault"
)

// Test seams.
var (
	newID = uuid.NewString
	now   = time.Now
)

// State is the explicit application state threaded through reconciliation,
// the reducer and persistence.
type State struct {
	// ─────────────────────────────
	// Persisted
	// ─────────────────────────────

	CatalogVersion int
	Entries        []domain.Entry
	Categories     []string
	CategoryColors map[string]string
	Favorites      favorites.Ledger
	ActiveIdentity string
	IsAuthorized   bool

	// ─────────────────────────────
	// Session only
	// ─────────────────────────────

	// SelectedID is the entry currently loaded in the player ("" for none).
	SelectedID string

	// Filter is FilterAll, FilterVault or a category name.
	Filter string
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Entries = make([]domain.Entry, len(s.Entries))
	for i, e := range s.Entries {
		out.Entries[i] = e.Clone()
	}
	out.Categories = append([]string{}, s.Categories...)
	out.CategoryColors = copyColors(s.CategoryColors)
	out.Favorites = s.Favorites.Clone()
	return out
}

// Normalize fills nil collections and defaults so that a State coming from
// any source behaves the same.
func (s State) Normalize() State {
	if s.Entries == nil {
		s.Entries = []domain.Entry{}
	}
	for i := range s.Entries {
		if s.Entries[i].Reviews == nil {
			s.Entries[i].Reviews = []domain.Review{}
		}
		if !s.Entries[i].Status.Valid() {
			s.Entries[i].Status = domain.StatusReady
		}
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	if s.CategoryColors == nil {
		s.CategoryColors = map[string]string{}
	}
	if s.Favorites == nil {
		s.Favorites = favorites.Ledger{}
	}
	if s.Filter == "" {
		s.Filter = FilterAll
	}
	if s.SelectedID != "" && s.indexOf(s.SelectedID) < 0 {
		s.SelectedID = ""
	}
	if s.SelectedID == "" && len(s.Entries) > 0 {
		s.SelectedID = s.Entries[0].ID
	}
	return s
}

func (s State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// update copies the entries slice and applies fn to a clone of the entry with
// the given id. Missing ids return s unchanged.
func (s State) update(id string, fn func(e *domain.Entry)) State {
	idx := s.indexOf(id)
	if idx < 0 {
		return s
	}
	entries := make([]domain.Entry, len(s.Entries))
	copy(entries, s.Entries)
	e := entries[idx].Clone()
	fn(&e)
	entries[idx] = e
	s.Entries = entries
	return s
}

func (s State) hasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

func copyColors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
