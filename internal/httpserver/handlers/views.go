package handlers

import (
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/library"
)

// entryView is an entry with the fields a player needs precomputed.
type entryView struct {
	domain.Entry
	Thumbnail     string `json:"thumbnail"`
	EmbedURL      string `json:"embedUrl,omitempty"`
	CategoryColor string `json:"categoryColor"`
	IsFavorite    bool   `json:"isFavorite"`
}

// newEntryView renders e for identity ("" means the active identity).
func newEntryView(st library.State, e domain.Entry, identity string) entryView {
	if identity == "" {
		identity = st.ActiveIdentity
	}
	v := entryView{
		Entry:         e,
		Thumbnail:     domain.ThumbnailURL(e),
		CategoryColor: st.CategoryColor(e.Category),
		IsFavorite:    st.Favorites.Contains(identity, e.ID),
	}
	if e.Status == domain.StatusReady {
		v.EmbedURL = domain.EmbedURL(e.ExternalRef)
	}
	return v
}

func newEntryViews(st library.State, entries []domain.Entry, identity string) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryView(st, e, identity))
	}
	return out
}

func categoryViews(st library.State) []domain.Category {
	out := make([]domain.Category, 0, len(st.Categories))
	for _, name := range st.Categories {
		out = append(out, domain.Category{Name: name, Color: st.CategoryColor(name)})
	}
	return out
}
