package library

import (
	"math/rand"
	"strings"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
)

// surprisePool feeds AddSurprise.
var surprisePool = []string{"dQw4w9WgXcQ", "CHSnz0DQw68", "5Wn4M_9-H9I", "X_JBFLs3vAk", "LXO-jKksQkM"}

// surprisePick is swapped in tests.
var surprisePick = func(n int) int { return rand.Intn(n) }

// IncrementView counts one view. Debouncing is the caller's job.
func (s State) IncrementView(id string) State {
	return s.update(id, func(e *domain.Entry) {
		e.ViewCount++
	})
}

// ToggleLike flips the like flag. Liking a disliked entry clears the dislike.
func (s State) ToggleLike(id string) State {
	return s.update(id, func(e *domain.Entry) {
		if e.IsLiked {
			e.IsLiked = false
			e.LikeCount = dec(e.LikeCount)
			return
		}
		e.IsLiked = true
		e.LikeCount++
		if e.IsDisliked {
			e.IsDisliked = false
			e.DislikeCount = dec(e.DislikeCount)
		}
	})
}

// ToggleDislike mirrors ToggleLike.
func (s State) ToggleDislike(id string) State {
	return s.update(id, func(e *domain.Entry) {
		if e.IsDisliked {
			e.IsDisliked = false
			e.DislikeCount = dec(e.DislikeCount)
			return
		}
		e.IsDisliked = true
		e.DislikeCount++
		if e.IsLiked {
			e.IsLiked = false
			e.LikeCount = dec(e.LikeCount)
		}
	})
}

func dec(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return n - 1
}

// ToggleFavorite flips id in the vault of identity. An empty identity means
// the active one. Unknown entries are ignored.
func (s State) ToggleFavorite(identity, id string) State {
	if s.indexOf(id) < 0 {
		return s
	}
	if identity = favorites.Normalize(identity); identity == "" {
		identity = s.ActiveIdentity
	}
	s.Favorites = s.Favorites.Toggle(identity, id)
	return s
}

// ResetStats zeroes counters and flags of one entry. Reviews are untouched.
func (s State) ResetStats(id string) State {
	return s.update(id, resetStats)
}

// ResetAllStats zeroes counters and flags of every entry.
func (s State) ResetAllStats() State {
	entries := make([]domain.Entry, len(s.Entries))
	for i, e := range s.Entries {
		e = e.Clone()
		resetStats(&e)
		entries[i] = e
	}
	s.Entries = entries
	return s
}

func resetStats(e *domain.Entry) {
	e.ViewCount = 0
	e.LikeCount = 0
	e.DislikeCount = 0
	e.IsLiked = false
	e.IsDisliked = false
}

// AddEntry prepends a ready, user-sourced entry and selects it. It returns the
// new id, or "" when ref is blank.
func (s State) AddEntry(ref, title, category string) (State, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return s, ""
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = ref
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = domain.CategoryOther
	}

	e := domain.Entry{
		ID:          newID(),
		ExternalRef: ref,
		CreatedAt:   now(),
		Title:       title,
		Category:    category,
		Status:      domain.StatusReady,
		Reviews:     []domain.Review{},
	}
	s = s.prepend(e)
	s.SelectedID = e.ID
	return s, e.ID
}

// AddSurprise prepends a random pick from a fixed pool under CategoryOther.
func (s State) AddSurprise() (State, string) {
	ref := surprisePool[surprisePick(len(surprisePool))]
	return s.AddEntry(ref, "Surprise Signal", domain.CategoryOther)
}

func (s State) prepend(e domain.Entry) State {
	entries := make([]domain.Entry, 0, len(s.Entries)+1)
	entries = append(entries, e)
	entries = append(entries, s.Entries...)
	s.Entries = entries
	return s
}

// RemoveEntry deletes an entry and purges it from every vault in the same
// step. A removed selection moves to the new first entry, or to none.
func (s State) RemoveEntry(id string) State {
	idx := s.indexOf(id)
	if idx < 0 {
		return s
	}
	entries := make([]domain.Entry, 0, len(s.Entries)-1)
	entries = append(entries, s.Entries[:idx]...)
	entries = append(entries, s.Entries[idx+1:]...)
	s.Entries = entries
	s.Favorites = s.Favorites.Purge(id)

	if s.SelectedID == id {
		s.SelectedID = ""
		if len(s.Entries) > 0 {
			s.SelectedID = s.Entries[0].ID
		}
	}
	return s
}

// PurgeAll empties the working set together with every vault.
func (s State) PurgeAll() State {
	s.Entries = []domain.Entry{}
	s.Favorites = s.Favorites.Prune(func(string) bool { return false })
	s.SelectedID = ""
	return s
}

// SubmitReview appends an unapproved review. Ratings outside 1..5 and blank
// text are rejected; ok reports whether a review was created.
func (s State) SubmitReview(id string, rating int, text, author string) (next State, reviewID string, ok bool) {
	text = strings.TrimSpace(text)
	if !domain.ValidRating(rating) || text == "" || s.indexOf(id) < 0 {
		return s, "", false
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = s.ActiveIdentity
	}

	r := domain.Review{
		ID:          newID(),
		Rating:      rating,
		Text:        text,
		Author:      author,
		SubmittedAt: now(),
	}
	s = s.update(id, func(e *domain.Entry) {
		e.Reviews = append(e.Reviews, r)
	})
	return s, r.ID, true
}

// ApproveReview marks a review approved. Repeated calls are no-ops.
func (s State) ApproveReview(entryID, reviewID string) State {
	return s.update(entryID, func(e *domain.Entry) {
		for i := range e.Reviews {
			if e.Reviews[i].ID == reviewID {
				e.Reviews[i].Approved = true
				return
			}
		}
	})
}

// RejectReview deletes a review. Missing reviews are no-ops.
func (s State) RejectReview(entryID, reviewID string) State {
	return s.update(entryID, func(e *domain.Entry) {
		kept := make([]domain.Review, 0, len(e.Reviews))
		for _, r := range e.Reviews {
			if r.ID != reviewID {
				kept = append(kept, r)
			}
		}
		e.Reviews = kept
	})
}

// AddCategory registers a category. Without a color it borrows the color of
// CategoryOther. Existing or blank names are ignored.
func (s State) AddCategory(name, color string) State {
	name = strings.TrimSpace(name)
	if name == "" || name == FilterAll || name == FilterVault || s.hasCategory(name) {
		return s
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = domain.CategoryColor(s.CategoryColors, domain.CategoryOther)
	}

	s.Categories = append(append([]string{}, s.Categories...), name)
	s.CategoryColors = copyColors(s.CategoryColors)
	s.CategoryColors[name] = color
	return s
}

// RemoveCategory unregisters a category and its color. Entries keep the now
// dangling name. An active filter on it falls back to FilterAll.
func (s State) RemoveCategory(name string) State {
	if !s.hasCategory(name) {
		return s
	}
	kept := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	s.Categories = kept
	s.CategoryColors = copyColors(s.CategoryColors)
	delete(s.CategoryColors, name)

	if s.Filter == name {
		s.Filter = FilterAll
	}
	return s
}

// UpdateCategoryColor recolors a registered category.
func (s State) UpdateCategoryColor(name, color string) State {
	color = strings.TrimSpace(color)
	if !s.hasCategory(name) || color == "" {
		return s
	}
	s.CategoryColors = copyColors(s.CategoryColors)
	s.CategoryColors[name] = color
	return s
}

// Select loads an entry in the player. Unknown ids are ignored.
func (s State) Select(id string) State {
	if s.indexOf(id) >= 0 {
		s.SelectedID = id
	}
	return s
}

// SetFilter switches the playlist filter. Unknown filters mean FilterAll.
func (s State) SetFilter(filter string) State {
	switch {
	case filter == FilterAll, filter == FilterVault, s.hasCategory(filter):
		s.Filter = filter
	default:
		s.Filter = FilterAll
	}
	return s
}

// Identify switches the active identity. Blank names fall back to fallback.
func (s State) Identify(name, fallback string) State {
	if name = favorites.Normalize(name); name == "" {
		name = favorites.Normalize(fallback)
	}
	s.ActiveIdentity = name
	return s
}

// SetAuthorized records the outcome of the admin gate.
func (s State) SetAuthorized(ok bool) State {
	s.IsAuthorized = ok
	return s
}
