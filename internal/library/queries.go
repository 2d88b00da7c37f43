package library

import (
	"github.com/MrSnakeDoc/reel/internal/domain"
)

// Entry returns a copy of the entry with the given id.
func (s State) Entry(id string) (domain.Entry, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Entry{}, false
	}
	return s.Entries[idx].Clone(), true
}

// Selected returns the entry loaded in the player, if any.
func (s State) Selected() (domain.Entry, bool) {
	return s.Entry(s.SelectedID)
}

// Visible applies the active filter. FilterVault shows the favorites of the
// active identity in working-set order.
func (s State) Visible() []domain.Entry {
	switch s.Filter {
	case "", FilterAll:
		return s.filter(func(domain.Entry) bool { return true })
	case FilterVault:
		return s.Vault(s.ActiveIdentity)
	default:
		return s.filter(func(e domain.Entry) bool { return e.Category == s.Filter })
	}
}

// Vault returns the favorites of identity that still exist in the working set.
func (s State) Vault(identity string) []domain.Entry {
	return s.filter(func(e domain.Entry) bool { return s.Favorites.Contains(identity, e.ID) })
}

func (s State) filter(keep func(domain.Entry) bool) []domain.Entry {
	out := make([]domain.Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// PendingReview pairs an unapproved review with its entry.
type PendingReview struct {
	EntryID    string        `json:"entryId"`
	EntryTitle string        `json:"entryTitle"`
	Review     domain.Review `json:"review"`
}

// PendingReviews lists unapproved reviews across the working set.
func (s State) PendingReviews() []PendingReview {
	var out []PendingReview
	for _, e := range s.Entries {
		for _, r := range e.Reviews {
			if !r.Approved {
				out = append(out, PendingReview{EntryID: e.ID, EntryTitle: e.Title, Review: r})
			}
		}
	}
	return out
}

// PendingReviewCount is len(PendingReviews()) without the allocation.
func (s State) PendingReviewCount() int {
	n := 0
	for _, e := range s.Entries {
		for _, r := range e.Reviews {
			if !r.Approved {
				n++
			}
		}
	}
	return n
}

// Reviews returns the reviews of an entry, most recent first.
func (s State) Reviews(id string) []domain.Review {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	src := s.Entries[idx].Reviews
	out := make([]domain.Review, len(src))
	for i, r := range src {
		out[len(src)-1-i] = r
	}
	return out
}

// CategoryColor resolves the color of a category, dangling names included.
func (s State) CategoryColor(name string) string {
	return domain.CategoryColor(s.CategoryColors, name)
}
