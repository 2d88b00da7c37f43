package library

import (
	"strings"
	"time"

	"github.com/MrSnakeDoc/reel/internal/domain"
)

const generationPrefix = "gen-"

// BeginGeneration prepends a pending placeholder for an externally produced
// video. The generator reports back through UpdateGeneration,
// CompleteGeneration or FailGeneration.
func (s State) BeginGeneration(prompt, category string) (State, string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return s, ""
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = domain.CategoryOther
	}

	e := domain.Entry{
		ID:        generationPrefix + newID(),
		CreatedAt: now(),
		Title:     prompt,
		Category:  category,
		Status:    domain.StatusPending,
		Progress:  "Queued",
		Reviews:   []domain.Review{},
	}
	s = s.prepend(e)
	s.SelectedID = e.ID
	return s, e.ID
}

// UpdateGeneration records progress text on a pending entry.
func (s State) UpdateGeneration(id, progress string) State {
	return s.updatePending(id, func(e *domain.Entry) {
		e.Progress = progress
	})
}

// CompleteGeneration moves a pending entry to ready with its final reference.
func (s State) CompleteGeneration(id, ref string) State {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return s
	}
	return s.updatePending(id, func(e *domain.Entry) {
		e.ExternalRef = ref
		e.Status = domain.StatusReady
		e.Progress = ""
	})
}

// FailGeneration moves a pending entry to failed.
func (s State) FailGeneration(id, msg string) State {
	return s.updatePending(id, func(e *domain.Entry) {
		e.Status = domain.StatusFailed
		e.Progress = msg
	})
}

// FailStalePending fails every pending entry created before cutoff and
// returns how many were touched.
func (s State) FailStalePending(cutoff time.Time, msg string) (State, int) {
	var ids []string
	for _, e := range s.Entries {
		if e.Status == domain.StatusPending && e.CreatedAt.Before(cutoff) {
			ids = append(ids, e.ID)
		}
	}
	for _, id := range ids {
		s = s.FailGeneration(id, msg)
	}
	return s, len(ids)
}

// updatePending applies fn only while the entry is pending; terminal
// statuses never move again.
func (s State) updatePending(id string, fn func(e *domain.Entry)) State {
	idx := s.indexOf(id)
	if idx < 0 || s.Entries[idx].Status.Terminal() {
		return s
	}
	return s.update(id, fn)
}
