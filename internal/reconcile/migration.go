package reconcile

import (
	"strings"
	"time"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
	"github.com/MrSnakeDoc/reel/internal/store"
)

// Env is what a migration may consult besides the snapshot itself.
type Env struct {
	Source          store.Source
	CompiledVersion int
	Catalog         []domain.Entry
	DefaultIdentity string
}

// Migration is one step of the ordered reconciliation pipeline.
type Migration struct {
	Name    string
	Applies func(snap store.Snapshot, env Env) bool
	Apply   func(snap store.Snapshot, env Env) (store.Snapshot, []domain.Entry)
}

// DefaultMigrations is the built-in pipeline. merge must stay last.
func DefaultMigrations() []Migration {
	return []Migration{
		{Name: "legacy-shape", Applies: isLegacy, Apply: applyLegacyShape},
		{Name: "discard-stale", Applies: isStale, Apply: applyDiscardStale},
		{Name: "merge", Applies: always, Apply: applyMerge},
	}
}

func always(store.Snapshot, Env) bool { return true }

func isLegacy(_ store.Snapshot, env Env) bool {
	return env.Source == store.SourceLegacy
}

func isStale(snap store.Snapshot, env Env) bool {
	return env.Source == store.SourceCurrent && snap.CatalogVersion < env.CompiledVersion
}

// applyLegacyShape converts legacy entries and moves their per-entry
// favorite flags into the ledger under the default identity.
func applyLegacyShape(snap store.Snapshot, env Env) (store.Snapshot, []domain.Entry) {
	seen := make(map[string]bool, len(snap.Legacy))
	entries := make([]domain.Entry, 0, len(snap.Legacy))
	var favored []string

	for _, l := range snap.Legacy {
		e := fromLegacy(l)
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
		if l.IsFavorite {
			favored = append(favored, e.ID)
		}
	}

	snap.Entries = entries
	snap.Legacy = nil
	if len(favored) > 0 {
		ledger := snap.Favorites.Clone()
		ledger[env.DefaultIdentity] = append(ledger[env.DefaultIdentity], favored...)
		snap.Favorites = ledger
	}
	return snap, nil
}

func fromLegacy(l store.LegacyEntry) domain.Entry {
	id := strings.TrimSpace(l.ID)
	if id == "" {
		id = "legacy-" + newID()
	}

	status := domain.StatusReady
	switch l.Status {
	case store.LegacyStatusGenerating:
		status = domain.StatusPending
	case store.LegacyStatusError:
		status = domain.StatusFailed
	}

	e := domain.Entry{
		ID:           id,
		ExternalRef:  strings.TrimSpace(l.URL),
		CreatedAt:    fromMillis(l.Timestamp),
		Title:        l.Prompt,
		Category:     l.Category,
		Thumbnail:    l.Thumbnail,
		Status:       status,
		Progress:     l.Progress,
		ViewCount:    floor(l.ViewCount),
		LikeCount:    floor(l.LikeCount),
		DislikeCount: floor(l.DislikeCount),
		IsLiked:      l.IsLiked,
		IsDisliked:   l.IsDisliked && !l.IsLiked,
		Reviews:      make([]domain.Review, 0, len(l.Reviews)),
	}
	if e.Category == "" {
		e.Category = domain.CategoryOther
	}

	for _, r := range l.Reviews {
		if !domain.ValidRating(r.Rating) || strings.TrimSpace(r.Text) == "" {
			continue
		}
		e.Reviews = append(e.Reviews, domain.Review{
			ID:          r.ID,
			Rating:      r.Rating,
			Text:        r.Text,
			Author:      r.User,
			SubmittedAt: fromMillis(r.Timestamp),
			Approved:    r.IsApproved,
		})
	}
	return e
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}

func floor(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// applyDiscardStale drops persisted entries when the catalog moved on. Every
// other persisted field survives; the ledger is pruned later.
func applyDiscardStale(snap store.Snapshot, env Env) (store.Snapshot, []domain.Entry) {
	snap.Entries = cloneEntries(env.Catalog)
	return snap, snap.Entries
}

// applyMerge joins persisted entries with the catalog on ExternalRef.
// Matched entries take descriptive fields from the catalog; catalog entries
// with an unknown ref are prepended in catalog order, under a fresh id when
// their catalog id already belongs to a working entry.
func applyMerge(snap store.Snapshot, env Env) (store.Snapshot, []domain.Entry) {
	index := make(map[string]domain.Entry, len(env.Catalog))
	for _, c := range env.Catalog {
		if c.ExternalRef == "" {
			continue
		}
		if _, dup := index[c.ExternalRef]; !dup {
			index[c.ExternalRef] = c
		}
	}

	persistedRefs := make(map[string]bool, len(snap.Entries))
	ids := make(map[string]bool, len(snap.Entries)+len(env.Catalog))
	for _, p := range snap.Entries {
		if p.ExternalRef != "" {
			persistedRefs[p.ExternalRef] = true
		}
		ids[p.ID] = true
	}

	var fresh []domain.Entry
	for _, c := range env.Catalog {
		if c.ExternalRef == "" || persistedRefs[c.ExternalRef] {
			continue
		}
		e := c.Clone()
		if ids[e.ID] {
			// the id is taken by an entry holding another ref
			e.ID = newID()
		}
		ids[e.ID] = true
		fresh = append(fresh, e)
	}

	out := make([]domain.Entry, 0, len(fresh)+len(snap.Entries))
	out = append(out, fresh...)
	for _, p := range snap.Entries {
		if c, ok := index[p.ExternalRef]; ok && p.ExternalRef != "" {
			out = append(out, mergeEntry(p, c))
			continue
		}
		out = append(out, p.Clone())
	}

	snap.Entries = out
	return snap, fresh
}

// mergeEntry is the field-by-field provenance rule for a matched pair.
func mergeEntry(persisted, compiled domain.Entry) domain.Entry {
	out := persisted.Clone()

	// catalog wins
	out.ExternalRef = compiled.ExternalRef
	out.Title = compiled.Title
	out.Category = compiled.Category
	out.Thumbnail = compiled.Thumbnail

	// ID, CreatedAt, Status, Progress, counters, flags and reviews stay
	// as persisted.
	return out
}

func cloneEntries(in []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// remapDefaults points default favorites at the working entry sharing their
// catalog ref, for catalog ids that are not themselves in the working set.
func remapDefaults(ledger favorites.Ledger, catalog, working []domain.Entry) favorites.Ledger {
	present := make(map[string]bool, len(working))
	byRef := refIndex(working)
	for _, e := range working {
		present[e.ID] = true
	}

	mapping := make(map[string]string)
	for _, c := range catalog {
		if present[c.ID] || c.ExternalRef == "" {
			continue
		}
		if id, ok := byRef[c.ExternalRef]; ok {
			mapping[c.ID] = id
		}
	}
	if len(mapping) == 0 {
		return ledger
	}
	return ledger.Remap(mapping)
}

// displacedIDs maps catalog ids held by a working entry with another ref to
// the working entry that carries the catalog ref.
func displacedIDs(catalog, working []domain.Entry) map[string]string {
	byID := make(map[string]string, len(working))
	for _, e := range working {
		byID[e.ID] = e.ExternalRef
	}
	byRef := refIndex(working)

	mapping := make(map[string]string)
	seen := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		ref, taken := byID[c.ID]
		if !taken || c.ExternalRef == "" || ref == c.ExternalRef {
			continue
		}
		if id, ok := byRef[c.ExternalRef]; ok && id != c.ID {
			mapping[c.ID] = id
		}
	}
	return mapping
}

// refIndex maps each ref to the first working entry holding it.
func refIndex(working []domain.Entry) map[string]string {
	byRef := make(map[string]string, len(working))
	for _, e := range working {
		if e.ExternalRef == "" {
			continue
		}
		if _, ok := byRef[e.ExternalRef]; !ok {
			byRef[e.ExternalRef] = e.ID
		}
	}
	return byRef
}
