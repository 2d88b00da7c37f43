package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reel/internal/catalog"
	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/favorites"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/store"
	"github.com/MrSnakeDoc/reel/internal/store/memory"
)

func catalogEntry(id, ref, title, category string) domain.Entry {
	return domain.Entry{
		ID:          id,
		ExternalRef: ref,
		Title:       title,
		Category:    category,
		Status:      domain.StatusReady,
		Reviews:     []domain.Review{},
	}
}

func newEngine(version int, entries ...domain.Entry) *Engine {
	src := &catalog.Source{
		Version: version,
		Entries: entries,
		Categories: []domain.Category{
			{Name: "X", Color: "#111111"},
			{Name: "Fresh", Color: "#222222"},
			{Name: domain.CategoryOther, Color: "#64748b"},
		},
		DefaultFavorites: map[string][]string{},
	}
	return New(src, "guest", logger.Nop())
}

func ids(entries []domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func titles(entries []domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestColdStartIsCatalogVerbatim(t *testing.T) {
	e := newEngine(5, catalogEntry("c1", "abc", "A", "X"), catalogEntry("c2", "def", "D", "X"))

	res := e.Run(store.Snapshot{}, store.SourceNone)

	assert.True(t, res.ColdStart)
	assert.Equal(t, []string{"c1", "c2"}, ids(res.State.Entries))
	assert.Equal(t, 5, res.State.CatalogVersion)
	assert.Equal(t, []string{"X", "Fresh", domain.CategoryOther}, res.State.Categories)
	assert.Equal(t, "#111111", res.State.CategoryColor("X"))
	assert.Equal(t, "guest", res.State.ActiveIdentity)
	assert.False(t, res.State.IsAuthorized)
	assert.Equal(t, "c1", res.State.SelectedID)
}

func TestMergePrecedence(t *testing.T) {
	e := newEngine(5, domain.Entry{
		ID: "c1", ExternalRef: "abc", Title: "Catalog Title", Category: "Fresh",
		Thumbnail: "https://cdn/x.jpg", Status: domain.StatusReady, ViewCount: 999,
	})
	created := time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)
	persisted := domain.Entry{
		ID: "p1", ExternalRef: "abc", Title: "Old Title", Category: "X", CreatedAt: created,
		Status: domain.StatusReady, ViewCount: 7, LikeCount: 2, IsLiked: true,
		Reviews: []domain.Review{{ID: "r1", Rating: 5, Text: "keep me"}},
	}

	res := e.Run(store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{persisted}}, store.SourceCurrent)

	require.Len(t, res.State.Entries, 1)
	got := res.State.Entries[0]
	assert.Equal(t, "p1", got.ID, "id is never reassigned")
	assert.Equal(t, "Catalog Title", got.Title)
	assert.Equal(t, "Fresh", got.Category)
	assert.Equal(t, "https://cdn/x.jpg", got.Thumbnail)
	assert.EqualValues(t, 7, got.ViewCount, "counters come from persisted data")
	assert.EqualValues(t, 2, got.LikeCount)
	assert.True(t, got.IsLiked)
	assert.Equal(t, created, got.CreatedAt)
	assert.Len(t, got.Reviews, 1)
	assert.Equal(t, []string{"merge"}, res.Applied)
}

func TestNewCatalogItemsSurfaceFirst(t *testing.T) {
	e := newEngine(5,
		catalogEntry("c-new-1", "n1", "New 1", "X"),
		catalogEntry("c-old", "old", "Old", "X"),
		catalogEntry("c-new-2", "n2", "New 2", "X"),
	)
	snap := store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{
		{ID: "u1", ExternalRef: "user", Title: "Mine", Category: "X", Status: domain.StatusReady},
		{ID: "c-old", ExternalRef: "old", Title: "Old", Category: "X", Status: domain.StatusReady},
	}}

	res := e.Run(snap, store.SourceCurrent)

	assert.Equal(t, []string{"c-new-1", "c-new-2", "u1", "c-old"}, ids(res.State.Entries))
}

func TestCatalogItemWithTakenIDSurfacesUnderFreshID(t *testing.T) {
	prev := newID
	newID = func() string { return "fresh-1" }
	t.Cleanup(func() { newID = prev })

	src := &catalog.Source{
		Version:          5,
		Entries:          []domain.Entry{catalogEntry("c1", "newref11111", "New", "X")},
		DefaultFavorites: map[string][]string{"curator": {"c1"}},
	}
	e := New(src, "guest", logger.Nop())
	snap := store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{
		{ID: "c1", ExternalRef: "oldref11111", Title: "Old", Category: "X", Status: domain.StatusReady, ViewCount: 3},
	}}

	res := e.Run(snap, store.SourceCurrent)

	assert.Equal(t, []string{"fresh-1", "c1"}, ids(res.State.Entries))
	assert.Equal(t, []string{"New", "Old"}, titles(res.State.Entries))
	old, _ := res.State.Entry("c1")
	assert.EqualValues(t, 3, old.ViewCount, "the persisted entry keeps its data")
	assert.Equal(t, []string{"fresh-1"}, res.State.Favorites.IDs("curator"))

	again := e.Run(store.FromState(res.State), store.SourceCurrent).State
	assert.Equal(t, []string{"fresh-1", "c1"}, ids(again.Entries), "no second copy on the next start")
	assert.Equal(t, []string{"fresh-1"}, again.Favorites.IDs("curator"))
}

func TestStaleSnapshotIsDiscarded(t *testing.T) {
	e := newEngine(2, catalogEntry("y", "yyy", "Y", "X"))
	snap := store.Snapshot{
		CatalogVersion: 1,
		Entries: []domain.Entry{
			{ID: "x", ExternalRef: "xxx", Title: "X", Category: "X", Status: domain.StatusReady, LikeCount: 5},
		},
		Categories:     []string{"X", "Mine"},
		CategoryColors: map[string]string{"Mine": "#abcdef"},
		Favorites:      favorites.Ledger{"ana": {"x"}},
		ActiveIdentity: "ana",
		IsAuthorized:   true,
	}

	res := e.Run(snap, store.SourceCurrent)

	assert.Equal(t, []string{"y"}, ids(res.State.Entries), "no entry X survives")
	assert.Equal(t, []string{"discard-stale", "merge"}, res.Applied)
	assert.Equal(t, 2, res.State.CatalogVersion)
	assert.Contains(t, res.State.Categories, "Mine")
	assert.Equal(t, "#abcdef", res.State.CategoryColor("Mine"))
	assert.Equal(t, "ana", res.State.ActiveIdentity)
	assert.True(t, res.State.IsAuthorized)
	assert.Zero(t, res.State.Favorites.Count("ana"), "ledger is pruned to surviving ids")
}

func TestNewerSnapshotIsNotDiscarded(t *testing.T) {
	e := newEngine(2, catalogEntry("y", "yyy", "Y", "X"))
	snap := store.Snapshot{CatalogVersion: 3, Entries: []domain.Entry{
		{ID: "x", ExternalRef: "xxx", Title: "X", Category: "X", Status: domain.StatusReady},
	}}

	res := e.Run(snap, store.SourceCurrent)
	assert.Equal(t, []string{"y", "x"}, ids(res.State.Entries))
	assert.Equal(t, 2, res.State.CatalogVersion)
}

func TestDuplicateCatalogRefsFirstWins(t *testing.T) {
	e := newEngine(5,
		catalogEntry("c1", "dup", "First", "X"),
		catalogEntry("c2", "dup", "Second", "X"),
	)

	res := e.Run(store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{
		{ID: "p", ExternalRef: "dup", Title: "Mine", Status: domain.StatusReady},
	}}, store.SourceCurrent)
	assert.Equal(t, []string{"p"}, ids(res.State.Entries))
	assert.Equal(t, "First", res.State.Entries[0].Title)

	fresh := e.Run(store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{}}, store.SourceCurrent)
	assert.Equal(t, []string{"c1", "c2"}, ids(fresh.State.Entries), "duplicate refs are not deduplicated")
}

func TestEmptyRefsNeverMatch(t *testing.T) {
	e := newEngine(5, catalogEntry("c1", "", "Empty", "X"), catalogEntry("c2", "abc", "A", "X"))
	orphan := domain.Entry{ID: "p", ExternalRef: "", Title: "Orphan", Category: "Gone", Status: domain.StatusFailed}

	res := e.Run(store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{orphan}}, store.SourceCurrent)

	assert.Equal(t, []string{"c2", "p"}, ids(res.State.Entries))
	got, _ := res.State.Entry("p")
	assert.Equal(t, "Orphan", got.Title)
	assert.Equal(t, domain.StatusFailed, got.Status)
}

func TestLegacyMigration(t *testing.T) {
	e := newEngine(5, catalogEntry("c1", "abcdefghijk", "Catalog A", "X"))
	snap := store.Snapshot{
		Legacy: []store.LegacyEntry{
			{
				ID: "m-1", Prompt: "Legacy A", Category: "Tribal", URL: "abcdefghijk",
				Timestamp: 1700000000000, Status: "ready", ViewCount: 4, IsFavorite: true,
				IsLiked: true, IsDisliked: true, LikeCount: 1, DislikeCount: -3,
				Reviews: []store.LegacyReview{
					{ID: "r1", Rating: 4, Text: "good", User: "NeuralClient", Timestamp: 1700000000500},
					{ID: "r2", Rating: 0, Text: "invalid"},
				},
			},
			{ID: "m-2", Prompt: "Generating", Status: "generating", Timestamp: 1700000001000},
			{ID: "m-3", Prompt: "Broken", Status: "error", Progress: "quota", Timestamp: 1700000002000},
			{ID: "m-1", Prompt: "Duplicate id"},
		},
		Categories:   []string{"Tribal", domain.CategoryOther},
		IsAuthorized: true,
	}

	res := e.Run(snap, store.SourceLegacy)

	assert.Equal(t, []string{"legacy-shape", "merge"}, res.Applied)
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, ids(res.State.Entries))

	a, _ := res.State.Entry("m-1")
	assert.Equal(t, "Catalog A", a.Title, "catalog still wins on matched refs")
	assert.Equal(t, "X", a.Category)
	assert.EqualValues(t, 4, a.ViewCount)
	assert.True(t, a.IsLiked)
	assert.False(t, a.IsDisliked, "like and dislike never both hold")
	assert.Zero(t, a.DislikeCount)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), a.CreatedAt)
	require.Len(t, a.Reviews, 1)
	assert.Equal(t, "NeuralClient", a.Reviews[0].Author)

	gen, _ := res.State.Entry("m-2")
	assert.Equal(t, domain.StatusPending, gen.Status)
	assert.Equal(t, domain.CategoryOther, gen.Category)
	failed, _ := res.State.Entry("m-3")
	assert.Equal(t, domain.StatusFailed, failed.Status)
	assert.Equal(t, "quota", failed.Progress)

	assert.Equal(t, []string{"m-1"}, res.State.Favorites.IDs("guest"), "legacy flags land under the default identity")
	assert.True(t, res.State.IsAuthorized)
	assert.Equal(t, 5, res.State.CatalogVersion)
	assert.Contains(t, res.State.Categories, "Tribal")
}

func TestLegacyEntryWithoutIDGetsOne(t *testing.T) {
	prev := newID
	newID = func() string { return "fixed" }
	t.Cleanup(func() { newID = prev })

	e := newEngine(5, catalogEntry("c1", "abc", "A", "X"))
	res := e.Run(store.Snapshot{Legacy: []store.LegacyEntry{{Prompt: "no id", URL: "zzz"}}}, store.SourceLegacy)

	_, ok := res.State.Entry("legacy-fixed")
	assert.True(t, ok)
}

func TestDefaultFavoritesAreRemappedAndPruned(t *testing.T) {
	src := &catalog.Source{
		Version: 5,
		Entries: []domain.Entry{
			catalogEntry("c1", "r1", "One", "X"),
			catalogEntry("c2", "r2", "Two", "X"),
		},
		DefaultFavorites: map[string][]string{
			"curator": {"c1", "c2", "ghost"},
			"ana":     {"c2"},
		},
	}
	e := New(src, "guest", logger.Nop())

	snap := store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{
		{ID: "m-9", ExternalRef: "r1", Title: "legacy copy", Status: domain.StatusReady},
	}, Favorites: favorites.Ledger{"ana": {}}}

	res := e.Run(snap, store.SourceCurrent)

	assert.ElementsMatch(t, []string{"m-9", "c2"}, res.State.Favorites.IDs("curator"))
	assert.Empty(t, res.State.Favorites.IDs("ana"), "a persisted empty vault shadows defaults")
}

func TestCategoriesOfIntroducedEntriesAreRegistered(t *testing.T) {
	e := newEngine(5,
		catalogEntry("c1", "r1", "Known", "X"),
		catalogEntry("c2", "r2", "Brand new", "Fresh"),
	)
	snap := store.Snapshot{
		CatalogVersion: 5,
		Entries:        []domain.Entry{{ID: "c1", ExternalRef: "r1", Title: "Known", Category: "X", Status: domain.StatusReady}},
		Categories:     []string{domain.CategoryOther},
		CategoryColors: map[string]string{domain.CategoryOther: "#64748b"},
	}

	res := e.Run(snap, store.SourceCurrent)

	assert.Contains(t, res.State.Categories, "Fresh")
	assert.Equal(t, "#222222", res.State.CategoryColor("Fresh"))
	assert.NotContains(t, res.State.Categories, "X", "a category the user removed stays removed")
}

func TestCustomMigrationPipeline(t *testing.T) {
	e := newEngine(5, catalogEntry("c1", "abc", "A", "X")).WithMigrations([]Migration{{
		Name:    "stamp",
		Applies: func(store.Snapshot, Env) bool { return true },
		Apply: func(s store.Snapshot, _ Env) (store.Snapshot, []domain.Entry) {
			s.ActiveIdentity = "migrated"
			return s, nil
		},
	}})

	res := e.Run(store.Snapshot{CatalogVersion: 5, Entries: []domain.Entry{}}, store.SourceCurrent)
	assert.Equal(t, []string{"stamp"}, res.Applied)
	assert.Equal(t, "migrated", res.State.ActiveIdentity)
	assert.Empty(t, res.State.Entries)
	assert.Equal(t, 5, e.CatalogVersion())
}

// Empty storage, one catalog entry, then a user entry survives a restart.
func TestAddEntrySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	e := newEngine(5, catalogEntry("c-abc", "abc", "A", "X"))
	adapter := store.NewAdapter(memory.New())

	snap, src, err := adapter.Load(ctx)
	require.NoError(t, err)
	first := e.Run(snap, src)
	require.Equal(t, []string{"A"}, titles(first.State.Entries))

	next, _ := first.State.AddEntry("xyz", "B", "X")
	require.NoError(t, adapter.Save(ctx, store.FromState(next)))

	snap, src, err = adapter.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, store.SourceCurrent, src)
	second := e.Run(snap, src)

	assert.Equal(t, []string{"B", "A"}, titles(second.State.Entries), "persisted order is kept")
	assert.Equal(t, []string{"merge"}, second.Applied)
}

func TestRunIsIdempotent(t *testing.T) {
	e := newEngine(5, catalogEntry("c1", "r1", "One", "X"), catalogEntry("c2", "r2", "Two", "Fresh"))
	first := e.Run(store.Snapshot{}, store.SourceNone).State
	first = first.ToggleLike("c2")

	second := e.Run(store.FromState(first), store.SourceCurrent).State
	third := e.Run(store.FromState(second), store.SourceCurrent).State

	assert.Equal(t, ids(second.Entries), ids(third.Entries))
	assert.Equal(t, second.Entries, third.Entries)
	for i, en := range third.Entries {
		assert.Equal(t, first.Entries[i].LikeCount, en.LikeCount, fmt.Sprintf("entry %s", en.ID))
	}
}
