package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reel/internal/domain"
)

func TestGenerationLifecycle(t *testing.T) {
	seams(t)
	s := fixture()

	s, id := s.BeginGeneration("a calm lake at dawn", "")
	require.Equal(t, "gen-id-1", id)

	e, _ := s.Entry(id)
	assert.Equal(t, domain.StatusPending, e.Status)
	assert.Equal(t, domain.CategoryOther, e.Category)
	assert.Empty(t, e.ExternalRef)
	assert.Equal(t, id, s.Entries[0].ID, "placeholder is prepended")

	s = s.UpdateGeneration(id, "50%")
	e, _ = s.Entry(id)
	assert.Equal(t, "50%", e.Progress)

	assert.Equal(t, s, s.CompleteGeneration(id, " "), "blank reference is ignored")

	s = s.CompleteGeneration(id, "zzzzzzzzzzz")
	e, _ = s.Entry(id)
	assert.Equal(t, domain.StatusReady, e.Status)
	assert.Equal(t, "zzzzzzzzzzz", e.ExternalRef)
	assert.Empty(t, e.Progress)

	// ready is terminal
	assert.Equal(t, s, s.FailGeneration(id, "late"))
	assert.Equal(t, s, s.UpdateGeneration(id, "again"))
}

func TestFailGenerationIsTerminal(t *testing.T) {
	seams(t)
	s, id := fixture().BeginGeneration("storm", "Dance")
	s = s.FailGeneration(id, "quota exceeded")

	e, _ := s.Entry(id)
	assert.Equal(t, domain.StatusFailed, e.Status)
	assert.Equal(t, "quota exceeded", e.Progress)
	assert.Equal(t, s, s.CompleteGeneration(id, "zzzzzzzzzzz"))
}

func TestGenerationOnlyTouchesPending(t *testing.T) {
	s := fixture()
	assert.Equal(t, s, s.CompleteGeneration("a", "zzzzzzzzzzz"))
	assert.Equal(t, s, s.FailGeneration("a", "nope"))

	empty, id := s.BeginGeneration("  ", "")
	assert.Empty(t, id)
	assert.Equal(t, s, empty)
}

func TestFailStalePending(t *testing.T) {
	seams(t)
	s, old := fixture().BeginGeneration("old", "")
	now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	s, fresh := s.BeginGeneration("fresh", "")

	s, n := s.FailStalePending(fixedNow.Add(time.Hour), "interrupted")
	assert.Equal(t, 1, n)

	e, _ := s.Entry(old)
	assert.Equal(t, domain.StatusFailed, e.Status)
	assert.Equal(t, "interrupted", e.Progress)
	e, _ = s.Entry(fresh)
	assert.Equal(t, domain.StatusPending, e.Status)

	_, n = s.FailStalePending(fixedNow.Add(time.Hour), "interrupted")
	assert.Zero(t, n)
}
