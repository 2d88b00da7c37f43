package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePersistedWinsPerIdentity(t *testing.T) {
	defaults := Ledger{
		"ana":     {"a", "b"},
		"curator": {"c"},
	}
	persisted := Ledger{
		"ana": {"z"},
		"bob": {"b", "b"},
	}

	got := Merge(defaults, persisted)

	assert.Equal(t, []string{"z"}, got["ana"], "persisted set replaces the default set")
	assert.Equal(t, []string{"c"}, got["curator"], "default-only identity keeps defaults")
	assert.Equal(t, []string{"b"}, got["bob"], "duplicates are collapsed")
}

func TestMergeEmptyPersistedSetShadowsDefaults(t *testing.T) {
	got := Merge(Ledger{"ana": {"a"}}, Ledger{"ana": {}})
	assert.Empty(t, got["ana"])
	_, present := got["ana"]
	assert.True(t, present)
}

func TestToggle(t *testing.T) {
	l := Ledger{"ana": {"a"}}

	added := l.Toggle("ana", "b")
	require.True(t, added.Contains("ana", "b"))
	assert.False(t, l.Contains("ana", "b"), "receiver must not be mutated")

	removed := added.Toggle("ana", "a")
	assert.False(t, removed.Contains("ana", "a"))
	assert.True(t, added.Contains("ana", "a"), "receiver must not be mutated")

	fresh := Ledger{}.Toggle(" bob ", "x")
	assert.Equal(t, []string{"x"}, fresh["bob"], "identity names are trimmed")
}

func TestToggleTwiceRestores(t *testing.T) {
	l := Ledger{"ana": {"a", "b"}}
	back := l.Toggle("ana", "c").Toggle("ana", "c")
	assert.ElementsMatch(t, l["ana"], back["ana"])
}

func TestToggleIgnoresBlankInput(t *testing.T) {
	l := Ledger{"ana": {"a"}}
	assert.Equal(t, l, l.Toggle("", "a"))
	assert.Equal(t, l, l.Toggle("ana", ""))
}

func TestPurgeRemovesFromEveryIdentity(t *testing.T) {
	l := Ledger{
		"ana": {"a", "x"},
		"bob": {"x"},
		"cid": {"c"},
	}

	got := l.Purge("x")

	for identity := range got {
		assert.False(t, got.Contains(identity, "x"), "identity %s still holds purged id", identity)
	}
	assert.Equal(t, []string{"c"}, got["cid"])
	assert.True(t, l.Contains("bob", "x"), "receiver must not be mutated")
}

func TestRemapAndPrune(t *testing.T) {
	l := Ledger{"ana": {"old", "keep", "gone"}}

	remapped := l.Remap(map[string]string{"old": "new", "keep": "new"})
	assert.Equal(t, []string{"new", "gone"}, remapped["ana"])

	valid := map[string]bool{"new": true}
	pruned := remapped.Prune(func(id string) bool { return valid[id] })
	assert.Equal(t, []string{"new"}, pruned["ana"])
}

func TestIDsReturnsCopy(t *testing.T) {
	l := Ledger{"ana": {"a"}}
	ids := l.IDs("ana")
	ids[0] = "mutated"
	assert.Equal(t, "a", l["ana"][0])
	assert.Equal(t, 1, l.Count("ana"))
	assert.Equal(t, 0, l.Count("nobody"))
}
