package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("ticket:1")
	assert.False(t, ok)

	store.Set("ticket:1", "v1")
	value, ok := store.Get("ticket:1")
	require.True(t, ok)
	assert.Equal(t, "v1", value)

	store.Delete("ticket:1")
	_, ok = store.Get("ticket:1")
	assert.False(t, ok)
}

func TestKeysFiltersByPrefix(t *testing.T) {
	store := NewStore()
	store.Set("tickets:page=1", "a")
	store.Set("tickets:page=2", "b")
	store.Set("ticket:7", "c")

	keys := store.Keys("tickets:")
	assert.ElementsMatch(t, []Key{"tickets:page=1", "tickets:page=2"}, keys)
}

func TestInvalidateKeepsValueVisible(t *testing.T) {
	store := NewStore()
	store.Set("stats", "old")

	store.Invalidate("stats")

	value, ok := store.Get("stats")
	require.True(t, ok)
	assert.Equal(t, "old", value)
	assert.True(t, store.IsStale("stats"))

	// a fresh write clears the stale mark
	store.Set("stats", "new")
	assert.False(t, store.IsStale("stats"))
}

func TestInvalidateAbsentKeyIsNoOp(t *testing.T) {
	store := NewStore()
	store.Invalidate("ticket:9")

	_, ok := store.Get("ticket:9")
	assert.False(t, ok)
	assert.False(t, store.IsStale("ticket:9"))
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	store := NewStore()
	store.Set("ticket:1", "original")
	store.Set("ticket:2", "kept")
	store.Invalidate("ticket:1")

	snap := store.Snapshot("ticket:1", "ticket:3")

	store.Set("ticket:1", "speculative")
	store.Set("ticket:3", "speculative")
	store.Set("ticket:2", "mutated outside snapshot")

	store.Restore(snap)

	value, ok := store.Get("ticket:1")
	require.True(t, ok)
	assert.Equal(t, "original", value)
	assert.True(t, store.IsStale("ticket:1"), "stale mark is part of the captured state")

	// absent at snapshot time: removed again
	_, ok = store.Get("ticket:3")
	assert.False(t, ok)

	// keys outside the snapshot are untouched by restore
	value, ok = store.Get("ticket:2")
	require.True(t, ok)
	assert.Equal(t, "mutated outside snapshot", value)
}

func TestRestoreAfterDelete(t *testing.T) {
	store := NewStore()
	store.Set("ticket:1", "original")

	snap := store.Snapshot("ticket:1")
	store.Delete("ticket:1")
	store.Restore(snap)

	value, ok := store.Get("ticket:1")
	require.True(t, ok)
	assert.Equal(t, "original", value)
}

func TestSnapshotKeys(t *testing.T) {
	store := NewStore()
	store.Set("a", 1)

	snap := store.Snapshot("a", "b")
	assert.ElementsMatch(t, []Key{"a", "b"}, snap.Keys())
}
