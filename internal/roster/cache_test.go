package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer_hub_backend/internal/models"
)

func seededCache(t *testing.T) *Cache {
	t.Helper()
	c := NewCache("ev-1")
	c.Seed([]models.VolunteerSignup{
		{ID: "s1", EventID: "ev-1", RoleID: "r1", Name: "Alice Ng"},
		{ID: "s2", EventID: "ev-1", RoleID: "r1", Name: "Bob Tran"},
	})
	return c
}

func TestCache_SeedClearsStale(t *testing.T) {
	c := NewCache("ev-1")
	assert.True(t, c.Stale())
	c.Seed(nil)
	assert.False(t, c.Stale())
	assert.Equal(t, 0, c.Len())
}

func TestCache_ApplyRemotePatch_UnknownIDIgnored(t *testing.T) {
	c := seededCache(t)
	before := c.Snapshot()

	changed := c.ApplyRemotePatch(&models.VolunteerSignup{
		ID:          "ghost",
		CheckedInAt: timePtr(time.Now()),
	})

	assert.False(t, changed)
	assert.Equal(t, before, c.Snapshot())
}

func TestCache_ApplyRemotePatch_EchoIsNoOp(t *testing.T) {
	c := seededCache(t)
	now := time.Now()
	require.True(t, c.ApplyLocalPatch("s1", models.CheckinFields{CheckedInAt: &now}))

	// The push channel echoes the same three fields back.
	echo := &models.VolunteerSignup{ID: "s1", CheckedInAt: &now}
	assert.False(t, c.ApplyRemotePatch(echo))
}

func TestCache_ApplyRemotePatch_OnlyCheckinFieldsMerged(t *testing.T) {
	c := seededCache(t)
	now := time.Now()

	changed := c.ApplyRemotePatch(&models.VolunteerSignup{
		ID:          "s1",
		Name:        "Renamed Elsewhere", // must not leak into the cache
		CheckedInAt: &now,
	})

	require.True(t, changed)
	row, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "Alice Ng", row.Name)
	require.NotNil(t, row.CheckedInAt)
	assert.True(t, row.CheckedInAt.Equal(now))
}

func TestCache_ApplyRemotePatch_DoesNotTouchOtherRows(t *testing.T) {
	c := seededCache(t)
	now := time.Now()
	c.ApplyRemotePatch(&models.VolunteerSignup{ID: "s1", CheckedInAt: &now})

	other, ok := c.Get("s2")
	require.True(t, ok)
	assert.Nil(t, other.CheckedInAt)
	assert.Nil(t, other.CheckedOutAt)
	assert.Nil(t, other.CheckInNotes)
}

func TestCache_ApplyLocalPatch_LastWriterWins(t *testing.T) {
	c := seededCache(t)
	first := time.Now().Add(-time.Minute)
	second := time.Now()

	c.ApplyLocalPatch("s1", models.CheckinFields{CheckedInAt: &first})
	c.ApplyRemotePatch(&models.VolunteerSignup{ID: "s1", CheckedInAt: &second})

	row, _ := c.Get("s1")
	require.NotNil(t, row.CheckedInAt)
	assert.True(t, row.CheckedInAt.Equal(second))
}

func TestCache_SnapshotPreservesSeedOrder(t *testing.T) {
	c := seededCache(t)
	rows := c.Snapshot()
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0].ID)
	assert.Equal(t, "s2", rows[1].ID)
}

func TestManager_ForEventCreatesOnce(t *testing.T) {
	m := NewManager()
	a := m.ForEvent("ev-1")
	b := m.ForEvent("ev-1")
	assert.Same(t, a, b)
}

func TestManager_PeekDoesNotMaterialize(t *testing.T) {
	m := NewManager()
	_, ok := m.Peek("ev-1")
	assert.False(t, ok)

	m.ForEvent("ev-1")
	_, ok = m.Peek("ev-1")
	assert.True(t, ok)
}

func TestManager_MarkAllStale(t *testing.T) {
	m := NewManager()
	c := m.ForEvent("ev-1")
	c.Seed(nil)
	require.False(t, c.Stale())

	stale := m.MarkAllStale()
	assert.True(t, c.Stale())
	assert.Equal(t, []string{"ev-1"}, stale)
}

func TestManager_Drop(t *testing.T) {
	m := NewManager()
	m.ForEvent("ev-1")
	m.Drop("ev-1")
	_, ok := m.Peek("ev-1")
	assert.False(t, ok)
}
