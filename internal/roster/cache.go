package roster

import (
	"sync"
	"time"

	"volunteer_hub_backend/internal/models"
)

// Cache holds the authoritative-for-display signup list for one event. It is
// seeded once from a full fetch and then patched in place, never replaced
// wholesale, by two sources funnelling through the same merge rules: local
// optimistic patches after successful writes, and authoritative rows from
// the push channel.
type Cache struct {
	eventID string

	mu    sync.RWMutex
	order []string // signup ids in seed order
	rows  map[string]*models.VolunteerSignup
	stale bool
}

// NewCache returns an empty, stale cache for one event. A stale cache is
// reseeded from the store on its next read.
func NewCache(eventID string) *Cache {
	return &Cache{
		eventID: eventID,
		rows:    make(map[string]*models.VolunteerSignup),
		stale:   true,
	}
}

// EventID returns the id of the event this cache serves.
func (c *Cache) EventID() string { return c.eventID }

// Seed replaces the entire cache contents with rows from a full fetch and
// clears the stale flag.
func (c *Cache) Seed(rows []models.VolunteerSignup) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = make([]string, 0, len(rows))
	c.rows = make(map[string]*models.VolunteerSignup, len(rows))
	for i := range rows {
		row := rows[i]
		c.order = append(c.order, row.ID)
		c.rows[row.ID] = &row
	}
	c.stale = false
}

// ApplyRemotePatch merges an authoritative post-update row delivered by the
// push channel. A row whose id is not cached is ignored: a just-created
// signup arrives via the reload path, not here, which prevents phantom rows
// with stale role/name fields. Only the three check-in fields are compared
// and copied; when none differ the patch is a no-op and false is returned,
// suppressing the redundant broadcast the channel's echo of a local write
// would otherwise cause.
func (c *Cache) ApplyRemotePatch(updated *models.VolunteerSignup) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.rows[updated.ID]
	if !ok {
		return false
	}
	fields := updated.Checkin()
	if checkinEqual(row.Checkin(), fields) {
		return false
	}
	row.CheckedInAt = fields.CheckedInAt
	row.CheckedOutAt = fields.CheckedOutAt
	row.CheckInNotes = fields.CheckInNotes
	return true
}

// ApplyLocalPatch applies an optimistic same-tick patch after a successful
// write. Last-writer-wins on the three fields; whichever of the local patch
// and the channel echo lands last determines the displayed values.
func (c *Cache) ApplyLocalPatch(id string, fields models.CheckinFields) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.rows[id]
	if !ok {
		return false
	}
	row.CheckedInAt = fields.CheckedInAt
	row.CheckedOutAt = fields.CheckedOutAt
	row.CheckInNotes = fields.CheckInNotes
	return true
}

// Snapshot returns copies of all cached rows in seed order.
func (c *Cache) Snapshot() []models.VolunteerSignup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.VolunteerSignup, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.rows[id])
	}
	return out
}

// Get returns a copy of one cached row.
func (c *Cache) Get(id string) (models.VolunteerSignup, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.rows[id]
	if !ok {
		return models.VolunteerSignup{}, false
	}
	return *row, true
}

// Len returns the number of cached rows.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// MarkStale flags the cache for reseed on next read. Transport failures on
// the push channel never invalidate cached rows directly; only a reconnect,
// during which notifications may have been dropped, marks the cache stale.
func (c *Cache) MarkStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// Stale reports whether the cache needs a reseed before serving reads.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

func checkinEqual(a, b models.CheckinFields) bool {
	return timePtrEqual(a.CheckedInAt, b.CheckedInAt) &&
		timePtrEqual(a.CheckedOutAt, b.CheckedOutAt) &&
		strPtrEqual(a.CheckInNotes, b.CheckInNotes)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Manager owns one Cache per event. Caches are created lazily on first
// access and dropped when an event closes.
type Manager struct {
	mu     sync.RWMutex
	caches map[string]*Cache
}

// NewManager returns an empty cache manager.
func NewManager() *Manager {
	return &Manager{caches: make(map[string]*Cache)}
}

// ForEvent returns the cache for an event, creating a stale one if needed.
func (m *Manager) ForEvent(eventID string) *Cache {
	m.mu.RLock()
	c, ok := m.caches[eventID]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.caches[eventID]; ok {
		return c
	}
	c = NewCache(eventID)
	m.caches[eventID] = c
	return c
}

// Peek returns the cache for an event only if one already exists. The push
// listener uses this so that updates for events nobody is watching do not
// materialize caches.
func (m *Manager) Peek(eventID string) (*Cache, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.caches[eventID]
	return c, ok
}

// Drop discards an event's cache.
func (m *Manager) Drop(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.caches, eventID)
}

// MarkAllStale flags every cache for reseed. Called after the push channel
// reconnects, when notifications may have been lost. Returns the ids of the
// affected events so callers can tell their subscribers to refetch.
func (m *Manager) MarkAllStale() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.caches))
	for id, c := range m.caches {
		c.MarkStale()
		ids = append(ids, id)
	}
	return ids
}
