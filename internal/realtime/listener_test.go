package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/roster"
)

func newDispatchFixture(t *testing.T, seed ...models.VolunteerSignup) (*Listener, *roster.Manager, *Client) {
	t.Helper()

	caches := roster.NewManager()
	hub := NewHub()
	l := &Listener{caches: caches, hub: hub, done: make(chan struct{})}

	cl := &Client{EventID: "ev-1", send: make(chan *RosterEvent, 8)}
	hub.Register(cl)

	cache := caches.ForEvent("ev-1")
	cache.Seed(seed)
	return l, caches, cl
}

func payloadFor(t *testing.T, s models.VolunteerSignup) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestDispatchAppliesPatchAndBroadcasts(t *testing.T) {
	base := models.VolunteerSignup{ID: "s-1", EventID: "ev-1", RoleID: "r-1", Name: "Dana"}
	l, caches, cl := newDispatchFixture(t, base)

	now := time.Now().UTC().Truncate(time.Second)
	updated := base
	updated.CheckedInAt = &now
	l.dispatch(payloadFor(t, updated))

	cache, ok := caches.Peek("ev-1")
	require.True(t, ok)
	got, ok := cache.Get("s-1")
	require.True(t, ok)
	require.NotNil(t, got.CheckedInAt)
	assert.True(t, got.CheckedInAt.Equal(now))

	select {
	case ev := <-cl.send:
		assert.Equal(t, SignupUpdatedEvent, ev.Type)
		assert.Equal(t, "ev-1", ev.EventID)
		require.NotNil(t, ev.Signup)
		assert.Equal(t, "s-1", ev.Signup.ID)
		require.NotNil(t, ev.Status)
		assert.Equal(t, roster.StatusCheckedIn, ev.Status.Status)
	default:
		t.Fatal("expected a broadcast for the applied patch")
	}
}

func TestDispatchIgnoresEchoOfCurrentState(t *testing.T) {
	base := models.VolunteerSignup{ID: "s-1", EventID: "ev-1", RoleID: "r-1", Name: "Dana"}
	l, _, cl := newDispatchFixture(t, base)

	l.dispatch(payloadFor(t, base))

	select {
	case <-cl.send:
		t.Fatal("echo of the cached state must not be re-broadcast")
	default:
	}
}

func TestDispatchDropsUpdatesForUnwatchedEvents(t *testing.T) {
	l, caches, cl := newDispatchFixture(t)

	other := models.VolunteerSignup{ID: "s-9", EventID: "ev-other", RoleID: "r-1", Name: "Sam"}
	l.dispatch(payloadFor(t, other))

	_, ok := caches.Peek("ev-other")
	assert.False(t, ok, "updates must not materialize caches for unwatched events")
	select {
	case <-cl.send:
		t.Fatal("no broadcast expected for an unwatched event")
	default:
	}
}

func TestDispatchIgnoresMalformedPayloads(t *testing.T) {
	base := models.VolunteerSignup{ID: "s-1", EventID: "ev-1", RoleID: "r-1", Name: "Dana"}
	l, caches, cl := newDispatchFixture(t, base)

	l.dispatch("{not json")
	l.dispatch(`{"name":"no ids"}`)

	cache, _ := caches.Peek("ev-1")
	assert.Equal(t, 1, cache.Len())
	select {
	case <-cl.send:
		t.Fatal("malformed payloads must not produce broadcasts")
	default:
	}
}

func TestInvalidateAllMarksCachesStaleAndNotifies(t *testing.T) {
	base := models.VolunteerSignup{ID: "s-1", EventID: "ev-1", RoleID: "r-1", Name: "Dana"}
	l, caches, cl := newDispatchFixture(t, base)

	l.invalidateAll()

	cache, _ := caches.Peek("ev-1")
	assert.True(t, cache.Stale())

	select {
	case ev := <-cl.send:
		assert.Equal(t, RosterStaleEvent, ev.Type)
		assert.Equal(t, "ev-1", ev.EventID)
		assert.Nil(t, ev.Signup)
	default:
		t.Fatal("subscribers must be told to refetch after a reconnect")
	}
}

func TestHubUnregisterClosesSendAndPrunesEvent(t *testing.T) {
	hub := NewHub()
	cl := &Client{EventID: "ev-1", send: make(chan *RosterEvent, 1)}
	hub.Register(cl)
	require.Equal(t, 1, hub.SubscriberCount("ev-1"))

	hub.Unregister(cl)
	hub.Unregister(cl) // second call is a no-op

	assert.Equal(t, 0, hub.SubscriberCount("ev-1"))
	_, open := <-cl.send
	assert.False(t, open)
}

func TestBroadcastSkipsSlowSubscribers(t *testing.T) {
	hub := NewHub()
	slow := &Client{EventID: "ev-1", send: make(chan *RosterEvent)}
	fast := &Client{EventID: "ev-1", send: make(chan *RosterEvent, 1)}
	hub.Register(slow)
	hub.Register(fast)

	hub.Broadcast(&RosterEvent{Type: RosterStaleEvent, EventID: "ev-1"})

	select {
	case ev := <-fast.send:
		assert.Equal(t, RosterStaleEvent, ev.Type)
	default:
		t.Fatal("fast subscriber should have received the event")
	}
}
