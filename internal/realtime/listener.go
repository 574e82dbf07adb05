package realtime

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/roster"
	"volunteer_hub_backend/pkg/utils"
)

// SignupChannel is the Postgres NOTIFY channel fired by the row trigger on
// volunteer_signups. The payload is the full post-update row as JSON.
const SignupChannel = "volunteer_signup_changes"

const (
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listener bridges Postgres change notifications into the roster caches and
// the websocket hub. One listener serves every event; patches are routed by
// the event id inside the payload.
type Listener struct {
	pql    *pq.Listener
	caches *roster.Manager
	hub    *Hub
	done   chan struct{}
}

// NewListener opens a dedicated notification connection. The connection is
// separate from the pool so a busy pool can never starve change delivery.
func NewListener(connStr string, caches *roster.Manager, hub *Hub) *Listener {
	l := &Listener{
		caches: caches,
		hub:    hub,
		done:   make(chan struct{}),
	}
	l.pql = pq.NewListener(connStr, minReconnectInterval, maxReconnectInterval, l.onConnEvent)
	return l
}

// Start subscribes to the signup channel and launches the dispatch loop.
func (l *Listener) Start() error {
	if err := l.pql.Listen(SignupChannel); err != nil {
		return err
	}
	go l.loop()
	utils.LogInfo("signup change listener started", map[string]interface{}{"channel": SignupChannel})
	return nil
}

// Stop tears the listener down. Safe to call once.
func (l *Listener) Stop() {
	close(l.done)
	utils.LogError(l.pql.Close(), "Failed to close signup change listener")
}

func (l *Listener) loop() {
	for {
		select {
		case n, ok := <-l.pql.Notify:
			if !ok {
				return
			}
			if n == nil {
				// nil is delivered after a reconnect; onConnEvent already
				// marked the caches stale.
				continue
			}
			l.dispatch(n.Extra)
		case <-time.After(pingInterval):
			utils.LogError(l.pql.Ping(), "Signup change listener ping failed")
		case <-l.done:
			return
		}
	}
}

// dispatch decodes one notification payload and folds it into the cache of
// its event. Events nobody currently watches have no cache and the update is
// dropped; the next roster read seeds from the database anyway. An echo of a
// patch already applied locally changes nothing and is not re-broadcast.
func (l *Listener) dispatch(payload string) {
	var s models.VolunteerSignup
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		utils.LogError(err, "Failed to decode signup change payload")
		return
	}
	if s.ID == "" || s.EventID == "" {
		return
	}

	cache, ok := l.caches.Peek(s.EventID)
	if !ok {
		return
	}
	if !cache.ApplyRemotePatch(&s) {
		return
	}

	status := roster.DeriveStatus(&s)
	l.hub.Broadcast(&RosterEvent{
		Type:    SignupUpdatedEvent,
		EventID: s.EventID,
		Signup:  &s,
		Status:  &status,
	})
}

// onConnEvent handles connection state changes from pq. After any loss of
// the notification stream the caches may have missed updates, so every one
// of them is marked stale and subscribers are told to refetch.
func (l *Listener) onConnEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		utils.LogInfo("signup change listener connected")
	case pq.ListenerEventReconnected:
		utils.LogInfo("signup change listener reconnected, invalidating roster caches")
		l.invalidateAll()
	case pq.ListenerEventDisconnected:
		utils.LogError(err, "Signup change listener disconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		utils.LogError(err, "Signup change listener reconnect attempt failed")
	}
}

func (l *Listener) invalidateAll() {
	stale := l.caches.MarkAllStale()
	for _, eventID := range stale {
		l.hub.Broadcast(&RosterEvent{Type: RosterStaleEvent, EventID: eventID})
	}
}
