package realtime

import (
	"sync"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/roster"
)

// Event types pushed to roster subscribers.
const (
	SignupUpdatedEvent = "signup.updated"
	RosterStaleEvent   = "roster.stale"
)

// RosterEvent is the JSON envelope pushed over the websocket. Signup carries
// the full post-update row plus its derived status so subscribers never
// re-derive badge state client-side.
type RosterEvent struct {
	Type    string                  `json:"type"`
	EventID string                  `json:"event_id"`
	Signup  *models.VolunteerSignup `json:"signup,omitempty"`
	Status  *roster.StatusInfo      `json:"status,omitempty"`
}

// Hub fans roster events out to the websocket subscribers of each event.
// Subscriptions are keyed only on the stable event id; the data they carry
// comes through the channel on every send, so nothing here closes over
// roster state that could go stale.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // event id -> subscribers
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds a subscriber for its event.
func (h *Hub) Register(cl *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[cl.EventID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.clients[cl.EventID] = subs
	}
	subs[cl] = struct{}{}
}

// Unregister removes a subscriber and closes its send channel. Safe to call
// more than once for the same client.
func (h *Hub) Unregister(cl *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[cl.EventID]
	if !ok {
		return
	}
	if _, ok := subs[cl]; ok {
		delete(subs, cl)
		close(cl.send)
		if len(subs) == 0 {
			delete(h.clients, cl.EventID)
		}
	}
}

// Broadcast delivers an event to every subscriber of its event id. A slow
// subscriber whose buffer is full just misses the message; it will catch up
// on its next full roster read.
func (h *Hub) Broadcast(ev *RosterEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients[ev.EventID] {
		select {
		case cl.send <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of subscribers for an event.
func (h *Hub) SubscriberCount(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[eventID])
}
