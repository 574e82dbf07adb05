package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"volunteer_hub_backend/pkg/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket subscriber to an event's roster.
type Client struct {
	EventID string

	conn *connWrapper
	send chan *RosterEvent // buffered to avoid dead-locks on slow clients
}

// NewClient wraps an upgraded websocket connection as a subscriber.
func NewClient(conn *websocket.Conn, eventID string) *Client {
	return &Client{
		EventID: eventID,
		conn:    newConnWrapper(conn),
		send:    make(chan *RosterEvent, 64),
	}
}

// ReadPump consumes (and discards) inbound frames until the peer closes.
// Subscribers are read-only; the pump only exists to notice the close and
// tear the client down, so no subscription outlives its roster view.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.conn.SetReadLimit(512)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.LogDebug("roster subscriber read error", map[string]interface{}{
					"event_id": c.EventID, "error": err.Error(),
				})
			}
			return
		}
	}
}

// WritePump forwards broadcast events to the peer and keeps the connection
// alive with pings. Exits when the send channel closes (unregister) or a
// write fails; a failed write only drops this client, never the broadcast.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, time.Now().Add(writeWait))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				utils.LogDebug("roster subscriber write error", map[string]interface{}{
					"event_id": c.EventID, "error": err.Error(),
				})
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(writeWait); err != nil {
				return
			}
		}
	}
}

// connWrapper serializes writes; gorilla/websocket allows only one
// concurrent writer per connection.
type connWrapper struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func newConnWrapper(c *websocket.Conn) *connWrapper {
	return &connWrapper{conn: c}
}

func (w *connWrapper) WriteJSON(v any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) WriteControl(messageType int, deadline time.Time) error {
	return w.conn.WriteControl(messageType, nil, deadline)
}

func (w *connWrapper) Ping(timeout time.Duration) error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout))
}

func (w *connWrapper) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}
