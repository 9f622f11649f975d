// Package events provides the WebSocket change feed for user records.
// Connected UIs get a broadcast whenever a write lands, so they can
// refetch without polling. The REST API never depends on this feed.
package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FrancescoXX/userstack/internal/logging"
	"github.com/FrancescoXX/userstack/internal/models"
)

// Event types carried in envelopes.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Envelope wraps all change feed messages.
type Envelope struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// client represents one WebSocket connection.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub maintains active connections and broadcasts change events.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[string]*client
	mu         sync.RWMutex
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	quit       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a Hub and starts its broadcast loop. An empty origin
// list allows every origin, matching the permissive CORS policy of the
// REST surface.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[string]*client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		quit:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	go h.run()
	return h
}

// Stop terminates the broadcast loop.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// ClientCount returns the number of attached connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// run manages connections and fan-out.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			total := len(h.clients)
			h.mu.Unlock()
			logging.Debug("feed client connected", map[string]interface{}{"client": c.id, "total": total})

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Send buffer full, drop the connection
					close(c.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast sends an envelope to all connected clients.
func (h *Hub) Broadcast(eventType string, data map[string]interface{}) {
	envelope := Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		logging.Error("failed to marshal feed message", err)
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	}
}

func userData(user models.User) map[string]interface{} {
	data := map[string]interface{}{
		"name":  user.Name,
		"email": user.Email,
	}
	if user.ID != nil {
		data["id"] = *user.ID
	}
	return data
}

// BroadcastUserCreated notifies clients that a user was inserted.
func (h *Hub) BroadcastUserCreated(user models.User) {
	h.Broadcast(EventUserCreated, userData(user))
}

// BroadcastUserUpdated notifies clients that a user was replaced.
func (h *Hub) BroadcastUserUpdated(user models.User) {
	h.Broadcast(EventUserUpdated, userData(user))
}

// BroadcastUserDeleted notifies clients that a user was removed.
func (h *Hub) BroadcastUserDeleted(id int64) {
	h.Broadcast(EventUserDeleted, map[string]interface{}{"id": id})
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("feed upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	select {
	case h.register <- c:
	case <-h.quit:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump drains the connection. Incoming messages are ignored; the feed
// is one-way. Pongs extend the read deadline.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards broadcasts and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
