package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"perch/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const maxConnsPerUser = 8

// Event is the envelope for everything sent over the realtime channel.
type Event struct {
	Type    string      `json:"type"` // "message", "user_connected", "error"
	EventID string      `json:"event_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub manages websocket connections grouped into rooms keyed by user id.
// Registering a connection moves it out of the implicit unbound state and
// into its user's room, so targeted delivery works no matter how many
// concurrent connections a user holds.
type Hub struct {
	mu sync.RWMutex

	// rooms: userID -> set of that user's active clients
	rooms map[uint]map[*Client]bool
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Client]bool),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "messaging hub" }

// Register binds a connection to the user's room. Returns the Client or an
// error when the per-user connection limit is exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*Client]bool)
	}
	if len(h.rooms[userID]) >= maxConnsPerUser {
		return nil, fmt.Errorf("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.rooms[userID][client] = true
	return client, nil
}

// RegisterClient adds an already-built client to its user's room. Used by tests.
func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	if h.rooms[client.UserID] == nil {
		h.rooms[client.UserID] = make(map[*Client]bool)
	}
	h.rooms[client.UserID][client] = true
	h.mu.Unlock()
}

// UnregisterClient removes a connection from its user's room. Room
// membership is tied to connection lifetime; there is no other cleanup.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[client.UserID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.UserID)
	}
}

// IsUserOnline reports whether the user has at least one active connection.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[userID]
	return ok && len(clients) > 0
}

// DeliverToUser sends an event to every connection in the user's room.
// Delivery is best-effort: offline users and saturated buffers drop silently.
func (h *Hub) DeliverToUser(userID uint, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		observability.GlobalLogger.Error("marshal event failed", "error", err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[userID] {
		client.TrySend(payload)
	}
}

// BroadcastPresence notifies every other connected user that a peer's
// presence changed. Best-effort, no delivery guarantee.
func (h *Hub) BroadcastPresence(userID uint, eventType string) {
	event := Event{
		Type:    eventType,
		Payload: map[string]interface{}{"user_id": userID},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		observability.GlobalLogger.Error("marshal presence event failed", "error", err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, clients := range h.rooms {
		if id == userID {
			continue
		}
		for client := range clients {
			client.TrySend(payload)
		}
	}
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.rooms {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown"}`)); err != nil {
				observability.GlobalLogger.Warn("shutdown notice write failed", "user_id", userID, "error", err.Error())
			}
			if err := client.Conn.Close(); err != nil {
				observability.GlobalLogger.Warn("websocket close failed", "user_id", userID, "error", err.Error())
			}
		}
	}

	h.rooms = make(map[uint]map[*Client]bool)
	return nil
}
