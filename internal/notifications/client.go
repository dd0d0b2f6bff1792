// Package notifications manages the realtime websocket sessions and rooms.
package notifications

import (
	"time"

	"perch/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeTimeout bounds a single frame write to the peer.
	writeTimeout = 10 * time.Second

	// readIdleTimeout is how long the connection may stay silent before it
	// is considered dead. Pongs reset it.
	readIdleTimeout = 60 * time.Second

	// heartbeatInterval must be shorter than readIdleTimeout so pongs
	// arrive before the deadline fires.
	heartbeatInterval = (readIdleTimeout * 9) / 10

	// inboundLimit caps the size of a single frame from the peer.
	inboundLimit = 16384

	// sendBuffer is the per-client outbound queue depth. Overflow drops
	// messages rather than blocking the sender.
	sendBuffer = 256
)

// dropNotice tells the peer that delivery skipped messages so it can
// re-fetch the gap over HTTP.
var dropNotice = []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)

// WSHub is implemented by hubs that manage clients.
type WSHub interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	Hub WSHub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// UserID for this client
	UserID uint

	// Callback for handling incoming messages
	IncomingHandler func(*Client, []byte)
}

// NewClient creates a new Client instance.
func NewClient(hub WSHub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

func (c *Client) refreshReadDeadline() error {
	return c.Conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
}

// ReadPump pumps messages from the websocket connection to the hub. It owns
// unregistration: when the read side dies for any reason the client leaves
// its room and the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(inboundLimit)
	_ = c.refreshReadDeadline()
	c.Conn.SetPongHandler(func(string) error { return c.refreshReadDeadline() })

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.GlobalLogger.Warn("websocket read failed",
					"user_id", c.UserID,
					"hub", c.Hub.Name(),
					"error", err.Error(),
				)
			}
			return
		}
		if c.IncomingHandler != nil {
			c.IncomingHandler(c, frame)
		}
	}
}

// WritePump drains the outbound queue onto the connection and keeps the
// heartbeat going. One frame per queued message; already-queued messages
// are flushed under the same write deadline.
func (c *Client) WritePump() {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer func() {
		heartbeat.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case frame, open := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
			for queued := len(c.Send); queued > 0; queued-- {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}

		case <-heartbeat.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// offer enqueues without blocking. Reports whether the message made it in.
func (c *Client) offer(message []byte) bool {
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// TrySend attempts to send a message to the client without blocking the
// caller. A full buffer drops the message and notifies the client so it can
// re-fetch the gap.
func (c *Client) TrySend(message []byte) {
	defer func() {
		// Sending on a channel the hub already closed panics; count it as
		// a drop against the departed client.
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	if c.offer(message) {
		return
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
	observability.GlobalLogger.Warn("websocket buffer full, message dropped",
		"user_id", c.UserID,
		"hub", c.Hub.Name(),
	)
	// Best effort; a client too slow for the drop notice re-syncs on
	// reconnect instead.
	c.offer(dropNotice)
}
