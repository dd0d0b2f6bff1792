// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"log"

	"perch/internal/middleware"
	"perch/internal/models"
	"perch/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// incomingEnvelope is the frame clients send over the realtime channel.
type incomingEnvelope struct {
	Type       string `json:"type"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
}

// WebsocketHandler upgrades an authenticated request into a realtime
// session. The credential was already verified during the HTTP handshake;
// by the time this runs the connection either joins its user's room or is
// rejected with a reason and closed.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			// The auth gate should have rejected this upgrade already.
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"unauthorized"}}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			s.handleRealtimeFrame(c, raw)
		}

		s.hub.BroadcastPresence(userID, "user_connected")

		go client.WritePump()
		client.ReadPump()

		// ReadPump returns when the connection dies; the client has
		// already left its room by then.
		s.hub.BroadcastPresence(userID, "user_disconnected")
	})
}

// handleRealtimeFrame dispatches one inbound frame. Errors are turned into
// error events on the sender's own connection and never terminate the
// session.
func (s *Server) handleRealtimeFrame(client *notifications.Client, raw []byte) {
	var frame incomingEnvelope
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.sendErrorEvent(client, models.NewValidationError("Invalid message format"))
		return
	}

	switch frame.Type {
	case "sendMessage":
		ctx := context.Background()
		if _, err := s.messageService.Relay(ctx, client.UserID, frame.ReceiverID, frame.Content); err != nil {
			s.sendErrorEvent(client, err)
		}
	default:
		s.sendErrorEvent(client, models.NewValidationError("Unknown message type"))
	}
}

// sendErrorEvent reports a failure to the originating connection only; the
// other party never observes a failed relay.
func (s *Server) sendErrorEvent(client *notifications.Client, err error) {
	code := models.CodeInternal
	message := "Internal server error"
	if appErr, ok := err.(*models.AppError); ok {
		code = appErr.Code
		message = appErr.Message
	}

	event := notifications.Event{
		Type: "error",
		Payload: map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	payload, merr := json.Marshal(event)
	if merr != nil {
		return
	}
	client.TrySend(payload)
}
