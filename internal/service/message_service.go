package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"perch/internal/models"
	"perch/internal/notifications"
	"perch/internal/observability"
	"perch/internal/repository"
	"perch/internal/validation"

	"github.com/google/uuid"
)

// RoomDeliverer delivers an event to every connection in a user's room.
type RoomDeliverer interface {
	DeliverToUser(userID uint, event notifications.Event)
}

// MessageService authorizes and relays direct messages over the realtime
// channel, then persists them.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	visibility  *VisibilityService
	hub         RoomDeliverer
	logger      *slog.Logger
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	visibility *VisibilityService,
	hub RoomDeliverer,
	logger *slog.Logger,
) *MessageService {
	if logger == nil {
		logger = observability.GlobalLogger.Logger
	}
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		visibility:  visibility,
		hub:         hub,
		logger:      logger,
	}
}

// Relay authorizes one message, delivers it to the receiver's and the
// sender's rooms, then persists it. Delivery deliberately precedes
// persistence: a persistence failure after a successful emit is logged and
// counted, never rolled back, so the channel gives at-least-once delivery
// with best-effort durability.
//
// Every failure, panics included, is caught at this boundary and
// returned as an error for the session gate to turn into an error event;
// a relay must never terminate the connection.
func (s *MessageService) Relay(ctx context.Context, senderID, receiverID uint, content string) (message *models.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			message = nil
			err = models.NewInternalError(fmt.Errorf("relay panic: %v", r))
		}
		if err != nil {
			code := models.CodeInternal
			if appErr, ok := err.(*models.AppError); ok {
				code = appErr.Code
			}
			observability.RelayErrors.WithLabelValues(code).Inc()
		}
	}()

	if err := validation.SendMessage(receiverID, content); err != nil {
		return nil, err
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, models.NewNotFoundError("User")
	}

	// One-directional follow is sufficient; mutual follow is not required.
	following, err := s.visibility.IsFollowing(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !following {
		return nil, models.NewInvalidUserError("You can only message users you follow")
	}

	message = &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	event := notifications.Event{
		Type:    "message",
		EventID: uuid.NewString(),
		Payload: message,
	}
	// Receiver first, then the sender's own room so every one of the
	// sender's devices observes the echo.
	s.hub.DeliverToUser(receiverID, event)
	s.hub.DeliverToUser(senderID, event)

	if err := s.messageRepo.Create(ctx, message); err != nil {
		observability.MessagePersistFailures.Inc()
		s.logger.ErrorContext(ctx, "message delivered but not persisted",
			slog.Uint64("sender_id", uint64(senderID)),
			slog.Uint64("receiver_id", uint64(receiverID)),
			slog.String("error", err.Error()),
		)
	}

	return message, nil
}

// History returns the cursor-paginated conversation between the caller and
// another user.
func (s *MessageService) History(ctx context.Context, userID, otherID uint, page repository.CursorPage) ([]*models.Message, error) {
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, models.NewNotFoundError("User")
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID, page)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, models.NewNotFoundError("Messages")
	}
	return messages, nil
}

// DeleteMessage removes a message. Only the sender may delete it.
func (s *MessageService) DeleteMessage(ctx context.Context, userID, messageID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return models.NewNotFoundError("Message")
	}
	if message.SenderID != userID {
		return models.NewForbiddenError("You can only delete your own messages")
	}
	return s.messageRepo.Delete(ctx, messageID)
}
