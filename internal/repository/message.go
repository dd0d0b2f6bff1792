package repository

import (
	"context"
	"errors"

	"perch/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct-message persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListConversation(ctx context.Context, userID, otherID uint, page CursorPage) ([]*models.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).First(&message, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListConversation returns the messages exchanged between two users in
// either direction.
func (r *messageRepository) ListConversation(ctx context.Context, userID, otherID uint, page CursorPage) ([]*models.Message, error) {
	var messages []*models.Message
	q := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where(
			"(messages.sender_id = ? AND messages.receiver_id = ?) OR (messages.sender_id = ? AND messages.receiver_id = ?)",
			userID, otherID, otherID, userID,
		)
	err := CursorScan[models.Message](r.db.WithContext(ctx), q, "messages", page, &messages)
	return messages, err
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, id).Error
}
