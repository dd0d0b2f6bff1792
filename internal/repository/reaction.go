package repository

import (
	"context"
	"errors"

	"perch/internal/cache"
	"perch/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations.
type ReactionRepository interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	Get(ctx context.Context, authorID, postID uint, action models.ReactionAction) (*models.Reaction, error)
	Delete(ctx context.Context, authorID, postID uint, action models.ReactionAction) (bool, error)
	ListByAuthor(ctx context.Context, authorID uint, page CursorPage) ([]*models.Reaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	if err := r.db.WithContext(ctx).Create(reaction).Error; err != nil {
		return err
	}
	// Counts on the post are computed at read time; drop the cached copy.
	cache.InvalidatePost(ctx, reaction.PostID)
	return nil
}

func (r *reactionRepository) Get(ctx context.Context, authorID, postID uint, action models.ReactionAction) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND post_id = ? AND action = ?", authorID, postID, action).
		First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// Delete removes one reaction and reports whether it existed.
func (r *reactionRepository) Delete(ctx context.Context, authorID, postID uint, action models.ReactionAction) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("author_id = ? AND post_id = ? AND action = ?", authorID, postID, action).
		Delete(&models.Reaction{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
		return true, nil
	}
	return false, nil
}

func (r *reactionRepository) ListByAuthor(ctx context.Context, authorID uint, page CursorPage) ([]*models.Reaction, error) {
	var reactions []*models.Reaction
	q := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		// The preloaded posts carry the same computed counts as the post
		// endpoints, not bare rows.
		Preload("Post", func(db *gorm.DB) *gorm.DB { return applyPostCounts(db) }).
		Preload("Post.Author").
		Where("reactions.author_id = ?", authorID)
	err := CursorScan[models.Reaction](r.db.WithContext(ctx), q, "reactions", page, &reactions)
	return reactions, err
}
