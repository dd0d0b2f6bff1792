package repository

import (
	"context"
	"errors"

	"perch/internal/cache"
	"perch/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post and comment data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListLatest(ctx context.Context, viewerID uint, page CursorPage) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, page CursorPage) ([]*models.Post, error)
	ListCommentsByPost(ctx context.Context, postID uint, page CursorPage) ([]*models.Post, error)
	ListCommentsByAuthor(ctx context.Context, authorID uint, page CursorPage) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostCounts adds subqueries computing the aggregate counts in the
// same round trip as the base rows. The reaction and comment sets are
// filtered per post inside the query instead of refetched per item.
// Package-level so other repositories preloading posts get the same counts.
func applyPostCounts(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.action = 'like') AS like_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.action = 'retweet') AS retweet_count, " +
		"(SELECT COUNT(*) FROM posts AS children WHERE children.parent_post_id = posts.id AND children.deleted_at IS NULL) AS comment_count")
}

// visibleAuthors restricts a post query to authors the viewer may read:
// public accounts unioned with private accounts the viewer follows.
// Hidden authors and unfollowed private authors are excluded from the
// result set entirely rather than filtered per item. An anonymous viewer
// (id 0) sees public authors only.
func (r *postRepository) visibleAuthors(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID == 0 {
		return db.Where(
			"posts.author_id IN (SELECT users.id FROM users WHERE users.deleted_at IS NULL AND users.visibility = ?)",
			models.VisibilityPublic,
		)
	}
	return db.Where(
		"posts.author_id IN (SELECT users.id FROM users WHERE users.deleted_at IS NULL AND ("+
			"users.visibility = ? OR "+
			"(users.visibility = ? AND users.id IN (SELECT follows.followed_id FROM follows WHERE follows.follower_id = ?))"+
			"))",
		models.VisibilityPublic, models.VisibilityPrivate, viewerID,
	)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	if post.ParentPostID != nil {
		// The parent's cached comment count is now stale.
		cache.InvalidatePost(ctx, *post.ParentPostID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return applyPostCounts(r.db.WithContext(ctx)).
			Preload("Author").
			First(&post, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListLatest(ctx context.Context, viewerID uint, page CursorPage) ([]*models.Post, error) {
	var posts []*models.Post
	q := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("Author").
		Where("posts.parent_post_id IS NULL")
	q = r.visibleAuthors(q, viewerID)
	err := CursorScan[models.Post](r.db.WithContext(ctx), q, "posts", page, &posts)
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, page CursorPage) ([]*models.Post, error) {
	var posts []*models.Post
	q := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("Author").
		Where("posts.author_id = ? AND posts.parent_post_id IS NULL", authorID)
	err := CursorScan[models.Post](r.db.WithContext(ctx), q, "posts", page, &posts)
	return posts, err
}

func (r *postRepository) ListCommentsByPost(ctx context.Context, postID uint, page CursorPage) ([]*models.Post, error) {
	var comments []*models.Post
	q := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("Author").
		Where("posts.parent_post_id = ?", postID)
	err := CursorScan[models.Post](r.db.WithContext(ctx), q, "posts", page, &comments)
	return comments, err
}

func (r *postRepository) ListCommentsByAuthor(ctx context.Context, authorID uint, page CursorPage) ([]*models.Post, error) {
	var comments []*models.Post
	q := applyPostCounts(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("Author").
		Where("posts.author_id = ? AND posts.parent_post_id IS NOT NULL", authorID)
	err := CursorScan[models.Post](r.db.WithContext(ctx), q, "posts", page, &comments)
	return comments, err
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
