package service

import (
	"context"

	"perch/internal/models"
	"perch/internal/repository"
	"perch/internal/storage"
	"perch/internal/validation"
)

// ReactionService provides like/retweet logic. The (author, post, action)
// triple is unique: reacting twice conflicts, and removing a reaction that
// does not exist conflicts too, mirroring create.
type ReactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
	visibility   *VisibilityService
	signer       storage.URLSigner
}

// NewReactionService returns a new ReactionService.
func NewReactionService(
	reactionRepo repository.ReactionRepository,
	postRepo repository.PostRepository,
	visibility *VisibilityService,
	signer storage.URLSigner,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		visibility:   visibility,
		signer:       signer,
	}
}

// React places a reaction on a post.
func (s *ReactionService) React(ctx context.Context, authorID, postID uint, action models.ReactionAction) (*models.Reaction, error) {
	if err := validation.Reaction(string(action)); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post")
	}

	existing, err := s.reactionRepo.Get(ctx, authorID, postID, action)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Already reacted with " + string(action))
	}

	reaction := &models.Reaction{
		AuthorID: authorID,
		PostID:   postID,
		Action:   action,
	}
	if err := s.reactionRepo.Create(ctx, reaction); err != nil {
		return nil, err
	}
	return reaction, nil
}

// Unreact removes a reaction. A missing reaction is a conflict, not a
// not-found: the delete mirrors the create.
func (s *ReactionService) Unreact(ctx context.Context, authorID, postID uint, action models.ReactionAction) error {
	if err := validation.Reaction(string(action)); err != nil {
		return err
	}

	removed, err := s.reactionRepo.Delete(ctx, authorID, postID, action)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewConflictError("No such reaction to remove")
	}
	return nil
}

// GetUserReactions returns an author's reactions, gated up front like the
// other by-author collections.
func (s *ReactionService) GetUserReactions(ctx context.Context, viewerID, authorID uint, page repository.CursorPage) ([]*models.Reaction, error) {
	if viewerID != authorID {
		ok, err := s.visibility.CanView(ctx, viewerID, authorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewInvalidUserError("You cannot view this user's reactions")
		}
	}

	reactions, err := s.reactionRepo.ListByAuthor(ctx, authorID, page)
	if err != nil {
		return nil, err
	}
	if len(reactions) == 0 {
		return nil, models.NewNotFoundError("Reactions")
	}

	// The embedded posts go out like any other post payload: storage keys
	// resolved to signed URLs.
	posts := make([]*models.Post, len(reactions))
	for i, reaction := range reactions {
		posts[i] = &reaction.Post
	}
	if err := signPostMedia(ctx, s.signer, posts); err != nil {
		return nil, err
	}
	return reactions, nil
}
