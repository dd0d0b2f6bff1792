package service

import (
	"context"

	"perch/internal/models"
	"perch/internal/repository"
)

// FollowService provides the follow/unfollow state machine. Per ordered
// pair (follower, followed) the state is either NOT_FOLLOWING or FOLLOWING;
// transitions out of the current state are conflicts or not-found.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates the edge followerID -> followedID.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uint) (*models.Follow, error) {
	if followerID == followedID {
		return nil, models.NewConflictError("Cannot follow yourself")
	}

	followed, err := s.userRepo.GetByID(ctx, followedID)
	if err != nil {
		return nil, err
	}
	if followed == nil {
		return nil, models.NewNotFoundError("User")
	}

	existing, err := s.followRepo.Get(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Already following this user")
	}

	follow := &models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}
	return follow, nil
}

// Unfollow destroys the edge followerID -> followedID.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	removed, err := s.followRepo.Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("Follow")
	}
	return nil
}

// Get returns the edge followerID -> followedID or a not-found error.
func (s *FollowService) Get(ctx context.Context, followerID, followedID uint) (*models.Follow, error) {
	follow, err := s.followRepo.Get(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if follow == nil {
		return nil, models.NewNotFoundError("Follow")
	}
	return follow, nil
}

// ListAll returns every follow edge in the system. Zero edges is an error
// at this layer: callers using the full edge list as a health or debug view
// get a clear failure signal instead of an empty list.
func (s *FollowService) ListAll(ctx context.Context) ([]*models.Follow, error) {
	follows, err := s.followRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(follows) == 0 {
		return nil, models.NewNotFoundError("Follows")
	}
	return follows, nil
}
