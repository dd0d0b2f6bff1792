// Package service holds the application's business logic.
package service

import (
	"context"

	"perch/internal/models"
	"perch/internal/repository"
)

// VisibilityService decides read permission between a viewer and a target
// author. It is strictly read-only and never treats absent data as an
// error: a missing user or follow edge resolves to "no".
type VisibilityService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewVisibilityService returns a new VisibilityService.
func NewVisibilityService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *VisibilityService {
	return &VisibilityService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// CanView reports whether viewerID may read targetID's content:
//
//   - target does not exist: false
//   - target is public: true
//   - target is hidden: false, even when viewer == target; callers that
//     want owners to reach their own content compare IDs before calling
//   - target is private: true iff viewer follows target
//
// The returned error covers storage failures only.
func (s *VisibilityService) CanView(ctx context.Context, viewerID, targetID uint) (bool, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, nil
	}

	switch target.Visibility {
	case models.VisibilityPublic:
		return true, nil
	case models.VisibilityHidden:
		return false, nil
	case models.VisibilityPrivate:
		return s.followRepo.Exists(ctx, viewerID, targetID)
	default:
		return false, nil
	}
}

// IsFollowing is a pure follow-edge lookup, independent of visibility.
// The messaging gate uses it directly: messaging requires a follow edge,
// not public visibility.
func (s *VisibilityService) IsFollowing(ctx context.Context, viewerID, targetID uint) (bool, error) {
	return s.followRepo.Exists(ctx, viewerID, targetID)
}
