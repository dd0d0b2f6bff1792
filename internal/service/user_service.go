package service

import (
	"context"

	"perch/internal/models"
	"perch/internal/repository"
	"perch/internal/storage"
	"perch/internal/validation"
)

// UserService provides profile and recommendation logic.
type UserService struct {
	userRepo   repository.UserRepository
	visibility *VisibilityService
	signer     storage.URLSigner
}

// UpdateUserInput is the self-update input shape. Empty fields are left
// unchanged.
type UpdateUserInput struct {
	UserID      uint
	DisplayName string
	Visibility  string
	AvatarKey   string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, visibility *VisibilityService, signer storage.URLSigner) *UserService {
	return &UserService{
		userRepo:   userRepo,
		visibility: visibility,
		signer:     signer,
	}
}

// GetProfile returns a user's profile. Self-access always succeeds (the
// hidden state does not lock an owner out of their own profile); any other
// viewer goes through the visibility resolver.
func (s *UserService) GetProfile(ctx context.Context, viewerID, targetID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User")
	}

	if viewerID != targetID {
		ok, err := s.visibility.CanView(ctx, viewerID, targetID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewInvalidUserError("You cannot view this user")
		}
	}

	if err := s.signAvatar(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetRecommendations returns the offset-paginated recommendation list.
func (s *UserService) GetRecommendations(ctx context.Context, viewerID uint, page repository.OffsetPage) ([]*models.User, error) {
	users, err := s.userRepo.Recommend(ctx, viewerID, page)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, models.NewNotFoundError("Users")
	}
	for _, user := range users {
		if err := s.signAvatar(ctx, user); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UpdateUser applies a self-update.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	if err := validation.UpdateUser(in.DisplayName, in.Visibility); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User")
	}

	if in.DisplayName != "" {
		user.DisplayName = in.DisplayName
	}
	if in.Visibility != "" {
		user.Visibility = models.Visibility(in.Visibility)
	}
	if in.AvatarKey != "" {
		user.AvatarKey = in.AvatarKey
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.signAvatar(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the caller's own account.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User")
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) signAvatar(ctx context.Context, user *models.User) error {
	if user.AvatarKey == "" {
		return nil
	}
	signed, err := s.signer.Sign(ctx, user.AvatarKey)
	if err != nil {
		return err
	}
	user.AvatarKey = signed.URL
	return nil
}
