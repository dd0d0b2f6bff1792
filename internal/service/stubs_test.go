package service

import (
	"context"

	"perch/internal/models"
	"perch/internal/notifications"
	"perch/internal/repository"
	"perch/internal/storage"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	recommendFn     func(context.Context, uint, repository.OffsetPage) ([]*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Recommend(ctx context.Context, viewerID uint, page repository.OffsetPage) ([]*models.User, error) {
	return s.recommendFn(ctx, viewerID, page)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(context.Context, *models.User) error { return nil },
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		recommendFn: func(context.Context, uint, repository.OffsetPage) ([]*models.User, error) {
			return nil, nil
		},
	}
}

// usersByID wires a getByIDFn over a fixed set of users.
func usersByID(users ...*models.User) func(context.Context, uint) (*models.User, error) {
	return func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, nil
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn  func(context.Context, *models.Follow) error
	getFn     func(context.Context, uint, uint) (*models.Follow, error)
	existsFn  func(context.Context, uint, uint) (bool, error)
	deleteFn  func(context.Context, uint, uint) (bool, error)
	listRecFn func(context.Context) ([]*models.Follow, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) Get(ctx context.Context, followerID, followedID uint) (*models.Follow, error) {
	return s.getFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) ListAll(ctx context.Context) ([]*models.Follow, error) {
	return s.listRecFn(ctx)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:  func(context.Context, *models.Follow) error { return nil },
		getFn:     func(context.Context, uint, uint) (*models.Follow, error) { return nil, nil },
		existsFn:  func(context.Context, uint, uint) (bool, error) { return false, nil },
		deleteFn:  func(context.Context, uint, uint) (bool, error) { return false, nil },
		listRecFn: func(context.Context) ([]*models.Follow, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn               func(context.Context, *models.Post) error
	getByIDFn              func(context.Context, uint) (*models.Post, error)
	listLatestFn           func(context.Context, uint, repository.CursorPage) ([]*models.Post, error)
	listByAuthorFn         func(context.Context, uint, repository.CursorPage) ([]*models.Post, error)
	listCommentsByPostFn   func(context.Context, uint, repository.CursorPage) ([]*models.Post, error)
	listCommentsByAuthorFn func(context.Context, uint, repository.CursorPage) ([]*models.Post, error)
	deleteFn               func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListLatest(ctx context.Context, viewerID uint, page repository.CursorPage) ([]*models.Post, error) {
	return s.listLatestFn(ctx, viewerID, page)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, page repository.CursorPage) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, page)
}
func (s *postRepoStub) ListCommentsByPost(ctx context.Context, postID uint, page repository.CursorPage) ([]*models.Post, error) {
	return s.listCommentsByPostFn(ctx, postID, page)
}
func (s *postRepoStub) ListCommentsByAuthor(ctx context.Context, authorID uint, page repository.CursorPage) ([]*models.Post, error) {
	return s.listCommentsByAuthorFn(ctx, authorID, page)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.Post, error) { return nil, nil },
		listLatestFn: func(context.Context, uint, repository.CursorPage) ([]*models.Post, error) {
			return nil, nil
		},
		listByAuthorFn: func(context.Context, uint, repository.CursorPage) ([]*models.Post, error) {
			return nil, nil
		},
		listCommentsByPostFn: func(context.Context, uint, repository.CursorPage) ([]*models.Post, error) {
			return nil, nil
		},
		listCommentsByAuthorFn: func(context.Context, uint, repository.CursorPage) ([]*models.Post, error) {
			return nil, nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	createFn       func(context.Context, *models.Reaction) error
	getFn          func(context.Context, uint, uint, models.ReactionAction) (*models.Reaction, error)
	deleteFn       func(context.Context, uint, uint, models.ReactionAction) (bool, error)
	listByAuthorFn func(context.Context, uint, repository.CursorPage) ([]*models.Reaction, error)
}

func (s *reactionRepoStub) Create(ctx context.Context, reaction *models.Reaction) error {
	return s.createFn(ctx, reaction)
}
func (s *reactionRepoStub) Get(ctx context.Context, authorID, postID uint, action models.ReactionAction) (*models.Reaction, error) {
	return s.getFn(ctx, authorID, postID, action)
}
func (s *reactionRepoStub) Delete(ctx context.Context, authorID, postID uint, action models.ReactionAction) (bool, error) {
	return s.deleteFn(ctx, authorID, postID, action)
}
func (s *reactionRepoStub) ListByAuthor(ctx context.Context, authorID uint, page repository.CursorPage) ([]*models.Reaction, error) {
	return s.listByAuthorFn(ctx, authorID, page)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		createFn: func(context.Context, *models.Reaction) error { return nil },
		getFn: func(context.Context, uint, uint, models.ReactionAction) (*models.Reaction, error) {
			return nil, nil
		},
		deleteFn: func(context.Context, uint, uint, models.ReactionAction) (bool, error) {
			return false, nil
		},
		listByAuthorFn: func(context.Context, uint, repository.CursorPage) ([]*models.Reaction, error) {
			return nil, nil
		},
	}
}

// messageRepoStub is a stub for repository.MessageRepository.
type messageRepoStub struct {
	createFn           func(context.Context, *models.Message) error
	getByIDFn          func(context.Context, uint) (*models.Message, error)
	listConversationFn func(context.Context, uint, uint, repository.CursorPage) ([]*models.Message, error)
	deleteFn           func(context.Context, uint) error
}

func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	return s.createFn(ctx, message)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) ListConversation(ctx context.Context, userID, otherID uint, page repository.CursorPage) ([]*models.Message, error) {
	return s.listConversationFn(ctx, userID, otherID, page)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:  func(context.Context, *models.Message) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.Message, error) { return nil, nil },
		listConversationFn: func(context.Context, uint, uint, repository.CursorPage) ([]*models.Message, error) {
			return nil, nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

// signerStub resolves keys to predictable fake URLs.
type signerStub struct {
	signFn func(context.Context, string) (storage.SignedObject, error)
}

func (s *signerStub) Sign(ctx context.Context, key string) (storage.SignedObject, error) {
	return s.signFn(ctx, key)
}

func fakeSigner() *signerStub {
	return &signerStub{
		signFn: func(_ context.Context, key string) (storage.SignedObject, error) {
			return storage.SignedObject{Key: key, URL: "signed://" + key}, nil
		},
	}
}

// hubStub records deliveries instead of pushing them over websockets.
type hubStub struct {
	delivered []delivery
}

type delivery struct {
	userID uint
	event  notifications.Event
}

func (h *hubStub) DeliverToUser(userID uint, event notifications.Event) {
	h.delivered = append(h.delivered, delivery{userID: userID, event: event})
}
