package service

import (
	"context"
	"testing"

	"perch/internal/models"
	"perch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostService wires a PostService from stubs with a visibility resolver
// over the given users and follow edges.
func newPostService(postRepo *postRepoStub, userRepo *userRepoStub, followRepo *followRepoStub) *PostService {
	return NewPostService(postRepo, userRepo, NewVisibilityService(userRepo, followRepo), fakeSigner())
}

func TestCreatePost_NoImagesYieldsEmptySlice(t *testing.T) {
	stored := make(map[uint]*models.Post)
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 1
		stored[p.ID] = p
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return stored[id], nil
	}

	svc := newPostService(postRepo, noopUserRepo(), noopFollowRepo())

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1,
		Content:  "no pictures here",
	})
	require.NoError(t, err)
	require.NotNil(t, post.Images)
	assert.Empty(t, post.Images)
}

func TestCreatePost_SignsEveryImagePositionally(t *testing.T) {
	stored := make(map[uint]*models.Post)
	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		stored[p.ID] = p
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return stored[id], nil
	}

	svc := newPostService(postRepo, noopUserRepo(), noopFollowRepo())

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 1,
		Content:  "three pictures",
		Images:   []string{"k1", "k2", "k3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"signed://k1", "signed://k2", "signed://k3"}, post.Images)
}

func TestCreatePost_ValidationFailures(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Content: ""})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.CreatePost(ctx, CreatePostInput{
		AuthorID: 1,
		Content:  "too many",
		Images:   []string{"a", "b", "c", "d", "e"},
	})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestCreatePost_CommentOnMissingParent(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())

	parent := uint(99)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID:     1,
		Content:      "reply",
		ParentPostID: &parent,
	})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCreatePost_CommentOnCommentIsConflict(t *testing.T) {
	grandparent := uint(1)
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if id == 2 {
			return &models.Post{ID: 2, ParentPostID: &grandparent}, nil
		}
		return nil, nil
	}

	svc := newPostService(postRepo, noopUserRepo(), noopFollowRepo())

	parent := uint(2)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID:     1,
		Content:      "reply to reply",
		ParentPostID: &parent,
	})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestGetLatestPosts_EmptyFeedIsNotFound(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())

	_, err := svc.GetLatestPosts(context.Background(), 1, repository.CursorPage{Limit: 10})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestGetLatestPosts_EnrichesAvatars(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listLatestFn = func(context.Context, uint, repository.CursorPage) ([]*models.Post, error) {
		return []*models.Post{
			{ID: 1, Content: "a", Images: []string{"img"}, Author: models.User{ID: 2, AvatarKey: "ava"}},
		}, nil
	}

	svc := newPostService(postRepo, noopUserRepo(), noopFollowRepo())

	posts, err := svc.GetLatestPosts(context.Background(), 1, repository.CursorPage{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{"signed://img"}, posts[0].Images)
	assert.Equal(t, "signed://ava", posts[0].Author.AvatarKey)
}

func TestGetPost_DeniedViewerGetsInvalidUser(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(context.Context, uint) (*models.Post, error) {
		return &models.Post{ID: 1, AuthorID: 2}, nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDFn = usersByID(&models.User{ID: 2, Visibility: models.VisibilityPrivate})

	svc := newPostService(postRepo, userRepo, noopFollowRepo())

	_, err := svc.GetPost(context.Background(), 3, 1)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInvalidUser))
}

func TestGetPost_AuthorBypassesVisibility(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(context.Context, uint) (*models.Post, error) {
		return &models.Post{ID: 1, AuthorID: 2, Images: []string{}}, nil
	}
	// Author is hidden; self-access still succeeds.
	userRepo := noopUserRepo()
	userRepo.getByIDFn = usersByID(&models.User{ID: 2, Visibility: models.VisibilityHidden})

	svc := newPostService(postRepo, userRepo, noopFollowRepo())

	post, err := svc.GetPost(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
}

func TestGetUserPosts_GateRunsBeforeFetch(t *testing.T) {
	fetched := false
	postRepo := noopPostRepo()
	postRepo.listByAuthorFn = func(context.Context, uint, repository.CursorPage) ([]*models.Post, error) {
		fetched = true
		return nil, nil
	}
	userRepo := noopUserRepo()
	userRepo.getByIDFn = usersByID(&models.User{ID: 2, Visibility: models.VisibilityHidden})

	svc := newPostService(postRepo, userRepo, noopFollowRepo())

	_, err := svc.GetUserPosts(context.Background(), 3, 2, repository.CursorPage{Limit: 10})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInvalidUser))
	assert.False(t, fetched, "denied viewer must not trigger a fetch")
}

func TestGetUserPosts_SelfBypassWithEmptyResult(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())

	// Self-access passes the gate; the empty collection is still not-found.
	_, err := svc.GetUserPosts(context.Background(), 2, 2, repository.CursorPage{Limit: 10})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestGetPostComments_MissingPost(t *testing.T) {
	svc := newPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())

	_, err := svc.GetPostComments(context.Background(), 1, 99, repository.CursorPage{Limit: 10})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestDeletePost_OnlyAuthor(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(context.Context, uint) (*models.Post, error) {
		return &models.Post{ID: 1, AuthorID: 2}, nil
	}
	deleted := false
	postRepo.deleteFn = func(context.Context, uint) error {
		deleted = true
		return nil
	}

	svc := newPostService(postRepo, noopUserRepo(), noopFollowRepo())
	ctx := context.Background()

	err := svc.DeletePost(ctx, 3, 1)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	assert.False(t, deleted)

	require.NoError(t, svc.DeletePost(ctx, 2, 1))
	assert.True(t, deleted)
}
