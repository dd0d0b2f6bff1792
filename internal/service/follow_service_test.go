package service

import (
	"context"
	"testing"

	"perch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_Success(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = usersByID(&models.User{ID: 2, Visibility: models.VisibilityPublic})

	var created *models.Follow
	followRepo := noopFollowRepo()
	followRepo.createFn = func(_ context.Context, f *models.Follow) error {
		created = f
		return nil
	}

	svc := NewFollowService(followRepo, userRepo)

	follow, err := svc.Follow(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(1), follow.FollowerID)
	assert.Equal(t, uint(2), follow.FollowedID)
}

func TestFollow_SelfIsConflict(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo())

	_, err := svc.Follow(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestFollow_MissingTargetIsNotFound(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo())

	_, err := svc.Follow(context.Background(), 1, 99)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestFollow_ExistingEdgeIsConflict(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = usersByID(&models.User{ID: 2})

	followRepo := noopFollowRepo()
	followRepo.getFn = func(context.Context, uint, uint) (*models.Follow, error) {
		return &models.Follow{FollowerID: 1, FollowedID: 2}, nil
	}

	svc := NewFollowService(followRepo, userRepo)

	_, err := svc.Follow(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestUnfollow_MissingEdgeIsNotFound(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo())

	err := svc.Unfollow(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUnfollow_Success(t *testing.T) {
	followRepo := noopFollowRepo()
	followRepo.deleteFn = func(context.Context, uint, uint) (bool, error) { return true, nil }

	svc := NewFollowService(followRepo, noopUserRepo())
	assert.NoError(t, svc.Unfollow(context.Background(), 1, 2))
}

func TestGetFollow_MissingIsNotFound(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo())

	_, err := svc.Get(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestListAll_EmptyIsNotFound(t *testing.T) {
	svc := NewFollowService(noopFollowRepo(), noopUserRepo())

	_, err := svc.ListAll(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestListAll_ReturnsEdges(t *testing.T) {
	followRepo := noopFollowRepo()
	followRepo.listRecFn = func(context.Context) ([]*models.Follow, error) {
		return []*models.Follow{{ID: 1}, {ID: 2}}, nil
	}

	svc := NewFollowService(followRepo, noopUserRepo())
	follows, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, follows, 2)
}
