package service

import (
	"context"
	"errors"
	"testing"

	"perch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanView_TruthTable(t *testing.T) {
	public := &models.User{ID: 1, Visibility: models.VisibilityPublic}
	private := &models.User{ID: 2, Visibility: models.VisibilityPrivate}
	hidden := &models.User{ID: 3, Visibility: models.VisibilityHidden}

	userRepo := noopUserRepo()
	userRepo.getByIDFn = usersByID(public, private, hidden)

	followRepo := noopFollowRepo()
	followRepo.existsFn = func(_ context.Context, followerID, followedID uint) (bool, error) {
		// Viewer 10 follows the private user.
		return followerID == 10 && followedID == 2, nil
	}

	svc := NewVisibilityService(userRepo, followRepo)
	ctx := context.Background()

	tests := []struct {
		name     string
		viewerID uint
		targetID uint
		want     bool
	}{
		{"public target", 10, 1, true},
		{"public target, anonymous viewer", 0, 1, true},
		{"private target, follower", 10, 2, true},
		{"private target, non-follower", 11, 2, false},
		{"hidden target", 10, 3, false},
		{"hidden target, self", 3, 3, false},
		{"missing target", 10, 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanView(ctx, tt.viewerID, tt.targetID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanView_StorageErrorPropagates(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return nil, errors.New("db down")
	}

	svc := NewVisibilityService(userRepo, noopFollowRepo())
	_, err := svc.CanView(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestIsFollowing_IgnoresVisibility(t *testing.T) {
	// A hidden user can still be followed; the messaging gate cares about
	// the edge only.
	followRepo := noopFollowRepo()
	followRepo.existsFn = func(_ context.Context, followerID, followedID uint) (bool, error) {
		return followerID == 1 && followedID == 3, nil
	}

	svc := NewVisibilityService(noopUserRepo(), followRepo)

	ok, err := svc.IsFollowing(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsFollowing(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
