package repository

import (
	"context"
	"testing"

	"perch/internal/cache"
	"perch/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_AbsentLookupsReturnNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = repo.GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = repo.GetByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username:    "alice",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Password:    "hashed",
		Visibility:  models.VisibilityPrivate,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility)
}

func TestUserRepository_CachedReadKeepsPasswordHash(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", models.VisibilityPublic)
	hash := user.Password

	// First read warms the cache, second read is served from it. Both must
	// carry the full record including the hash the API never serializes.
	warm, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, hash, warm.Password)

	cached, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, hash, cached.Password)

	// Saving a mutated cache-hit record must not wipe the stored hash.
	cached.DisplayName = "Alice Updated"
	require.NoError(t, repo.Update(ctx, cached))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, hash, stored.Password)
	assert.Equal(t, "Alice Updated", stored.DisplayName)
}

func TestUserRepository_Delete_HidesUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "doomed", models.VisibilityPublic)
	require.NoError(t, repo.Delete(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_Recommend(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	viewer := createTestUser(t, db, "viewer", models.VisibilityPublic)
	createTestUser(t, db, "pub", models.VisibilityPublic)
	createTestUser(t, db, "priv", models.VisibilityPrivate)
	createTestUser(t, db, "hid", models.VisibilityHidden)

	users, err := repo.Recommend(ctx, viewer.ID, OffsetPage{Limit: 10})
	require.NoError(t, err)

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	// Viewer and hidden accounts are excluded; private ones are fine to
	// recommend even before following.
	assert.Equal(t, []string{"pub", "priv"}, names)
}

func TestUserRepository_Recommend_Offset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		createTestUser(t, db, name, models.VisibilityPublic)
	}

	users, err := repo.Recommend(ctx, 0, OffsetPage{Limit: 2, Skip: 1})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].Username)
	assert.Equal(t, "u3", users[1].Username)
}
