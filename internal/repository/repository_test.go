package repository

import (
	"testing"
	"time"

	"perch/internal/database"
	"perch/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.RegisteredModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, visibility models.Visibility) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
		Password:    "hashed",
		Visibility:  visibility,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:  authorID,
		Content:   content,
		Images:    []string{},
		CreatedAt: createdAt,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post %q: %v", content, err)
	}
	return post
}

func createTestComment(t *testing.T, db *gorm.DB, authorID, parentID uint, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:     authorID,
		Content:      content,
		Images:       []string{},
		ParentPostID: &parentID,
		CreatedAt:    createdAt,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create comment %q: %v", content, err)
	}
	return post
}
