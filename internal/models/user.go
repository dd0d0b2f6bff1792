// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility controls the default readability of a user's content.
type Visibility string

const (
	// VisibilityPublic makes the user's content readable by anyone.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate restricts the user's content to followers.
	VisibilityPrivate Visibility = "private"
	// VisibilityHidden makes the user's content unreadable, follow state notwithstanding.
	VisibilityHidden Visibility = "hidden"
)

// User represents an account in the Perch application.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"size:30;unique;not null" json:"username"`
	DisplayName string     `gorm:"size:60" json:"display_name"`
	Email       string     `gorm:"unique;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Visibility  Visibility `gorm:"type:varchar(10);not null;default:'public'" json:"visibility"`
	// AvatarKey is the opaque storage key of the profile picture; it is
	// replaced with a signed URL before leaving the API.
	AvatarKey string         `json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
