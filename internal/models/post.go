package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostContentLen is the maximum length of a post or comment body.
const MaxPostContentLen = 240

// MaxPostImages is the maximum number of image references per post.
const MaxPostImages = 4

// Post is an authored piece of content. A nil ParentPostID marks a
// top-level post; a non-nil one marks a comment on that post.
type Post struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	AuthorID     uint     `gorm:"not null;index" json:"author_id"`
	Author       User     `gorm:"foreignKey:AuthorID" json:"author"`
	Content      string   `gorm:"size:240;not null" json:"content"`
	Images       []string `gorm:"serializer:json" json:"images"`
	ParentPostID *uint    `gorm:"index" json:"parent_post_id,omitempty"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// RetweetCount is not persisted; computed at query time
	RetweetCount int `gorm:"->" json:"retweet_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int            `gorm:"->" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// IsComment reports whether the post is a comment on another post.
func (p *Post) IsComment() bool {
	return p.ParentPostID != nil
}
