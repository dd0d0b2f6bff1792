package models

import "time"

// ReactionAction is the kind of reaction a user placed on a post.
type ReactionAction string

const (
	// ReactionLike marks a like.
	ReactionLike ReactionAction = "like"
	// ReactionRetweet marks a retweet.
	ReactionRetweet ReactionAction = "retweet"
)

// ValidReactionAction reports whether a is a known reaction kind.
func ValidReactionAction(a ReactionAction) bool {
	return a == ReactionLike || a == ReactionRetweet
}

// Reaction links a user to a post with an action. The triple
// (author, post, action) is unique: a user may both like and retweet the
// same post but never double-like it.
type Reaction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"not null;uniqueIndex:idx_reaction_triple" json:"author_id"`
	PostID    uint           `gorm:"not null;uniqueIndex:idx_reaction_triple;index" json:"post_id"`
	Action    ReactionAction `gorm:"type:varchar(10);not null;uniqueIndex:idx_reaction_triple" json:"action"`
	CreatedAt time.Time      `json:"created_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Post   Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

// TableName specifies the table name for GORM.
func (Reaction) TableName() string {
	return "reactions"
}
