package models

import (
	"time"
)

// PostVote is a single user's vote on a single post. The composite primary
// key is the storage-level guard: two concurrent first-votes for the same
// pair cannot both insert, one fails with a uniqueness violation. No row
// means no vote; there is no neutral polarity.
type PostVote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	Upvote    bool      `gorm:"not null" json:"upvote"` // true = upvote, false = downvote
	CreatedAt time.Time `json:"created_at"`
}
