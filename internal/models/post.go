package models

import (
	"time"
)

type Post struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// New posts start hidden (draft) and become visible on publish.
	// CreateDraft sets this explicitly; no column default, a `default` tag
	// would make gorm omit the field on create whenever it is false.
	Hidden bool `gorm:"not null" json:"hidden"`

	// Recipe payload produced by the generation agent.
	Title    string `gorm:"not null" json:"title"`
	Message  string `gorm:"type:text;not null" json:"message"`
	ImageURL string `json:"image_url"`
	VideoURL string `json:"video_url"`

	// Ordering key. Re-stamped on publish so published posts sort by
	// publish time, not draft creation time.
	DatePosted time.Time `gorm:"index;not null" json:"date_posted"`

	// Uploaded completion photo, one per post at a time.
	ImageID *string `gorm:"size:36;uniqueIndex" json:"image_id"`

	// Photo rating in [1,5], set by the rating workflow.
	Rating *float64 `json:"rating"`

	// Derived score: upvotes minus downvotes over post_votes. Only the vote
	// service writes this, inside the same transaction as the vote mutation.
	Votes int `gorm:"default:0;not null" json:"votes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
