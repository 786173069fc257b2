package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"` // case-sensitive login key
	Email     string    `gorm:"size:255;not null" json:"email"`
	Password  string    `gorm:"size:512;not null" json:"-"` // bcrypt hash
	Points    int       `gorm:"default:0" json:"points"`
	Level     int       `gorm:"default:0" json:"level"` // points / 20, never decremented
	Admin     bool      `gorm:"default:false" json:"admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Hard delete only. Removing an account walks posts and votes explicitly,
	// see PostService.DeleteUser.
}
