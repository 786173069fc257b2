package models

import (
	"time"
)

// PointLog is the audit trail for reward grants. The points balance on User
// stays authoritative; these rows exist so grants can be traced.
type PointLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
