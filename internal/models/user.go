package models

import (
	"time"
)

// Bucket types
const (
	UserTypeSystem = "system"
	UserTypeUser   = "user"
)

// User is a bucket: a personal link collection identified by a unique
// username slug. Buckets are created lazily on first ingestion under a new
// slug; there is no account or password attached to them.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Title       *string   `json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Image1      *string   `json:"image1"`
	Image2      *string   `json:"image2"`
	Color1      string    `gorm:"size:7;not null" json:"color1"`
	Color2      string    `gorm:"size:7;not null" json:"color2"`
	Type        string    `gorm:"size:20;default:'user';not null" json:"type"` // system, user
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
