package models

import (
	"time"
)

// Metadata enrichment states. PENDING transitions to SUCCESS or FAILED once
// per enrichment attempt; re-ingesting an existing URL resets it to PENDING.
const (
	MetadataPending = "PENDING"
	MetadataSuccess = "SUCCESS"
	MetadataFailed  = "FAILED"
)

// URL is the canonical record for one link, keyed by its canonicalized
// string. The same row is shared by every post that references the URL.
type URL struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	URL            string    `gorm:"uniqueIndex;not null" json:"url"`
	Domain         string    `gorm:"index" json:"domain"`
	Title          *string   `json:"title"`
	Description    *string   `gorm:"type:text" json:"description"`
	Image1         *string   `json:"image1"`
	MetadataStatus string    `gorm:"size:10;default:'PENDING';not null;index" json:"metadataStatus"`
	Saves          int       `gorm:"default:0;not null" json:"saves"` // never negative
	Clicks         int       `gorm:"default:0;not null" json:"clicks"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PostURL links a post to a URL and records the URL's stable position within
// the post, zero-based.
type PostURL struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PostID   uint `gorm:"not null;index" json:"postId"`
	URLID    uint `gorm:"not null;index" json:"urlId"`
	Position int  `gorm:"not null;default:0" json:"order"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	URL  URL  `gorm:"foreignKey:URLID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
