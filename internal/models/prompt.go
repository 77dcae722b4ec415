package models

import (
	"time"
)

// Prompt is the immutable record of one raw text submission. Editing a post
// rewrites its prompt's raw text; creating a post always creates a new prompt.
type Prompt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RawText   string    `gorm:"type:text;not null" json:"rawText"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
