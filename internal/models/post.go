package models

import (
	"time"
)

// Post is one ingested submission: an optional title plus an ordered list of
// URL associations, owned by exactly one bucket. Title is nil when the parser
// found no non-URL line; that is a valid, permanent state.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     *string   `json:"title"`
	OwnerID   uint      `gorm:"not null;index" json:"ownerId"`
	Owner     User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner"`
	PromptID  *uint     `json:"promptId"`
	Prompt    *Prompt   `gorm:"foreignKey:PromptID" json:"-"`
	URLs      []PostURL `gorm:"foreignKey:PostID" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
