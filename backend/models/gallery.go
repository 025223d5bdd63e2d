package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Moderation states of a saved gallery item. Private items skip moderation.
const (
	StatusPrivate  = "private"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// SavedItem is a CSS tool output (gradient, shadow, layout...) a user saved to the gallery.
// Only approved items are visible to other users.
type SavedItem struct {
	gorm.Model
	OwnerID        uint           `gorm:"index;not null" json:"owner_id"`
	OwnerName      string         `json:"owner_name"`
	Title          string         `gorm:"not null" json:"title"`
	Tool           string         `gorm:"index;not null" json:"tool"` // gradient, box-shadow, flexbox, grid, ...
	CSS            string         `gorm:"type:text;not null" json:"css"`
	Params         datatypes.JSON `json:"params"`
	Public         bool           `json:"public"`
	Status         string         `gorm:"index;default:pending" json:"status"`
	ModerationNote string         `json:"moderation_note,omitempty"`
	ModeratedBy    *uint          `json:"moderated_by,omitempty"`
}
