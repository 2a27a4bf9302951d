package model

import (
	"time"
)

// Video is a content post owned by exactly one exhibitor. Ownership is
// never reassigned; deleting the owner cascades to the video and its
// likes and comments.
type Video struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExhibitorID uint      `json:"exhibitor_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:varchar(256);not null"`
	Status      int       `json:"status" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Exhibitor Exhibitor `json:"exhibitor,omitempty" gorm:"foreignKey:ExhibitorID"`
}
