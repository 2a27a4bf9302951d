package model

import (
	"time"
)

// Deal is a promotional offer owned by one exhibitor, same ownership
// lifecycle as Video.
type Deal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExhibitorID uint      `json:"exhibitor_id" gorm:"index;not null"`
	Image       string    `json:"image" gorm:"type:varchar(200);uniqueIndex;not null"`
	Title       string    `json:"title" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:varchar(256);not null"`
	Status      int       `json:"status" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Exhibitor Exhibitor `json:"exhibitor,omitempty" gorm:"foreignKey:ExhibitorID"`
}
