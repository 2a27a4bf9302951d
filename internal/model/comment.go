package model

import (
	"time"
)

// Comment is an authored text attached to a video, created, edited and
// deleted independently by its author.
type Comment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExhibitorID uint      `json:"exhibitor_id" gorm:"index;not null"`
	VideoID     uint      `json:"video_id" gorm:"index;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Exhibitor Exhibitor `json:"exhibitor,omitempty" gorm:"foreignKey:ExhibitorID"`
	Video     Video     `json:"video,omitempty" gorm:"foreignKey:VideoID"`
}
