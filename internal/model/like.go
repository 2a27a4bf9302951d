package model

import (
	"time"
)

// Like is a presence/absence fact per (exhibitor, video) pair. The
// composite unique index is the only concurrency-safety mechanism for
// the toggle path: a racing double insert fails on the index instead of
// producing duplicates.
type Like struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExhibitorID uint      `json:"exhibitor_id" gorm:"uniqueIndex:idx_like_pair;not null"`
	VideoID     uint      `json:"video_id" gorm:"uniqueIndex:idx_like_pair;index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Exhibitor Exhibitor `json:"exhibitor,omitempty" gorm:"foreignKey:ExhibitorID"`
	Video     Video     `json:"video,omitempty" gorm:"foreignKey:VideoID"`
}
