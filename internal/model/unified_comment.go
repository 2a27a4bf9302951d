package model

import (
	"time"
)

// UnifiedComment is the append-only, central copy of comments from all
// salons, tagged with their origin. Same snapshot rules as UnifiedLike.
type UnifiedComment struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ExhibitorID string `json:"exhibitor_id" gorm:"type:varchar(64);index;not null"`
	VideoID     string `json:"video_id" gorm:"type:varchar(64);index;not null"`
	Content     string `json:"content" gorm:"type:varchar(1000);not null"`
	SalonOrigin string `json:"salon_origin" gorm:"type:varchar(20);index;not null"`

	ExhibitorName    string `json:"exhibitor_name" gorm:"type:varchar(100)"`
	ExhibitorProfile string `json:"exhibitor_profile" gorm:"type:varchar(256)"`
	VideoDescription string `json:"video_description" gorm:"type:varchar(256)"`
	VideoOwner       string `json:"video_owner" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
