package model

import (
	"time"
)

// UnifiedLike lives only on the central aggregation server. It
// references exhibitor and video by opaque string id rather than a
// foreign key, since the referenced rows live in another salon's
// store, and carries denormalized display snapshots so reads never
// join back across deployments. Snapshots are immutable once written.
type UnifiedLike struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ExhibitorID string `json:"exhibitor_id" gorm:"type:varchar(64);uniqueIndex:idx_unified_like_pair;index;not null"`
	VideoID     string `json:"video_id" gorm:"type:varchar(64);uniqueIndex:idx_unified_like_pair;index;not null"`
	SalonOrigin string `json:"salon_origin" gorm:"type:varchar(20);index;not null"`

	// Exhibitor snapshot
	ExhibitorName    string `json:"exhibitor_name" gorm:"type:varchar(100)"`
	ExhibitorProfile string `json:"exhibitor_profile" gorm:"type:varchar(256)"`

	// Video snapshot
	VideoDescription string `json:"video_description" gorm:"type:varchar(256)"`
	VideoOwner       string `json:"video_owner" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
