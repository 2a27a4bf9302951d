package model

import (
	"time"
)

// DeviceToken registers a device for push notifications. One row per
// user id; re-registration refreshes the token in place.
type DeviceToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Token      string    `json:"token" gorm:"type:varchar(256);not null"`
	DeviceInfo string    `json:"device_info" gorm:"type:varchar(256)"`
	AppVersion string    `json:"app_version" gorm:"type:varchar(20)"`
	Active     bool      `json:"active" gorm:"default:true"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
