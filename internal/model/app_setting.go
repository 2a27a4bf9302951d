package model

import (
	"time"
)

// Well-known AppSetting keys
const (
	SettingVersionCode = "version_code"
)

// AppSetting is a key/value row for global app state, e.g. the version
// counter bumped when the active salon switches.
type AppSetting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"type:varchar(50);uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"type:varchar(256);not null"`
	Status    int       `json:"status" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
