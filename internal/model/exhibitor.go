package model

import (
	"time"
)

// Exhibitor permission levels
const (
	LevelPlain         = 0 // registered, not validated
	LevelValidated     = 1 // validated, cannot publish
	LevelPublisher     = 2 // validated, can publish
	LevelAdministrator = 3
)

// Exhibitor is a salon-scoped principal that owns content and performs
// social interactions. Email, username and display name carry unique
// indexes across the whole store, not per category.
type Exhibitor struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CategoryID uint   `json:"category_id" gorm:"index;not null"`
	Email      string `json:"email" gorm:"type:varchar(256);uniqueIndex;not null"`
	Username   string `json:"username" gorm:"type:varchar(256);uniqueIndex;not null"`
	Password   string `json:"-" gorm:"type:varchar(255);not null"`
	Name       string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Profile    string `json:"profile" gorm:"type:varchar(256)"`
	Cover      string `json:"cover" gorm:"type:varchar(256)"`
	Location   string `json:"location" gorm:"type:varchar(256)"`
	Bio        string `json:"bio" gorm:"type:varchar(256)"`
	Phone      string `json:"phone_number" gorm:"type:varchar(20)"`
	Linkedin   string `json:"linkedin_link" gorm:"type:varchar(256)"`
	Facebook   string `json:"facebook_link" gorm:"type:varchar(256)"`
	Instagram  string `json:"insta_link" gorm:"type:varchar(256)"`
	Weblink    string `json:"weblink" gorm:"type:varchar(256)"`
	// Level: 0 plain, 1 validated without publication, 2 validated with
	// publication, 3 administrator.
	Level     int       `json:"level" gorm:"not null;default:0"`
	Active    int       `json:"active" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the exhibitor holds the administrator level
func (e *Exhibitor) IsAdmin() bool {
	return e.Level == LevelAdministrator
}
