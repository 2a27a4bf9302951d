package model

import (
	"time"
)

// Session state values for Login records
const (
	SessionInvalid = 0
	SessionValid   = 1
)

// Login binds a Visitor to an authenticated Exhibitor. A new record is
// created per signup/login; records are never updated in place, so a
// visitor accumulates one row per auth event and the newest valid row
// represents the current login state.
type Login struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	VisitorID   uint      `json:"visitor_id" gorm:"index;not null"`
	ExhibitorID uint      `json:"exhibitor_id" gorm:"index;not null"`
	Session     int       `json:"session" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Visitor   Visitor   `json:"-" gorm:"foreignKey:VisitorID"`
	Exhibitor Exhibitor `json:"-" gorm:"foreignKey:ExhibitorID"`
}
