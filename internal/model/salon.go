package model

import (
	"time"
)

// Salon describes one event instance. At most one row has
// IsActive=true; switching is done inside a transaction so readers
// never observe zero active salons after a successful switch.
type Salon struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	IsActive  bool      `json:"is_active" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
