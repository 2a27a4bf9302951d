package model

import (
	"time"
)

// Visitor represents an anonymous app install identified by an opaque
// token. Visitors are the root of the authentication chain and are
// never deleted by normal flows.
type Visitor struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Token       string    `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	AddressIP   string    `json:"address_ip" gorm:"type:varchar(45);not null"`
	CountryCode string    `json:"country_code" gorm:"type:varchar(2);not null"`
	VisitCount  int       `json:"visit_count" gorm:"default:1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
