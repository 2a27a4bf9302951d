package model

import (
	"time"
)

// Category groups exhibitors inside one salon deployment. The color
// pair is display metadata consumed by the mobile client.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Color       string    `json:"color" gorm:"type:varchar(7)"`
	BorderColor string    `json:"border_color" gorm:"type:varchar(7)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
