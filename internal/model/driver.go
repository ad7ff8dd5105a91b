package model

import "time"

// Driver represents a driver in the fleet registry.
type Driver struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:128;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
