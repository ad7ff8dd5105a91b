package model

import "time"

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"` // plate or fleet name
	DeviceID  *string   `gorm:"size:64" json:"deviceId,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
