package model

import "time"

// DeviceStatus is the device heartbeat record upserted by the telemetry
// path. One row per vehicle.
type DeviceStatus struct {
	VehicleID int64     `gorm:"primaryKey" json:"vehicleId"`
	IsOnline  bool      `gorm:"not null" json:"isOnline"`
	Battery   *float64  `json:"battery,omitempty"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
