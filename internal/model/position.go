package model

import "time"

// Position is a single timestamped GPS/speed sample for a vehicle.
// Append-only: positions are never updated or deleted. TripID is set by the
// trip-scoped push path and left nil by the telemetry path.
type Position struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	TripID    *int64    `gorm:"index" json:"tripId,omitempty"`
	VehicleID int64     `gorm:"index;not null" json:"vehicleId"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Speed     *float64  `json:"speed,omitempty"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}
