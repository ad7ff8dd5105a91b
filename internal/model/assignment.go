package model

import "time"

// Assignment statuses. An assignment is STARTED exactly while one trip
// created from it is ON_TRIP; ending that trip returns it to PENDING so the
// same driver/vehicle/route pairing can be dispatched again.
const (
	AssignmentPending = "PENDING"
	AssignmentStarted = "STARTED"
)

// Assignment is a standing pairing of driver, vehicle, origin and
// destination, reusable across trip cycles.
type Assignment struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	DriverID      int64      `gorm:"index;not null" json:"driverId"`
	VehicleID     int64      `gorm:"index;not null" json:"vehicleId"`
	OriginID      int64      `gorm:"not null" json:"originId"`
	DestinationID int64      `gorm:"not null" json:"destinationId"`
	Status        string     `gorm:"size:16;not null;default:PENDING" json:"status"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"-"`
	UpdatedAt     time.Time  `gorm:"not null" json:"-"`

	// Associations
	Driver      Driver  `gorm:"foreignKey:DriverID" json:"driver"`
	Vehicle     Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle"`
	Origin      Place   `gorm:"foreignKey:OriginID" json:"origin"`
	Destination Place   `gorm:"foreignKey:DestinationID" json:"destination"`
}
