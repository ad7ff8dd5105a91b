package model

import "time"

// Trip statuses. COMPLETED is terminal; there is no reopen path.
const (
	TripOnTrip    = "ON_TRIP"
	TripCompleted = "COMPLETED"
)

// Trip is one concrete execution of an Assignment, bounded by start and end
// timestamps. Driver/vehicle/origin/destination are copied from the
// assignment at start time so history stays attributable after the
// assignment is recycled.
type Trip struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	AssignmentID  int64      `gorm:"index;not null" json:"assignmentId"`
	DriverID      int64      `gorm:"index;not null" json:"driverId"`
	VehicleID     int64      `gorm:"index;not null" json:"vehicleId"`
	OriginID      int64      `gorm:"not null" json:"originId"`
	DestinationID int64      `gorm:"not null" json:"destinationId"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	StartTime     time.Time  `gorm:"not null;index" json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	AvgSpeed      *float64   `json:"avgSpeed,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"-"`
	UpdatedAt     time.Time  `gorm:"not null" json:"-"`

	// Associations
	Driver      Driver  `gorm:"foreignKey:DriverID" json:"driver"`
	Vehicle     Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle"`
	Origin      Place   `gorm:"foreignKey:OriginID" json:"origin"`
	Destination Place   `gorm:"foreignKey:DestinationID" json:"destination"`
}
