package store

import "time"

// AssignmentInput carries the four identifiers of a new assignment.
type AssignmentInput struct {
	DriverID      int64
	VehicleID     int64
	OriginID      int64
	DestinationID int64
}

// EndTripInput closes out a trip. DestinationID and AvgSpeed overwrite the
// trip's values when supplied.
type EndTripInput struct {
	TripID        int64
	DestinationID *int64
	AvgSpeed      *float64
}

// PushedPosition is a trip-scoped sample from the HTTP push path.
type PushedPosition struct {
	VehicleID int64
	Latitude  float64
	Longitude float64
	Speed     *float64
}

// TelemetryPosition is a best-effort device heartbeat sample. It is never
// validated against trip state.
type TelemetryPosition struct {
	VehicleID int64
	Latitude  float64
	Longitude float64
	Speed     *float64
	Battery   *float64
}

// FilterQuery carries the raw cascade filter selections from the search UI.
type FilterQuery struct {
	DateType        string
	DateValue       string
	DriverName      string
	OriginName      string
	DestinationName string
}

// DriverOption is one selectable driver in the cascade result.
type DriverOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PlaceOption is one selectable origin or destination in the cascade result.
type PlaceOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// FilterOptions is the full cascade result. All three lists are always
// present, each possibly empty.
type FilterOptions struct {
	Drivers      []DriverOption `json:"drivers"`
	Origins      []PlaceOption  `json:"origins"`
	Destinations []PlaceOption  `json:"destinations"`
}

// FleetStats is the dashboard snapshot derived from the latest position per
// vehicle. OnTime/Delay/Early stay "-" until trips carry schedule data to
// classify against.
type FleetStats struct {
	Idle            int     `json:"idle"`
	OnTrip          int     `json:"onTrip"`
	Completed       int64   `json:"completed"`
	AvgSpeed        float64 `json:"avgSpeed"`
	AvgTripDuration string  `json:"avgTripDuration"`
	OnTime          string  `json:"onTime"`
	Delay           string  `json:"delay"`
	Early           string  `json:"early"`
}

// LatestPosition is the newest known sample for one vehicle.
type LatestPosition struct {
	VehicleID int64     `json:"vehicleId"`
	TripID    *int64    `json:"tripId,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     *float64  `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
