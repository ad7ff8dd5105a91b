package model

import (
	"fmt"
	"time"
)

// Place kinds. A place may serve as an origin, a destination, or both.
const (
	PlaceOrigin      = "origin"
	PlaceDestination = "destination"
	PlaceBoth        = "both"
)

// Place is reference data for trip origins and destinations.
type Place struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:128;not null" json:"name"`
	City      string    `gorm:"size:128" json:"city"`
	Kind      string    `gorm:"size:16;not null;default:both" json:"kind"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

// Label renders the display form used by the search UI, "Name (City)".
func (p Place) Label() string {
	if p.City == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.City)
}
