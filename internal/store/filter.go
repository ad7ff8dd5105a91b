package store

import (
	"context"
	"log"

	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
	"fleet-tracker-backend/internal/parse"
)

// nameSelections carries the ids resolved from the display names a filter
// query arrives with. An unknown name resolves to id 0, which matches no
// trips; "no results" is the right answer for a stale dropdown value.
type nameSelections struct {
	driver    int64
	origin    int64
	dest      int64
	hasDriver bool
	hasOrigin bool
	hasDest   bool
}

func (s *gormStore) resolveSelections(ctx context.Context, q FilterQuery) (nameSelections, error) {
	var sel nameSelections
	var err error
	if q.DriverName != "" {
		sel.hasDriver = true
		if sel.driver, err = s.resolveDriverID(ctx, q.DriverName); err != nil {
			return sel, err
		}
	}
	if q.OriginName != "" {
		sel.hasOrigin = true
		if sel.origin, err = s.resolvePlaceID(ctx, q.OriginName); err != nil {
			return sel, err
		}
	}
	if q.DestinationName != "" {
		sel.hasDest = true
		if sel.dest, err = s.resolvePlaceID(ctx, q.DestinationName); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

// resolveDriverID maps a driver display name, possibly in its decorated
// "Name (City)" form, back to an id. Duplicate names resolve to the lowest
// id.
func (s *gormStore) resolveDriverID(ctx context.Context, name string) (int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&model.Driver{}).
		Where("name = ? OR name = ?", parse.StripCitySuffix(name), name).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	res := parse.ResolveIDs(ids)
	if res.State == parse.Ambiguous {
		log.Printf("driver name %q is ambiguous (%d matches), using id %d", name, len(res.Candidates), res.ID)
	}
	return res.ID, nil
}

// resolvePlaceID maps a place display name, either bare or in its
// "Name (City)" label form, back to an id.
func (s *gormStore) resolvePlaceID(ctx context.Context, name string) (int64, error) {
	var places []model.Place
	err := s.db.WithContext(ctx).
		Where("name = ? OR name = ?", parse.StripCitySuffix(name), name).
		Order("id").
		Find(&places).Error
	if err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(places))
	for _, p := range places {
		if p.Name == name || p.Label() == name {
			ids = append(ids, p.ID)
		}
	}

	res := parse.ResolveIDs(ids)
	if res.State == parse.Ambiguous {
		log.Printf("place name %q is ambiguous (%d matches), using id %d", name, len(res.Candidates), res.ID)
	}
	return res.ID, nil
}

// ResolveFilterOptions computes the three dependent dropdown option lists:
// drivers first, then origins narrowed by the chosen driver, then
// destinations narrowed by both. Each later level is only computed when the
// previous one is non-empty. "No results" is never an error.
func (s *gormStore) ResolveFilterOptions(ctx context.Context, q FilterQuery) (*FilterOptions, error) {
	rng, scoped := parse.DateRange(q.DateType, q.DateValue)

	opts := &FilterOptions{
		Drivers:      []DriverOption{},
		Origins:      []PlaceOption{},
		Destinations: []PlaceOption{},
	}

	sel, err := s.resolveSelections(ctx, q)
	if err != nil {
		return nil, storeErr(err)
	}

	if err := s.cascadeDrivers(ctx, q, rng, scoped, opts); err != nil {
		return nil, storeErr(err)
	}
	if len(opts.Drivers) == 0 {
		return opts, nil
	}

	if err := s.cascadeOrigins(ctx, sel, rng, scoped, opts); err != nil {
		return nil, storeErr(err)
	}
	if len(opts.Origins) == 0 {
		return opts, nil
	}

	if err := s.cascadeDestinations(ctx, sel, rng, scoped, opts); err != nil {
		return nil, storeErr(err)
	}
	return opts, nil
}

// cascadeDrivers fills the driver level. For the "current" bucket every
// driver is selectable; otherwise only drivers with at least one trip
// matching the date predicate appear.
func (s *gormStore) cascadeDrivers(ctx context.Context, q FilterQuery, rng parse.Range, scoped bool, opts *FilterOptions) error {
	if q.DateType == parse.DateTypeCurrent || q.DateType == "" {
		return s.db.WithContext(ctx).Model(&model.Driver{}).
			Select("id", "name").Order("name").
			Scan(&opts.Drivers).Error
	}

	tx := s.db.WithContext(ctx).Model(&model.Trip{}).
		Joins("JOIN drivers ON drivers.id = trips.driver_id").
		Distinct("drivers.id", "drivers.name").
		Order("drivers.name")
	if scoped {
		tx = tx.Where("trips.start_time BETWEEN ? AND ?", rng.Start, rng.End)
	}
	return tx.Scan(&opts.Drivers).Error
}

func (s *gormStore) cascadeOrigins(ctx context.Context, sel nameSelections, rng parse.Range, scoped bool, opts *FilterOptions) error {
	tx := s.db.WithContext(ctx).Model(&model.Trip{}).
		Joins("JOIN places ON places.id = trips.origin_id").
		Distinct("places.id", "places.name", "places.city").
		Order("places.name")
	if scoped {
		tx = tx.Where("trips.start_time BETWEEN ? AND ?", rng.Start, rng.End)
	}
	if sel.hasDriver {
		tx = tx.Where("trips.driver_id = ?", sel.driver)
	}
	return tx.Scan(&opts.Origins).Error
}

func (s *gormStore) cascadeDestinations(ctx context.Context, sel nameSelections, rng parse.Range, scoped bool, opts *FilterOptions) error {
	tx := s.db.WithContext(ctx).Model(&model.Trip{}).
		Joins("JOIN places ON places.id = trips.destination_id").
		Distinct("places.id", "places.name", "places.city").
		Where("trips.destination_id > 0"). // unassigned placeholders
		Order("places.name")
	if scoped {
		tx = tx.Where("trips.start_time BETWEEN ? AND ?", rng.Start, rng.End)
	}
	if sel.hasDriver {
		tx = tx.Where("trips.driver_id = ?", sel.driver)
	}
	if sel.hasOrigin {
		tx = tx.Where("trips.origin_id = ?", sel.origin)
	}
	return tx.Scan(&opts.Destinations).Error
}

// SearchTrips returns trips matching the same predicates the cascade uses,
// with reference data preloaded, newest first.
func (s *gormStore) SearchTrips(ctx context.Context, q FilterQuery) ([]model.Trip, int64, error) {
	sel, err := s.resolveSelections(ctx, q)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	var count int64
	if err := s.tripQuery(ctx, q, sel).Count(&count).Error; err != nil {
		return nil, 0, storeErr(err)
	}

	var trips []model.Trip
	err = s.tripQuery(ctx, q, sel).
		Preload("Driver").Preload("Vehicle").Preload("Origin").Preload("Destination").
		Order("trips.start_time DESC").
		Find(&trips).Error
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return trips, count, nil
}

// tripQuery builds a fresh filtered trip query. Built per call because gorm
// statements are consumed by Count/Find.
func (s *gormStore) tripQuery(ctx context.Context, q FilterQuery, sel nameSelections) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&model.Trip{})
	if rng, scoped := parse.DateRange(q.DateType, q.DateValue); scoped {
		tx = tx.Where("trips.start_time BETWEEN ? AND ?", rng.Start, rng.End)
	}
	if sel.hasDriver {
		tx = tx.Where("trips.driver_id = ?", sel.driver)
	}
	if sel.hasOrigin {
		tx = tx.Where("trips.origin_id = ?", sel.origin)
	}
	if sel.hasDest {
		tx = tx.Where("trips.destination_id = ?", sel.dest)
	}
	return tx
}
