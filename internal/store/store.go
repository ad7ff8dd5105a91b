package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateAssignment(ctx context.Context, in AssignmentInput) (*model.Assignment, error)
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	StartTrip(ctx context.Context, assignmentID int64) (*model.Trip, error)
	EndTrip(ctx context.Context, in EndTripInput) (*model.Trip, error)

	RecordTripPosition(ctx context.Context, in PushedPosition) (*model.Position, error)
	RecordTelemetryPosition(ctx context.Context, in TelemetryPosition) (*model.Position, error)
	LatestPositions(ctx context.Context) ([]LatestPosition, error)

	ResolveFilterOptions(ctx context.Context, q FilterQuery) (*FilterOptions, error)
	SearchTrips(ctx context.Context, q FilterQuery) ([]model.Trip, int64, error)

	FleetStats(ctx context.Context) (*FleetStats, error)
}

// gormStore implements the Store interface using GORM, with an optional
// Redis client for the latest-position fast path.
type gormStore struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewGormStore creates a new GORM-backed store. rdb may be nil; every read
// that uses it falls back to SQL.
func NewGormStore(db *gorm.DB, rdb *redis.Client) Store {
	return &gormStore{db: db, rdb: rdb}
}

// DB exposes the underlying handle for single-table reference-data reads.
func (s *gormStore) DB() *gorm.DB { return s.db }

// CreateAssignment validates that all four identifiers resolve and inserts
// a PENDING assignment.
func (s *gormStore) CreateAssignment(ctx context.Context, in AssignmentInput) (*model.Assignment, error) {
	if in.DriverID <= 0 || in.VehicleID <= 0 || in.OriginID <= 0 || in.DestinationID <= 0 {
		return nil, &ValidationError{Msg: "driverId, vehicleId, originId and destinationId must be positive"}
	}

	checks := []struct {
		name  string
		id    int64
		model any
	}{
		{"driverId", in.DriverID, &model.Driver{}},
		{"vehicleId", in.VehicleID, &model.Vehicle{}},
		{"originId", in.OriginID, &model.Place{}},
		{"destinationId", in.DestinationID, &model.Place{}},
	}
	for _, chk := range checks {
		var n int64
		if err := s.db.WithContext(ctx).Model(chk.model).Where("id = ?", chk.id).Count(&n).Error; err != nil {
			return nil, storeErr(err)
		}
		if n == 0 {
			return nil, &ValidationError{Msg: "unknown " + chk.name}
		}
	}

	a := model.Assignment{
		DriverID:      in.DriverID,
		VehicleID:     in.VehicleID,
		OriginID:      in.OriginID,
		DestinationID: in.DestinationID,
		Status:        model.AssignmentPending,
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, storeErr(err)
	}
	return &a, nil
}

// ListAssignments returns all assignments with their reference data.
func (s *gormStore) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Preload("Driver").Preload("Vehicle").Preload("Origin").Preload("Destination").
		Order("id").
		Find(&assignments).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return assignments, nil
}

// StartTrip creates a trip from a PENDING assignment and flips the
// assignment to STARTED, both inside one transaction. The partial unique
// indexes on trips back-stop the precondition checks under concurrency: two
// racing calls cannot both insert an ON_TRIP row for the same assignment or
// vehicle.
func (s *gormStore) StartTrip(ctx context.Context, assignmentID int64) (*model.Trip, error) {
	var trip *model.Trip
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Assignment
		if err := tx.First(&a, assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InvalidStateError{Msg: "Invalid assignment"}
			}
			return err
		}
		if a.Status != model.AssignmentPending {
			return &InvalidStateError{Msg: "Assignment already started"}
		}

		var active int64
		if err := tx.Model(&model.Trip{}).
			Where("assignment_id = ? AND status = ?", a.ID, model.TripOnTrip).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return &InvalidStateError{Msg: "Assignment already started"}
		}

		if err := tx.Model(&model.Trip{}).
			Where("vehicle_id = ? AND status = ?", a.VehicleID, model.TripOnTrip).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return &InvalidStateError{Msg: "Vehicle already on a trip"}
		}

		now := time.Now().UTC()
		t := model.Trip{
			AssignmentID:  a.ID,
			DriverID:      a.DriverID,
			VehicleID:     a.VehicleID,
			OriginID:      a.OriginID,
			DestinationID: a.DestinationID,
			Status:        model.TripOnTrip,
			StartTime:     now,
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Assignment{}).Where("id = ?", a.ID).
			Updates(map[string]any{"status": model.AssignmentStarted, "started_at": now}).Error; err != nil {
			return err
		}

		trip = &t
		return nil
	})
	if err != nil {
		var ise *InvalidStateError
		if errors.As(err, &ise) {
			return nil, ise
		}
		if isUniqueViolation(err) {
			// Lost the race against a concurrent start.
			return nil, &InvalidStateError{Msg: uniqueViolationMessage(err)}
		}
		return nil, storeErr(err)
	}
	return trip, nil
}

// EndTrip completes an ON_TRIP trip and recycles its assignment back to
// PENDING in the same transaction.
func (s *gormStore) EndTrip(ctx context.Context, in EndTripInput) (*model.Trip, error) {
	var trip *model.Trip
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Trip
		if err := tx.First(&t, in.TripID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InvalidStateError{Msg: "Invalid trip"}
			}
			return err
		}
		if t.Status != model.TripOnTrip {
			return &InvalidStateError{Msg: "Invalid trip"}
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":   model.TripCompleted,
			"end_time": now,
		}
		if in.DestinationID != nil && *in.DestinationID > 0 {
			updates["destination_id"] = *in.DestinationID
			t.DestinationID = *in.DestinationID
		}
		if in.AvgSpeed != nil {
			updates["avg_speed"] = *in.AvgSpeed
			t.AvgSpeed = in.AvgSpeed
		}
		if err := tx.Model(&model.Trip{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Assignment{}).Where("id = ?", t.AssignmentID).
			Updates(map[string]any{"status": model.AssignmentPending, "started_at": nil}).Error; err != nil {
			return err
		}

		t.Status = model.TripCompleted
		t.EndTime = &now
		trip = &t
		return nil
	})
	if err != nil {
		var ise *InvalidStateError
		if errors.As(err, &ise) {
			return nil, ise
		}
		return nil, storeErr(err)
	}
	return trip, nil
}

// isUniqueViolation matches unique-index errors from both Postgres and
// SQLite without driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// uniqueViolationMessage picks the precondition answer matching the index
// that fired. Postgres names the index, SQLite names the column.
func uniqueViolationMessage(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "idx_trips_active_vehicle") || strings.Contains(msg, "trips.vehicle_id") {
		return "Vehicle already on a trip"
	}
	return "Assignment already started"
}
