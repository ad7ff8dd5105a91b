package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-tracker-backend/internal/model"
)

const latestKeyPrefix = "fleet:latest:"

// RecordTripPosition persists a sample from the push path. The vehicle must
// have a STARTED assignment with an ON_TRIP trip; the sample is stamped
// with that trip's id. Orphan data is refused.
func (s *gormStore) RecordTripPosition(ctx context.Context, in PushedPosition) (*model.Position, error) {
	var a model.Assignment
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", in.VehicleID, model.AssignmentStarted).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NoActiveTripError{VehicleID: in.VehicleID}
		}
		return nil, storeErr(err)
	}

	var t model.Trip
	err = s.db.WithContext(ctx).
		Where("assignment_id = ? AND status = ?", a.ID, model.TripOnTrip).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NoActiveTripError{VehicleID: in.VehicleID}
		}
		return nil, storeErr(err)
	}

	p := model.Position{
		TripID:    &t.ID,
		VehicleID: in.VehicleID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Speed:     in.Speed,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, storeErr(err)
	}

	s.cacheLatest(ctx, &p)
	return &p, nil
}

// RecordTelemetryPosition persists a device heartbeat sample. No trip is
// required: TripID stays nil and the vehicle's device status is upserted in
// the same transaction. Inserts are commutative, so out-of-order and
// duplicate deliveries from the telemetry channel are harmless.
func (s *gormStore) RecordTelemetryPosition(ctx context.Context, in TelemetryPosition) (*model.Position, error) {
	now := time.Now().UTC()
	p := model.Position{
		VehicleID: in.VehicleID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Speed:     in.Speed,
		Timestamp: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		status := model.DeviceStatus{
			VehicleID: in.VehicleID,
			IsOnline:  true,
			Battery:   in.Battery,
			UpdatedAt: now,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_online", "battery", "updated_at"}),
		}).Create(&status).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.cacheLatest(ctx, &p)
	return &p, nil
}

// LatestPositions returns the newest sample per vehicle. Redis is the fast
// path, but it is only trusted when its key set covers every vehicle that
// has ever reported a position; expired or evicted keys otherwise make
// vehicles vanish from the map. Any gap or failure falls back to the
// authoritative SQL query, and the fallback rewrites the missing entries.
func (s *gormStore) LatestPositions(ctx context.Context) ([]LatestPosition, error) {
	if s.rdb == nil {
		return s.latestFromDB(ctx)
	}

	cached, err := s.latestFromCache(ctx)
	if err != nil {
		log.Printf("latest-position cache read failed, falling back to SQL: %v", err)
		return s.latestFromDB(ctx)
	}

	var tracked int64
	if err := s.db.WithContext(ctx).Model(&model.Position{}).
		Distinct("vehicle_id").Count(&tracked).Error; err != nil {
		return nil, storeErr(err)
	}
	if int64(len(cached)) >= tracked {
		return cached, nil
	}

	latest, err := s.latestFromDB(ctx)
	if err != nil {
		return nil, err
	}
	for _, lp := range latest {
		s.cacheLatestEntry(ctx, lp)
	}
	return latest, nil
}

// latestFromDB picks one row per vehicle by maximum timestamp. Positions
// may be persisted out of arrival order, so ordering is by sample
// timestamp, never by insertion order.
func (s *gormStore) latestFromDB(ctx context.Context) ([]LatestPosition, error) {
	var rows []model.Position
	err := s.db.WithContext(ctx).Raw(`
		SELECT p.* FROM positions p
		JOIN (
			SELECT vehicle_id, MAX(timestamp) AS max_ts
			FROM positions
			GROUP BY vehicle_id
		) l ON p.vehicle_id = l.vehicle_id AND p.timestamp = l.max_ts`).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}

	// Equal-timestamp ties can yield multiple rows per vehicle; keep one.
	seen := make(map[int64]bool, len(rows))
	latest := make([]LatestPosition, 0, len(rows))
	for _, p := range rows {
		if seen[p.VehicleID] {
			continue
		}
		seen[p.VehicleID] = true
		latest = append(latest, LatestPosition{
			VehicleID: p.VehicleID,
			TripID:    p.TripID,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Speed:     p.Speed,
			Timestamp: p.Timestamp,
		})
	}
	return latest, nil
}

func (s *gormStore) latestFromCache(ctx context.Context) ([]LatestPosition, error) {
	var latest []LatestPosition
	iter := s.rdb.Scan(ctx, 0, latestKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var lp LatestPosition
		if err := json.Unmarshal(raw, &lp); err != nil {
			continue
		}
		latest = append(latest, lp)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return latest, nil
}

// cacheLatest writes a freshly persisted sample through to Redis.
func (s *gormStore) cacheLatest(ctx context.Context, p *model.Position) {
	if s.rdb == nil {
		return
	}
	s.cacheLatestEntry(ctx, LatestPosition{
		VehicleID: p.VehicleID,
		TripID:    p.TripID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Speed:     p.Speed,
		Timestamp: p.Timestamp,
	})
}

// cacheLatestEntry stores one latest-position entry, newest timestamp wins.
// Failures are logged and ignored: the cache is never authoritative.
func (s *gormStore) cacheLatestEntry(ctx context.Context, lp LatestPosition) {
	key := fmt.Sprintf("%s%d", latestKeyPrefix, lp.VehicleID)
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var prev LatestPosition
		if json.Unmarshal(raw, &prev) == nil && prev.Timestamp.After(lp.Timestamp) {
			return // stale late arrival
		}
	}

	raw, err := json.Marshal(lp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, 24*time.Hour).Err(); err != nil {
		log.Printf("latest-position cache write failed for vehicle %d: %v", lp.VehicleID, err)
	}
}
