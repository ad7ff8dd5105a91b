package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"fleet-tracker-backend/internal/model"
)

// FleetStats derives the dashboard snapshot from the latest known sample
// per vehicle: idle (speed 0), on trip (speed above 0), and the fleet
// average speed rounded to one decimal. Completed-trip counts and the mean
// trip duration come from the trip table.
func (s *gormStore) FleetStats(ctx context.Context) (*FleetStats, error) {
	stats := &FleetStats{
		AvgTripDuration: "-",
		OnTime:          "-",
		Delay:           "-",
		Early:           "-",
	}

	latest, err := s.latestFromDB(ctx)
	if err != nil {
		return nil, err
	}

	var sum float64
	for _, lp := range latest {
		speed := 0.0
		if lp.Speed != nil {
			speed = *lp.Speed
		}
		if speed > 0 {
			stats.OnTrip++
		} else {
			stats.Idle++
		}
		sum += speed
	}
	if n := len(latest); n > 0 {
		stats.AvgSpeed = math.Round(sum/float64(n)*10) / 10
	}

	if err := s.db.WithContext(ctx).Model(&model.Trip{}).
		Where("status = ?", model.TripCompleted).
		Count(&stats.Completed).Error; err != nil {
		return nil, storeErr(err)
	}

	// Durations are computed here rather than in SQL; timestamp arithmetic
	// is not portable between Postgres and SQLite.
	var completed []model.Trip
	if err := s.db.WithContext(ctx).Model(&model.Trip{}).
		Select("start_time", "end_time").
		Where("status = ? AND end_time IS NOT NULL", model.TripCompleted).
		Find(&completed).Error; err != nil {
		return nil, storeErr(err)
	}
	if len(completed) > 0 {
		var total time.Duration
		for _, t := range completed {
			total += t.EndTime.Sub(t.StartTime)
		}
		mean := total / time.Duration(len(completed))
		stats.AvgTripDuration = fmt.Sprintf("%dm", int(mean.Minutes()))
	}

	return stats, nil
}
