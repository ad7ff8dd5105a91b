package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestPositionsCache(t *testing.T) {
	gormDB, _ := newTestStore(t)
	seedRefData(t, gormDB)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewGormStore(gormDB, rdb)
	ctx := context.Background()

	t.Run("writes through on ingest", func(t *testing.T) {
		_, err := s.RecordTelemetryPosition(ctx, TelemetryPosition{
			VehicleID: 3, Latitude: -6.2, Longitude: 106.8, Speed: floatPtr(15),
		})
		require.NoError(t, err)
		assert.True(t, mr.Exists("fleet:latest:3"))
	})

	t.Run("serves reads from the cache", func(t *testing.T) {
		latest, err := s.LatestPositions(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, int64(3), latest[0].VehicleID)
		require.NotNil(t, latest[0].Speed)
		assert.Equal(t, 15.0, *latest[0].Speed)
	})

	t.Run("falls back to SQL when the cache is unreachable", func(t *testing.T) {
		mr.SetError("connection refused")
		defer mr.SetError("")

		latest, err := s.LatestPositions(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, int64(3), latest[0].VehicleID)
	})

	t.Run("newest sample wins the cache slot", func(t *testing.T) {
		_, err := s.RecordTelemetryPosition(ctx, TelemetryPosition{
			VehicleID: 3, Latitude: -6.3, Longitude: 106.9, Speed: floatPtr(22),
		})
		require.NoError(t, err)

		latest, err := s.LatestPositions(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 1)
		require.NotNil(t, latest[0].Speed)
		assert.Equal(t, 22.0, *latest[0].Speed)
	})

	t.Run("an expired key does not hide its vehicle", func(t *testing.T) {
		_, err := s.RecordTelemetryPosition(ctx, TelemetryPosition{
			VehicleID: 4, Latitude: -6.9, Longitude: 107.6, Speed: floatPtr(30),
		})
		require.NoError(t, err)

		// Simulate TTL expiry of one vehicle's entry.
		mr.Del("fleet:latest:4")

		latest, err := s.LatestPositions(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 2)

		byVehicle := make(map[int64]LatestPosition, len(latest))
		for _, lp := range latest {
			byVehicle[lp.VehicleID] = lp
		}
		require.Contains(t, byVehicle, int64(4))
		require.NotNil(t, byVehicle[4].Speed)
		assert.Equal(t, 30.0, *byVehicle[4].Speed)

		// The fallback rewrites the missing entry.
		assert.True(t, mr.Exists("fleet:latest:4"))
	})
}
