package db

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
)

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gormDB, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, Migrate(gormDB))
	return gormDB
}

func onTrip(assignmentID, vehicleID int64) model.Trip {
	return model.Trip{
		AssignmentID: assignmentID, DriverID: 7, VehicleID: vehicleID,
		OriginID: 1, DestinationID: 2,
		Status: model.TripOnTrip, StartTime: time.Now().UTC(),
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	gormDB := newMigratedDB(t)
	assert.NoError(t, Migrate(gormDB))
}

func TestActiveTripIndexes(t *testing.T) {
	t.Run("one active trip per vehicle", func(t *testing.T) {
		gormDB := newMigratedDB(t)

		first := onTrip(1, 3)
		require.NoError(t, gormDB.Create(&first).Error)

		second := onTrip(2, 3)
		assert.Error(t, gormDB.Create(&second).Error)
	})

	t.Run("one active trip per assignment", func(t *testing.T) {
		gormDB := newMigratedDB(t)

		first := onTrip(1, 3)
		require.NoError(t, gormDB.Create(&first).Error)

		second := onTrip(1, 4)
		assert.Error(t, gormDB.Create(&second).Error)
	})

	t.Run("completed trips are exempt", func(t *testing.T) {
		gormDB := newMigratedDB(t)

		end := time.Now().UTC()
		done := onTrip(1, 3)
		done.Status = model.TripCompleted
		done.EndTime = &end
		require.NoError(t, gormDB.Create(&done).Error)

		// Same vehicle and same assignment may go back on the road.
		next := onTrip(1, 3)
		assert.NoError(t, gormDB.Create(&next).Error)
	})
}
