package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-tracker-backend/config"
	"fleet-tracker-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	// Trips keep destination_id = 0 as the unassigned placeholder, which a
	// generated foreign key would reject.
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs AutoMigrate for all models plus the constraint DDL that
// AutoMigrate cannot express. Exported so tests can migrate an in-memory
// database the same way the daemon does.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Vehicle{},
		&model.Driver{},
		&model.Place{},
		&model.Assignment{},
		&model.Trip{},
		&model.Position{},
		&model.DeviceStatus{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if err := applyConstraintDDL(db); err != nil {
		return err
	}
	return nil
}

// applyConstraintDDL creates the partial unique indexes that back the
// single-active-trip invariants: at most one ON_TRIP trip per vehicle, and
// at most one ON_TRIP trip per assignment. Completed trips are exempt so an
// assignment can be recycled across trip cycles. The WHERE form is valid on
// both Postgres and SQLite.
func applyConstraintDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_trips_active_vehicle ON trips (vehicle_id) WHERE status = 'ON_TRIP';",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_trips_active_assignment ON trips (assignment_id) WHERE status = 'ON_TRIP';",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
