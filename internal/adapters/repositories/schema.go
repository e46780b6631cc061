package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the scheduling tables. The DDL is valid for both SQLite
// and Postgres; timestamps are stored as unix seconds.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`

	createWorkingHoursQuery := `
	CREATE TABLE IF NOT EXISTS working_hours (
		walker_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		timezone TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (walker_id, day_of_week)
	);
	`

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		walker_id TEXT NOT NULL,
		location_id TEXT REFERENCES locations(id),
		starts_at BIGINT NOT NULL,
		ends_at BIGINT NOT NULL,
		service_minutes INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'confirmed'
	);
	`

	createBlocksQuery := `
	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		walker_id TEXT NOT NULL,
		starts_at BIGINT NOT NULL,
		ends_at BIGINT NOT NULL,
		reason TEXT NOT NULL DEFAULT ''
	);
	`

	createTravelCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
		origin_location_id TEXT NOT NULL,
		destination_location_id TEXT NOT NULL,
		travel_seconds INTEGER NOT NULL,
		distance_meters INTEGER NOT NULL,
		calculated_at BIGINT NOT NULL,
		PRIMARY KEY (origin_location_id, destination_location_id)
	);
	`

	createBookingsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bookings_walker_starts
	ON bookings(walker_id, starts_at);
	`

	createBlocksIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_blocks_walker_starts
	ON blocks(walker_id, starts_at);
	`

	statements := []string{
		createLocationsQuery,
		createWorkingHoursQuery,
		createBookingsQuery,
		createBlocksQuery,
		createTravelCacheQuery,
		createBookingsIndexQuery,
		createBlocksIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
