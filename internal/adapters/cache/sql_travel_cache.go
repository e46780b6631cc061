package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/db"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/obs"
)

// SQLTravelCache is a SQL-backed cache of travel times keyed by a symmetric
// location pair. Works on SQLite and Postgres.
type SQLTravelCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLTravelCache(conn *sql.DB, dialect db.Dialect) *SQLTravelCache {
	return &SQLTravelCache{DB: conn, Dialect: dialect}
}

// Fetch the cached travel time for a location pair.
func (s *SQLTravelCache) Get(
	ctx context.Context,
	pair domain.LocationPair,
) (_ domain.TravelCacheEntry, _ bool, err error) {
	defer obs.Time(ctx, "travel.cache.Get")(&err)

	if s.DB == nil {
		return domain.TravelCacheEntry{}, false, errors.New("travel cache: db is nil")
	}

	if pair.A == "" || pair.B == "" {
		return domain.TravelCacheEntry{}, false, errors.New("get travel cache: location ids must not be empty")
	}

	q := `
	SELECT travel_seconds, distance_meters, calculated_at
	FROM travel_time_cache
	WHERE origin_location_id = ?
		AND destination_location_id = ?;
	`

	var seconds, meters int
	var calculatedAt int64
	err = s.DB.QueryRowContext(ctx, s.Dialect.Rebind(q), pair.A, pair.B).Scan(&seconds, &meters, &calculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TravelCacheEntry{}, false, nil
	}
	if err != nil {
		return domain.TravelCacheEntry{}, false, fmt.Errorf("get travel cache: query travel_time_cache table: %w", err)
	}

	return domain.TravelCacheEntry{
		TravelSeconds:  seconds,
		DistanceMeters: meters,
		CalculatedAt:   time.Unix(calculatedAt, 0).UTC(),
	}, true, nil
}

// Store a travel time for a location pair, replacing any older entry.
func (s *SQLTravelCache) Put(
	ctx context.Context,
	pair domain.LocationPair,
	entry domain.TravelCacheEntry,
) (err error) {
	defer obs.Time(ctx, "travel.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("travel cache: db is nil")
	}

	if pair.A == "" || pair.B == "" {
		return errors.New("insert travel cache: location ids must not be empty")
	}

	q := `
	INSERT INTO travel_time_cache (
		origin_location_id,
		destination_location_id,
		travel_seconds,
		distance_meters,
		calculated_at
	)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (origin_location_id, destination_location_id) DO UPDATE
	SET travel_seconds = excluded.travel_seconds,
		distance_meters = excluded.distance_meters,
		calculated_at = excluded.calculated_at;
	`

	_, err = s.DB.ExecContext(
		ctx,
		s.Dialect.Rebind(q),
		pair.A, pair.B, entry.TravelSeconds, entry.DistanceMeters, entry.CalculatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert travel cache pair=%q: %w", pair.String(), err)
	}

	return nil
}
