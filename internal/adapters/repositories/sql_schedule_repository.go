package repositories

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

// SQL-backed implementation of the ScheduleRepository and
// RouteBookingRepository ports.
type SQLScheduleRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLScheduleRepository(conn *sql.DB, dialect db.Dialect) *SQLScheduleRepository {
	return &SQLScheduleRepository{DB: conn, Dialect: dialect}
}

// Return the walker's weekly working hours ordered by weekday.
func (s *SQLScheduleRepository) WorkingHours(
	ctx context.Context,
	walkerID string,
) (_ []domain.WorkingHoursWindow, err error) {
	defer obs.Time(ctx, "schedule.WorkingHours")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: DB is nil")
	}

	query := `
	SELECT
		day_of_week,
		start_time,
		end_time,
		timezone,
		active
	FROM working_hours
	WHERE walker_id = ?
	ORDER BY day_of_week;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query), walkerID)
	if err != nil {
		return nil, fmt.Errorf("working hours: query working_hours table: %w", err)
	}
	defer rows.Close()

	windows := make([]domain.WorkingHoursWindow, 0, 7)
	for rows.Next() {
		var (
			day              int
			startStr, endStr string
			tz               string
			active           int
		)
		if err := rows.Scan(&day, &startStr, &endStr, &tz, &active); err != nil {
			return nil, fmt.Errorf("working hours: scan row: %w", err)
		}

		start, err := domain.ParseClockTime(startStr)
		if err != nil {
			return nil, fmt.Errorf("working hours: walker %q day %d: %w", walkerID, day, err)
		}
		end, err := domain.ParseClockTime(endStr)
		if err != nil {
			return nil, fmt.Errorf("working hours: walker %q day %d: %w", walkerID, day, err)
		}

		windows = append(windows, domain.WorkingHoursWindow{
			Weekday:  time.Weekday(day),
			Start:    start,
			End:      end,
			Timezone: tz,
			Active:   active != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("working hours: row iteration: %w", err)
	}

	return windows, nil
}

// Return non-cancelled bookings followed by blocks overlapping [from, to).
func (s *SQLScheduleRepository) BusyIntervals(
	ctx context.Context,
	walkerID string,
	from, to time.Time,
) (_ []domain.BusyInterval, err error) {
	defer obs.Time(ctx, "schedule.BusyIntervals")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: DB is nil")
	}

	bookings, err := s.busyBookings(ctx, walkerID, from, to)
	if err != nil {
		return nil, err
	}
	blocks, err := s.busyBlocks(ctx, walkerID, from, to)
	if err != nil {
		return nil, err
	}

	return append(bookings, blocks...), nil
}

// Return confirmed, located bookings starting on the given UTC day, in
// chronological order.
func (s *SQLScheduleRepository) RouteBookings(
	ctx context.Context,
	walkerID string,
	day time.Time,
) (_ []domain.RouteBooking, err error) {
	defer obs.Time(ctx, "schedule.RouteBookings")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: DB is nil")
	}

	from := domain.DateOf(day)
	to := from.AddDate(0, 0, 1)

	query := `
	SELECT
		b.id,
		b.location_id,
		l.lat,
		l.lon,
		b.starts_at,
		b.ends_at,
		b.service_minutes
	FROM bookings b
	JOIN locations l ON l.id = b.location_id
	WHERE b.walker_id = ?
		AND b.status = 'confirmed'
		AND b.starts_at >= ?
		AND b.starts_at < ?
	ORDER BY b.starts_at, b.id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query), walkerID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("route bookings: query bookings table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RouteBooking, 0, 16)
	for rows.Next() {
		var (
			id, locationID   string
			lat, lon         float64
			startsAt, endsAt int64
			serviceMinutes   int
		)
		if err := rows.Scan(&id, &locationID, &lat, &lon, &startsAt, &endsAt, &serviceMinutes); err != nil {
			return nil, fmt.Errorf("route bookings: scan row: %w", err)
		}
		out = append(out, domain.RouteBooking{
			ID:              id,
			LocationID:      locationID,
			Coords:          domain.Coordinates{Lat: lat, Lon: lon},
			ScheduledStart:  time.Unix(startsAt, 0).UTC(),
			ScheduledEnd:    time.Unix(endsAt, 0).UTC(),
			ServiceDuration: time.Duration(serviceMinutes) * time.Minute,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route bookings: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLScheduleRepository) busyBookings(ctx context.Context, walkerID string, from, to time.Time) ([]domain.BusyInterval, error) {
	query := `
	SELECT
		b.starts_at,
		b.ends_at,
		b.location_id,
		l.lat,
		l.lon
	FROM bookings b
	LEFT JOIN locations l ON l.id = b.location_id
	WHERE b.walker_id = ?
		AND b.status <> 'cancelled'
		AND b.starts_at < ?
		AND b.ends_at > ?
	ORDER BY b.starts_at, b.id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query), walkerID, to.Unix(), from.Unix())
	if err != nil {
		return nil, fmt.Errorf("busy intervals: query bookings table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.BusyInterval, 0, 16)
	for rows.Next() {
		var (
			startsAt, endsAt int64
			locationID       sql.NullString
			lat, lon         sql.NullFloat64
		)
		if err := rows.Scan(&startsAt, &endsAt, &locationID, &lat, &lon); err != nil {
			return nil, fmt.Errorf("busy intervals: scan booking row: %w", err)
		}

		bi := domain.BusyInterval{
			TimeInterval: domain.TimeInterval{Start: time.Unix(startsAt, 0).UTC(), End: time.Unix(endsAt, 0).UTC()},
			Source:       domain.BusyBooking,
		}
		if locationID.Valid && lat.Valid && lon.Valid {
			bi.Location = &domain.Location{
				ID:     locationID.String,
				Coords: domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64},
			}
		}
		out = append(out, bi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("busy intervals: booking row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLScheduleRepository) busyBlocks(ctx context.Context, walkerID string, from, to time.Time) ([]domain.BusyInterval, error) {
	query := `
	SELECT
		starts_at,
		ends_at
	FROM blocks
	WHERE walker_id = ?
		AND starts_at < ?
		AND ends_at > ?
	ORDER BY starts_at, id;
	`
	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(query), walkerID, to.Unix(), from.Unix())
	if err != nil {
		return nil, fmt.Errorf("busy intervals: query blocks table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.BusyInterval, 0, 4)
	for rows.Next() {
		var startsAt, endsAt int64
		if err := rows.Scan(&startsAt, &endsAt); err != nil {
			return nil, fmt.Errorf("busy intervals: scan block row: %w", err)
		}
		out = append(out, domain.BusyInterval{
			TimeInterval: domain.TimeInterval{Start: time.Unix(startsAt, 0).UTC(), End: time.Unix(endsAt, 0).UTC()},
			Source:       domain.BusyBlock,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("busy intervals: block row iteration: %w", err)
	}

	return out, nil
}
