package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/db"
	"gopkg.in/yaml.v3"
)

type LocationSeed struct {
	ID  string  `yaml:"id"`
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

type WorkingHoursSeed struct {
	WalkerID string `yaml:"walker_id"`
	Weekday  int    `yaml:"weekday"` // 0 = Sunday
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Timezone string `yaml:"timezone"`
	Active   *bool  `yaml:"active"`
}

type BookingSeed struct {
	ID             string    `yaml:"id"`
	WalkerID       string    `yaml:"walker_id"`
	LocationID     string    `yaml:"location_id"`
	Start          time.Time `yaml:"start"`
	End            time.Time `yaml:"end"`
	ServiceMinutes int       `yaml:"service_minutes"`
	Status         string    `yaml:"status"`
}

type BlockSeed struct {
	ID       string    `yaml:"id"`
	WalkerID string    `yaml:"walker_id"`
	Start    time.Time `yaml:"start"`
	End      time.Time `yaml:"end"`
	Reason   string    `yaml:"reason"`
}

// Seed is the YAML seed document.
type Seed struct {
	Locations    []LocationSeed     `yaml:"locations"`
	WorkingHours []WorkingHoursSeed `yaml:"working_hours"`
	Bookings     []BookingSeed      `yaml:"bookings"`
	Blocks       []BlockSeed        `yaml:"blocks"`
}

// Populate the database with scheduling data from a YAML file.
func SeedFromYAML(ctx context.Context, conn *sql.DB, dialect db.Dialect, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed: parse yaml: %w", err)
	}

	return ApplySeed(ctx, conn, dialect, seed)
}

// ApplySeed validates and upserts every row of a seed in one transaction.
func ApplySeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seed Seed) error {
	if err := seed.validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range seed.Locations {
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO locations (id, lat, lon)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET lat = excluded.lat, lon = excluded.lon;
		`), l.ID, l.Lat, l.Lon)
		if err != nil {
			return fmt.Errorf("seed: insert location id=%q: %w", l.ID, err)
		}
	}

	for _, w := range seed.WorkingHours {
		active := 1
		if w.Active != nil && !*w.Active {
			active = 0
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO working_hours (walker_id, day_of_week, start_time, end_time, timezone, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (walker_id, day_of_week) DO UPDATE
		SET start_time = excluded.start_time,
			end_time = excluded.end_time,
			timezone = excluded.timezone,
			active = excluded.active;
		`), w.WalkerID, w.Weekday, w.Start, w.End, w.Timezone, active)
		if err != nil {
			return fmt.Errorf("seed: insert working hours walker=%q day=%d: %w", w.WalkerID, w.Weekday, err)
		}
	}

	for _, b := range seed.Bookings {
		id := b.ID
		if id == "" {
			id = uuid.NewString()
		}
		status := b.Status
		if status == "" {
			status = "confirmed"
		}
		var locationID any
		if b.LocationID != "" {
			locationID = b.LocationID
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO bookings (id, walker_id, location_id, starts_at, ends_at, service_minutes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET walker_id = excluded.walker_id,
			location_id = excluded.location_id,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			service_minutes = excluded.service_minutes,
			status = excluded.status;
		`), id, b.WalkerID, locationID, b.Start.Unix(), b.End.Unix(), b.ServiceMinutes, status)
		if err != nil {
			return fmt.Errorf("seed: insert booking id=%q: %w", id, err)
		}
	}

	for _, b := range seed.Blocks {
		id := b.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO blocks (id, walker_id, starts_at, ends_at, reason)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET walker_id = excluded.walker_id,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			reason = excluded.reason;
		`), id, b.WalkerID, b.Start.Unix(), b.End.Unix(), b.Reason)
		if err != nil {
			return fmt.Errorf("seed: insert block id=%q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

func (s Seed) validate() error {
	for i, l := range s.Locations {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("location at index %d: id cannot be empty", i)
		}
	}

	for i, w := range s.WorkingHours {
		if strings.TrimSpace(w.WalkerID) == "" {
			return fmt.Errorf("working hours at index %d: walker_id cannot be empty", i)
		}
		if w.Weekday < 0 || w.Weekday > 6 {
			return fmt.Errorf("working hours at index %d: weekday %d out of range", i, w.Weekday)
		}
		if _, err := domain.ParseClockTime(w.Start); err != nil {
			return fmt.Errorf("working hours at index %d: %w", i, err)
		}
		if _, err := domain.ParseClockTime(w.End); err != nil {
			return fmt.Errorf("working hours at index %d: %w", i, err)
		}
		if _, err := time.LoadLocation(w.Timezone); err != nil {
			return fmt.Errorf("working hours at index %d: timezone %q: %w", i, w.Timezone, err)
		}
	}

	for i, b := range s.Bookings {
		if strings.TrimSpace(b.WalkerID) == "" {
			return fmt.Errorf("booking at index %d: walker_id cannot be empty", i)
		}
		if !b.End.After(b.Start) {
			return fmt.Errorf("booking at index %d: end must be after start", i)
		}
		if b.ServiceMinutes <= 0 {
			return fmt.Errorf("booking at index %d: service_minutes must be positive", i)
		}
	}

	for i, b := range s.Blocks {
		if strings.TrimSpace(b.WalkerID) == "" {
			return fmt.Errorf("block at index %d: walker_id cannot be empty", i)
		}
		if !b.End.After(b.Start) {
			return fmt.Errorf("block at index %d: end must be after start", i)
		}
	}

	return nil
}
