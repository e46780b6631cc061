package ports

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

// Position is a single GPS fix reported by a walker's device.
type Position struct {
	Coords     domain.Coordinates
	RecordedAt time.Time
}

// Live walker positions.
type PositionFeed interface {
	// Return the latest fix for a walker and whether one exists.
	Latest(ctx context.Context, walkerID string) (Position, bool, error)
	Record(ctx context.Context, walkerID string, p Position) error
}
