package ports

import (
	"context"
	"errors"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

// ErrNoEstimate is returned by a TravelSource that cannot answer a query
// (missing ids or coordinates, cache miss, stale fix).
var ErrNoEstimate = errors.New("no estimate")

// Contract for resolving travel time between two locations.
// Implementations never fail: they degrade confidence instead.
type TravelTimeProvider interface {
	Estimate(ctx context.Context, q domain.TravelQuery) domain.TravelTimeEstimate
}

// One tier of the travel-time fallback chain.
type TravelSource interface {
	Name() domain.TravelSource
	// Return an estimate, or an error (typically ErrNoEstimate) to fall through.
	Lookup(ctx context.Context, q domain.TravelQuery) (domain.TravelTimeEstimate, error)
}
