package ports

import (
	"context"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

// Persisted travel times keyed by a symmetric location pair.
type TravelCache interface {
	// Return the cached entry and whether one exists.
	Get(ctx context.Context, pair domain.LocationPair) (domain.TravelCacheEntry, bool, error)
	// Upsert an entry. Writing the same pair twice is harmless.
	Put(ctx context.Context, pair domain.LocationPair, entry domain.TravelCacheEntry) error
}
