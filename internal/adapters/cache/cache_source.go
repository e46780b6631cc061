package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
)

// CacheSource is the first tier of the travel-time chain: a persisted
// estimate younger than MaxAge.
type CacheSource struct {
	Cache  ports.TravelCache
	MaxAge time.Duration
	Now    func() time.Time
}

func NewCacheSource(c ports.TravelCache, maxAge time.Duration) *CacheSource {
	return &CacheSource{Cache: c, MaxAge: maxAge, Now: time.Now}
}

func (s *CacheSource) Name() domain.TravelSource { return domain.SourceCache }

func (s *CacheSource) Lookup(ctx context.Context, q domain.TravelQuery) (domain.TravelTimeEstimate, error) {
	if q.Origin.ID == "" || q.Destination.ID == "" {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	entry, ok, err := s.Cache.Get(ctx, domain.NewLocationPair(q.Origin.ID, q.Destination.ID))
	if err != nil {
		return domain.TravelTimeEstimate{}, fmt.Errorf("cache source: %w", err)
	}
	if !ok {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	if s.Now().Sub(entry.CalculatedAt) > s.MaxAge {
		return domain.TravelTimeEstimate{}, fmt.Errorf("cache source: entry from %s is stale: %w", entry.CalculatedAt.Format(time.RFC3339), ports.ErrNoEstimate)
	}

	return domain.TravelTimeEstimate{
		Duration:       time.Duration(entry.TravelSeconds) * time.Second,
		DistanceMeters: entry.DistanceMeters,
		Confidence:     domain.ConfidenceHigh,
		Source:         domain.SourceCache,
		ComputedAt:     entry.CalculatedAt,
	}, nil
}
