package cache

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/maypok86/otter/v2"
)

// MemoryTravelCache is an in-process travel cache with write-based expiry.
type MemoryTravelCache struct {
	cache *otter.Cache[domain.LocationPair, domain.TravelCacheEntry]
}

func NewMemoryTravelCache(maxSize int, ttl time.Duration) *MemoryTravelCache {
	c := otter.Must(&otter.Options[domain.LocationPair, domain.TravelCacheEntry]{
		MaximumSize:      maxSize,
		ExpiryCalculator: otter.ExpiryWriting[domain.LocationPair, domain.TravelCacheEntry](ttl),
	})
	return &MemoryTravelCache{cache: c}
}

func (m *MemoryTravelCache) Get(_ context.Context, pair domain.LocationPair) (domain.TravelCacheEntry, bool, error) {
	e, ok := m.cache.GetIfPresent(pair)
	return e, ok, nil
}

func (m *MemoryTravelCache) Put(_ context.Context, pair domain.LocationPair, entry domain.TravelCacheEntry) error {
	m.cache.Set(pair, entry)
	return nil
}
