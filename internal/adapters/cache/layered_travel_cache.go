package cache

import (
	"context"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// LayeredTravelCache reads through an in-process tier to a persistent one.
// Hits from the persistent tier are copied into memory; writes go to both.
type LayeredTravelCache struct {
	memory  *MemoryTravelCache
	backing ports.TravelCache
	logger  *zap.Logger
}

func NewLayeredTravelCache(memory *MemoryTravelCache, backing ports.TravelCache, logger *zap.Logger) *LayeredTravelCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayeredTravelCache{memory: memory, backing: backing, logger: logger}
}

func (l *LayeredTravelCache) Get(ctx context.Context, pair domain.LocationPair) (domain.TravelCacheEntry, bool, error) {
	if e, ok, _ := l.memory.Get(ctx, pair); ok {
		return e, true, nil
	}

	e, ok, err := l.backing.Get(ctx, pair)
	if err != nil || !ok {
		return e, ok, err
	}

	_ = l.memory.Put(ctx, pair, e)
	return e, true, nil
}

func (l *LayeredTravelCache) Put(ctx context.Context, pair domain.LocationPair, entry domain.TravelCacheEntry) error {
	_ = l.memory.Put(ctx, pair, entry)

	if err := l.backing.Put(ctx, pair, entry); err != nil {
		l.logger.Warn("persistent travel cache write failed", zap.String("pair", pair.String()), zap.Error(err))
		return err
	}
	return nil
}
