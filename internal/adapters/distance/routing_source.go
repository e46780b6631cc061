package distance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// RoutingAPISource asks an external routing API for driving time and writes
// successful answers through to the travel cache.
//
// The cache write runs in its own goroutine with its own timeout, detached
// from the caller's cancellation; a failed write is logged and dropped.
type RoutingAPISource struct {
	client       RouteClient
	cache        ports.TravelCache
	writeTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
	pending      sync.WaitGroup
}

func NewRoutingAPISource(
	client RouteClient,
	cache ports.TravelCache,
	writeTimeout time.Duration,
	logger *zap.Logger,
) *RoutingAPISource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutingAPISource{
		client:       client,
		cache:        cache,
		writeTimeout: writeTimeout,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *RoutingAPISource) Name() domain.TravelSource { return domain.SourceRoutingAPI }

func (s *RoutingAPISource) Lookup(ctx context.Context, q domain.TravelQuery) (domain.TravelTimeEstimate, error) {
	if !q.Origin.Known() || !q.Destination.Known() {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	leg, err := s.client.Route(ctx, q.Origin.Coords, q.Destination.Coords)
	if err != nil {
		return domain.TravelTimeEstimate{}, fmt.Errorf("routing api source: %w", err)
	}

	computed := s.now().UTC()
	if s.cache != nil && q.Origin.ID != "" && q.Destination.ID != "" {
		s.writeThrough(ctx, domain.NewLocationPair(q.Origin.ID, q.Destination.ID), domain.TravelCacheEntry{
			TravelSeconds:  leg.DurationSeconds,
			DistanceMeters: leg.DistanceMeters,
			CalculatedAt:   computed,
		})
	}

	return domain.TravelTimeEstimate{
		Duration:       time.Duration(leg.DurationSeconds) * time.Second,
		DistanceMeters: leg.DistanceMeters,
		Confidence:     domain.ConfidenceHigh,
		Source:         domain.SourceRoutingAPI,
		ComputedAt:     computed,
	}, nil
}

func (s *RoutingAPISource) writeThrough(ctx context.Context, pair domain.LocationPair, entry domain.TravelCacheEntry) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
		defer cancel()

		if err := s.cache.Put(wctx, pair, entry); err != nil {
			s.logger.Warn("travel cache write-through failed", zap.String("pair", pair.String()), zap.Error(err))
		}
	}()
}

// Flush blocks until every pending cache write has finished.
func (s *RoutingAPISource) Flush() {
	s.pending.Wait()
}
