package services

import (
	"context"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"go.uber.org/zap"
)

// TravelTimeChain resolves travel time by asking each source in priority
// order and falling back to a configured default.
//
// Each source gets its own short timeout. A source error of any kind (miss,
// stale entry, timeout, upstream failure) moves on to the next tier; the
// chain itself never fails. The chain holds no mutable state and is safe for
// concurrent use.
type TravelTimeChain struct {
	sources       []ports.TravelSource
	lookupTimeout time.Duration
	defaultTravel time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func NewTravelTimeChain(
	sources []ports.TravelSource,
	lookupTimeout time.Duration,
	defaultTravel time.Duration,
	logger *zap.Logger,
) *TravelTimeChain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TravelTimeChain{
		sources:       sources,
		lookupTimeout: lookupTimeout,
		defaultTravel: defaultTravel,
		now:           time.Now,
		logger:        logger,
	}
}

func (c *TravelTimeChain) Estimate(ctx context.Context, q domain.TravelQuery) domain.TravelTimeEstimate {
	for _, src := range c.sources {
		// A cancelled request skips straight to the default without touching
		// further sources.
		if ctx.Err() != nil {
			break
		}

		est, err := c.lookup(ctx, src, q)
		if err == nil {
			return est
		}

		c.logger.Debug("travel source fell through",
			zap.Stringer("source", src.Name()),
			zap.String("origin", q.Origin.ID),
			zap.String("destination", q.Destination.ID),
			zap.Error(err),
		)
	}

	return domain.TravelTimeEstimate{
		Duration:   c.defaultTravel,
		Confidence: domain.ConfidenceLow,
		Source:     domain.SourceDefault,
		ComputedAt: c.now().UTC(),
	}
}

func (c *TravelTimeChain) lookup(ctx context.Context, src ports.TravelSource, q domain.TravelQuery) (domain.TravelTimeEstimate, error) {
	if c.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lookupTimeout)
		defer cancel()
	}
	return src.Lookup(ctx, q)
}
