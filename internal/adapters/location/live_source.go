package location

import (
	"context"
	"fmt"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/distance"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
)

// LiveSource estimates travel from the walker's latest GPS fix to the
// destination. It stands in for the true origin, so answers are Medium
// confidence at best.
//
// Only queries that name a walker and whose AsOf is within MaxFixAge of the
// fix qualify.
type LiveSource struct {
	Feed      ports.PositionFeed
	MaxFixAge time.Duration
	Estimator distance.GreatCircleEstimator
}

func NewLiveSource(feed ports.PositionFeed, maxFixAge time.Duration, e distance.GreatCircleEstimator) *LiveSource {
	return &LiveSource{Feed: feed, MaxFixAge: maxFixAge, Estimator: e}
}

func (s *LiveSource) Name() domain.TravelSource { return domain.SourceLivePosition }

func (s *LiveSource) Lookup(ctx context.Context, q domain.TravelQuery) (domain.TravelTimeEstimate, error) {
	if q.WalkerID == "" || !q.Destination.Known() {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	fix, ok, err := s.Feed.Latest(ctx, q.WalkerID)
	if err != nil {
		return domain.TravelTimeEstimate{}, fmt.Errorf("live source: %w", err)
	}
	if !ok {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	age := q.AsOf.Sub(fix.RecordedAt)
	if age < 0 {
		age = -age
	}
	if age > s.MaxFixAge {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	d, meters, conf := s.Estimator.Estimate(fix.Coords, q.Destination.Coords)
	return domain.TravelTimeEstimate{
		Duration:       d,
		DistanceMeters: meters,
		Confidence:     domain.MinConfidence(conf, domain.ConfidenceMedium),
		Source:         domain.SourceLivePosition,
		ComputedAt:     fix.RecordedAt,
	}, nil
}
