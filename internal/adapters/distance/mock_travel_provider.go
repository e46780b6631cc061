package distance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

// MockTravelTimeProvider answers from a fixed table keyed by location id.
// Pairs are looked up in both directions; unknown pairs get Fallback with Low
// confidence.
type MockTravelTimeProvider struct {
	m        map[string]domain.TravelTimeEstimate
	Fallback time.Duration
	calls    atomic.Int64
}

func NewMockTravelTimeProvider(pairs []MockPair) *MockTravelTimeProvider {
	m := make(map[string]domain.TravelTimeEstimate, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = domain.TravelTimeEstimate{
			Duration:       time.Duration(p.Seconds) * time.Second,
			DistanceMeters: p.Meters,
			Confidence:     domain.ConfidenceHigh,
			Source:         domain.SourceCache,
		}
	}
	return &MockTravelTimeProvider{m: m, Fallback: 20 * time.Minute}
}

func (p *MockTravelTimeProvider) Estimate(_ context.Context, q domain.TravelQuery) domain.TravelTimeEstimate {
	p.calls.Add(1)

	if r, ok := p.m[q.Origin.ID+"|"+q.Destination.ID]; ok {
		return r
	}
	if r, ok := p.m[q.Destination.ID+"|"+q.Origin.ID]; ok {
		return r
	}

	return domain.TravelTimeEstimate{
		Duration:   p.Fallback,
		Confidence: domain.ConfidenceLow,
		Source:     domain.SourceDefault,
	}
}

// Calls reports how many estimates were requested.
func (p *MockTravelTimeProvider) Calls() int64 { return p.calls.Load() }
