package distance

import (
	"context"
	"math"
	"time"

	"github.com/golang/geo/s2"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
)

const EarthRadiusMeters = 6371008.8

// GreatCircleMeters returns the great-circle distance between two points.
func GreatCircleMeters(a, b domain.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// GreatCircleEstimator converts straight-line distance into a driving-time
// guess: distance is inflated by RoadFactor and driven at AverageSpeedKPH.
type GreatCircleEstimator struct {
	AverageSpeedKPH float64
	RoadFactor      float64
	// Estimates over this distance are Low confidence instead of Medium.
	MediumMaxMeters float64
}

// Estimate returns the duration and road distance between a and b, and the
// confidence the distance warrants.
func (g GreatCircleEstimator) Estimate(a, b domain.Coordinates) (time.Duration, int, domain.Confidence) {
	factor := g.RoadFactor
	if factor < 1 {
		factor = 1
	}

	road := GreatCircleMeters(a, b) * factor
	metersPerSecond := g.AverageSpeedKPH * 1000 / 3600
	seconds := math.Ceil(road / metersPerSecond)

	conf := domain.ConfidenceMedium
	if road > g.MediumMaxMeters {
		conf = domain.ConfidenceLow
	}

	return time.Duration(seconds) * time.Second, int(math.Round(road)), conf
}

// GreatCircleSource is the coordinate-only tier of the travel-time chain.
type GreatCircleSource struct {
	Estimator GreatCircleEstimator
	Now       func() time.Time
}

func NewGreatCircleSource(e GreatCircleEstimator) *GreatCircleSource {
	return &GreatCircleSource{Estimator: e, Now: time.Now}
}

func (s *GreatCircleSource) Name() domain.TravelSource { return domain.SourceGreatCircle }

func (s *GreatCircleSource) Lookup(_ context.Context, q domain.TravelQuery) (domain.TravelTimeEstimate, error) {
	if !q.Origin.Known() || !q.Destination.Known() {
		return domain.TravelTimeEstimate{}, ports.ErrNoEstimate
	}

	d, meters, conf := s.Estimator.Estimate(q.Origin.Coords, q.Destination.Coords)
	return domain.TravelTimeEstimate{
		Duration:       d,
		DistanceMeters: meters,
		Confidence:     conf,
		Source:         domain.SourceGreatCircle,
		ComputedAt:     s.Now().UTC(),
	}, nil
}
