package distance

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
)

func TestGreatCircleMeters(t *testing.T) {
	// One degree of latitude along a meridian.
	got := GreatCircleMeters(domain.Coordinates{Lat: 0, Lon: 10}, domain.Coordinates{Lat: 1, Lon: 10})
	want := EarthRadiusMeters * math.Pi / 180
	if math.Abs(got-want) > 1 {
		t.Fatalf("distance = %.1f, want %.1f", got, want)
	}
}

func TestGreatCircleEstimatorConfidence(t *testing.T) {
	e := GreatCircleEstimator{AverageSpeedKPH: 36, RoadFactor: 1, MediumMaxMeters: 15_000}

	near := domain.Coordinates{Lat: 0.05, Lon: 10}
	d, meters, conf := e.Estimate(domain.Coordinates{Lat: 0, Lon: 10}, near)
	if conf != domain.ConfidenceMedium {
		t.Fatalf("confidence = %v, want medium", conf)
	}
	// 36 km/h is 10 m/s.
	if want := time.Duration(math.Ceil(float64(meters)/10)) * time.Second; math.Abs(float64(d-want)) > float64(time.Second) {
		t.Fatalf("duration = %v, want about %v", d, want)
	}

	_, _, conf = e.Estimate(domain.Coordinates{Lat: 0, Lon: 10}, domain.Coordinates{Lat: 1, Lon: 10})
	if conf != domain.ConfidenceLow {
		t.Fatalf("confidence = %v, want low for 111km", conf)
	}
}

func TestGreatCircleSourceNeedsCoordinates(t *testing.T) {
	src := NewGreatCircleSource(GreatCircleEstimator{AverageSpeedKPH: 30, RoadFactor: 1.3, MediumMaxMeters: 15_000})

	if _, err := src.Lookup(context.Background(), domain.TravelQuery{Origin: domain.Location{ID: "a"}, Destination: locB}); err == nil {
		t.Fatal("expected error without origin coordinates")
	}

	est, err := src.Lookup(context.Background(), domain.TravelQuery{Origin: locA, Destination: locB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Source != domain.SourceGreatCircle || est.Duration <= 0 {
		t.Fatalf("unexpected estimate: %+v", est)
	}
}
