package distance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
)

type stubRouteClient struct {
	leg RouteLeg
	err error
}

func (s stubRouteClient) Route(context.Context, domain.Coordinates, domain.Coordinates) (RouteLeg, error) {
	return s.leg, s.err
}

type recordingCache struct {
	mu      sync.Mutex
	entries map[domain.LocationPair]domain.TravelCacheEntry
	err     error
}

func (c *recordingCache) Get(context.Context, domain.LocationPair) (domain.TravelCacheEntry, bool, error) {
	return domain.TravelCacheEntry{}, false, nil
}

func (c *recordingCache) Put(ctx context.Context, pair domain.LocationPair, e domain.TravelCacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[domain.LocationPair]domain.TravelCacheEntry{}
	}
	c.entries[pair] = e
	return c.err
}

var (
	locA = domain.Location{ID: "loc-a", Coords: domain.Coordinates{Lon: -104.99, Lat: 39.74}}
	locB = domain.Location{ID: "loc-b", Coords: domain.Coordinates{Lon: -104.95, Lat: 39.75}}
)

func TestRoutingAPISourceWritesThrough(t *testing.T) {
	cache := &recordingCache{}
	src := NewRoutingAPISource(stubRouteClient{leg: RouteLeg{DistanceMeters: 5000, DurationSeconds: 540}}, cache, time.Second, nil)
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	// A cancelled caller must not prevent the write.
	ctx, cancel := context.WithCancel(context.Background())
	est, err := src.Lookup(ctx, domain.TravelQuery{Origin: locB, Destination: locA})
	cancel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.Flush()

	if est.Duration != 9*time.Minute || est.Confidence != domain.ConfidenceHigh || est.Source != domain.SourceRoutingAPI {
		t.Fatalf("unexpected estimate: %+v", est)
	}

	got, ok := cache.entries[domain.NewLocationPair("loc-a", "loc-b")]
	if !ok {
		t.Fatal("result was not written to cache")
	}
	if got.TravelSeconds != 540 || !got.CalculatedAt.Equal(fixed) {
		t.Fatalf("cached entry = %+v", got)
	}
}

func TestRoutingAPISourceWriteFailureIsAbsorbed(t *testing.T) {
	cache := &recordingCache{err: errors.New("disk full")}
	src := NewRoutingAPISource(stubRouteClient{leg: RouteLeg{DistanceMeters: 1, DurationSeconds: 60}}, cache, time.Second, nil)

	if _, err := src.Lookup(context.Background(), domain.TravelQuery{Origin: locA, Destination: locB}); err != nil {
		t.Fatalf("write failure leaked into lookup: %v", err)
	}
	src.Flush()
}

func TestRoutingAPISourceFallsThrough(t *testing.T) {
	src := NewRoutingAPISource(stubRouteClient{err: errors.New("timeout")}, nil, time.Second, nil)
	if _, err := src.Lookup(context.Background(), domain.TravelQuery{Origin: locA, Destination: locB}); err == nil {
		t.Fatal("expected client error to propagate to the chain")
	}

	if _, err := src.Lookup(context.Background(), domain.TravelQuery{Origin: domain.Location{ID: "x"}, Destination: locB}); !errors.Is(err, ports.ErrNoEstimate) {
		t.Fatalf("err = %v, want ErrNoEstimate without coordinates", err)
	}
}
