package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kcirtapfromspace/offleash-sub001/internal/adapters/distance"
	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"github.com/redis/go-redis/v9"
)

func newTestFeed(t *testing.T) (*RedisPositionFeed, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisPositionFeed(client, time.Hour), mr
}

func TestRedisPositionFeedRoundTrip(t *testing.T) {
	feed, mr := newTestFeed(t)
	ctx := context.Background()
	recorded := time.Date(2026, 5, 1, 15, 4, 5, 0, time.UTC)

	if _, ok, err := feed.Latest(ctx, "w1"); err != nil || ok {
		t.Fatalf("empty feed Latest = ok %v err %v", ok, err)
	}

	err := feed.Record(ctx, "w1", ports.Position{Coords: domain.Coordinates{Lat: 39.74, Lon: -104.99}, RecordedAt: recorded})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok, err := feed.Latest(ctx, "w1")
	if err != nil || !ok {
		t.Fatalf("Latest = ok %v err %v", ok, err)
	}
	if got.Coords.Lat != 39.74 || got.Coords.Lon != -104.99 || !got.RecordedAt.Equal(recorded) {
		t.Fatalf("unexpected position: %+v", got)
	}

	if ttl := mr.TTL("walker:position:w1"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
}

func TestRedisPositionFeedCorruptHash(t *testing.T) {
	feed, mr := newTestFeed(t)
	mr.HSet("walker:position:w1", "lat", "north", "lon", "1", "recorded_at", "0")

	if _, _, err := feed.Latest(context.Background(), "w1"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLiveSource(t *testing.T) {
	feed, _ := newTestFeed(t)
	ctx := context.Background()
	fixAt := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	_ = feed.Record(ctx, "w1", ports.Position{Coords: domain.Coordinates{Lat: 39.74, Lon: -104.99}, RecordedAt: fixAt})

	src := NewLiveSource(feed, 10*time.Minute, distance.GreatCircleEstimator{AverageSpeedKPH: 30, RoadFactor: 1.3, MediumMaxMeters: 15_000})
	dest := domain.Location{ID: "loc-b", Coords: domain.Coordinates{Lat: 39.75, Lon: -104.95}}

	est, err := src.Lookup(ctx, domain.TravelQuery{WalkerID: "w1", Destination: dest, AsOf: fixAt.Add(5 * time.Minute)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Source != domain.SourceLivePosition || est.Confidence != domain.ConfidenceMedium {
		t.Fatalf("source=%v confidence=%v, want live/medium", est.Source, est.Confidence)
	}

	// Fix too old for the query time.
	_, err = src.Lookup(ctx, domain.TravelQuery{WalkerID: "w1", Destination: dest, AsOf: fixAt.Add(time.Hour)})
	if !errors.Is(err, ports.ErrNoEstimate) {
		t.Fatalf("err = %v, want ErrNoEstimate", err)
	}

	// Queries without a walker never use the live tier.
	_, err = src.Lookup(ctx, domain.TravelQuery{Destination: dest, AsOf: fixAt})
	if !errors.Is(err, ports.ErrNoEstimate) {
		t.Fatalf("err = %v, want ErrNoEstimate", err)
	}
}
