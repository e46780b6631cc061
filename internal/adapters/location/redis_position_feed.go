package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kcirtapfromspace/offleash-sub001/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub001/internal/platform/obs"
	"github.com/kcirtapfromspace/offleash-sub001/internal/ports"
	"github.com/redis/go-redis/v9"
)

// RedisPositionFeed stores each walker's latest GPS fix in a Redis hash
// (walker:position:<id> -> lat, lon, recorded_at unix seconds).
type RedisPositionFeed struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPositionFeed returns a feed whose keys expire after ttl; zero keeps
// fixes until overwritten.
func NewRedisPositionFeed(client *redis.Client, ttl time.Duration) *RedisPositionFeed {
	return &RedisPositionFeed{client: client, ttl: ttl}
}

func positionKey(walkerID string) string { return "walker:position:" + walkerID }

func (f *RedisPositionFeed) Latest(ctx context.Context, walkerID string) (_ ports.Position, _ bool, err error) {
	defer obs.Time(ctx, "position.Latest")(&err)

	if walkerID == "" {
		return ports.Position{}, false, errors.New("latest position: walker id must not be empty")
	}

	fields, err := f.client.HGetAll(ctx, positionKey(walkerID)).Result()
	if err != nil {
		return ports.Position{}, false, fmt.Errorf("latest position: hgetall: %w", err)
	}
	if len(fields) == 0 {
		return ports.Position{}, false, nil
	}

	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return ports.Position{}, false, fmt.Errorf("latest position: walker %q: parse lat: %w", walkerID, err)
	}
	lon, err := strconv.ParseFloat(fields["lon"], 64)
	if err != nil {
		return ports.Position{}, false, fmt.Errorf("latest position: walker %q: parse lon: %w", walkerID, err)
	}
	recorded, err := strconv.ParseInt(fields["recorded_at"], 10, 64)
	if err != nil {
		return ports.Position{}, false, fmt.Errorf("latest position: walker %q: parse recorded_at: %w", walkerID, err)
	}

	return ports.Position{
		Coords:     domain.Coordinates{Lat: lat, Lon: lon},
		RecordedAt: time.Unix(recorded, 0).UTC(),
	}, true, nil
}

func (f *RedisPositionFeed) Record(ctx context.Context, walkerID string, p ports.Position) (err error) {
	defer obs.Time(ctx, "position.Record")(&err)

	if walkerID == "" {
		return errors.New("record position: walker id must not be empty")
	}

	key := positionKey(walkerID)
	pipe := f.client.TxPipeline()
	pipe.HSet(ctx, key,
		"lat", strconv.FormatFloat(p.Coords.Lat, 'f', -1, 64),
		"lon", strconv.FormatFloat(p.Coords.Lon, 'f', -1, 64),
		"recorded_at", strconv.FormatInt(p.RecordedAt.Unix(), 10),
	)
	if f.ttl > 0 {
		pipe.Expire(ctx, key, f.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record position: walker %q: %w", walkerID, err)
	}

	return nil
}
