package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tazhibayda/radiostation-service/internal/domain"
)

const (
	stationListPrefix = "stations:all:"
	stationVersionKey = "stations:ver"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// StationCache keeps the full station listing for a short TTL. Listings are
// stored under a version; Invalidate bumps it, so a listing read from Mongo
// before a write lands under a version nobody reads anymore. A nil cache is
// valid and always misses.
type StationCache struct {
	r   *Redis
	ttl time.Duration
}

func NewStationCache(r *Redis, ttl time.Duration) *StationCache {
	if r == nil || ttl <= 0 {
		return nil
	}
	return &StationCache{r: r, ttl: ttl}
}

func listKey(ver int64) string { return stationListPrefix + strconv.FormatInt(ver, 10) }

// Get returns the cached listing and the version it was looked up under. The
// version must be passed back to Set. Redis errors other than a miss are
// returned so callers can log them and fall through to Mongo.
func (c *StationCache) Get(ctx context.Context) ([]domain.Station, int64, bool, error) {
	if c == nil {
		return nil, 0, false, nil
	}
	ver, err := c.r.C.Get(ctx, stationVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}
	raw, err := c.r.C.Get(ctx, listKey(ver)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ver, false, nil
	}
	if err != nil {
		return nil, ver, false, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out []domain.Station
	if err := dec.Decode(&out); err != nil {
		return nil, ver, false, err
	}
	if out == nil {
		out = []domain.Station{}
	}
	return out, ver, true, nil
}

// Set stores list under ver, the version Get reported before the Mongo read.
func (c *StationCache) Set(ctx context.Context, ver int64, list []domain.Station) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.r.C.Set(ctx, listKey(ver), raw, c.ttl).Err()
}

// Invalidate retires the current listing after any station write.
func (c *StationCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.r.C.Incr(ctx, stationVersionKey).Err()
}
