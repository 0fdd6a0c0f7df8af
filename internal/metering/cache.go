package metering

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"assistant-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable means no cached snapshot exists and another instance holds
// the refresh lock. Callers render a stale/empty state and retry later.
var ErrUnavailable = errors.New("metering: snapshot unavailable")

// CachedReader serves provider snapshots from Redis so every dashboard load
// does not hit the vendor API. A refresh lock keeps concurrent instances from
// stampeding the provider when the cache expires.
type CachedReader struct {
	provider Provider
	rdb      *redis.Client
	ttl      time.Duration
	log      *slog.Logger
}

func NewCachedReader(provider Provider, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedReader {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedReader{provider: provider, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedReader) cacheKey() string { return "metering:snapshot:" + c.provider.Name() }
func (c *CachedReader) lockKey() string  { return "metering:refresh:" + c.provider.Name() }

// Snapshot returns the cached snapshot, refreshing it from the provider on a
// cache miss. With no Redis client configured it always fetches directly.
func (c *CachedReader) Snapshot(ctx context.Context) (Snapshot, error) {
	if c.rdb == nil {
		return c.provider.Subscription(ctx)
	}

	if s, ok := c.cached(ctx); ok {
		return s, nil
	}

	token, acquired, err := utils.TryLock(ctx, c.rdb, c.lockKey(), c.ttl)
	if err != nil {
		// Redis trouble should not take the dashboard down; fetch directly.
		c.log.Warn("metering: refresh lock failed, fetching directly", "err", err)
		return c.provider.Subscription(ctx)
	}
	if !acquired {
		// Another instance is refreshing; one more cache read before giving up.
		if s, ok := c.cached(ctx); ok {
			return s, nil
		}
		return Snapshot{}, ErrUnavailable
	}
	defer func() {
		if err := utils.Unlock(context.WithoutCancel(ctx), c.rdb, c.lockKey(), token); err != nil {
			c.log.Warn("metering: unlock failed", "err", err)
		}
	}()

	s, err := c.provider.Subscription(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	raw, err := json.Marshal(s)
	if err == nil {
		if err := c.rdb.Set(ctx, c.cacheKey(), raw, c.ttl).Err(); err != nil {
			c.log.Warn("metering: cache write failed", "err", err)
		}
	}
	return s, nil
}

func (c *CachedReader) cached(ctx context.Context) (Snapshot, bool) {
	raw, err := c.rdb.Get(ctx, c.cacheKey()).Bytes()
	if err != nil {
		return Snapshot{}, false
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, false
	}
	return s, true
}
