package http

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// A ranking fetch recomputes scores for a whole scope population, so the
// cache layer works to run it at most once per key: concurrent misses
// collapse into a single fetch, and a hit answers from the cache while a
// refresh runs behind it.

type fetchFunc[T any] func(ctx context.Context) (T, error)

const (
	fetchTimeout      = 15 * time.Second
	storeTimeout      = 5 * time.Second
	ttlJitterSpan     = 20 * time.Second
	refreshDelayLimit = 750 * time.Millisecond
)

// jitterTTL spreads expiries over a ttlJitterSpan window centered on ttl so
// the per-scope keys written by one snapshot run do not all lapse in the
// same instant.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(int64(ttlJitterSpan))) - ttlJitterSpan/2
}

// store writes value under key with a jittered TTL. It runs on its own
// deadline because callers fire it from goroutines that outlive the request
// context.
func store[T any](c Cacher, key string, ttl time.Duration, logger *zap.Logger, value T) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.Set(ctx, key, value, jitterTTL(ttl)); err != nil {
		logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// refreshAhead recomputes key behind a served hit. The random delay staggers
// refreshes of keys read in bursts; singleflight keeps at most one refresh
// in flight per key no matter how many hits trigger it.
func refreshAhead[T any](c Cacher, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fn fetchFunc[T]) {
	go func() {
		time.Sleep(time.Duration(rand.Int63n(int64(refreshDelayLimit))))

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("refresh-ahead fetch failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			store(c, key, ttl, logger, value)
			return value, nil
		})
	}()
}

// FindAndCache is the read-through path for ranking responses. A hit is
// served immediately and refreshed behind the response; a miss falls through
// to fn under singleflight and the result is stored without blocking the
// caller. Cache transport errors degrade to a miss rather than failing the
// request.
func FindAndCache[T any](ctx context.Context, c Cacher, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fn fetchFunc[T]) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached T
	switch err := c.Get(ctx, key, &cached); {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshAhead(c, sf, key, ttl, logger, fn)
		return cached, nil
	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))
	default:
		logger.Warn("cache read failed, recomputing", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		go store(c, key, ttl, logger, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("unexpected cached type for key %q", key)
	}
	return value, nil
}
