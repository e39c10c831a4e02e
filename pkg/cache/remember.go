package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader reads keys through a cache, coalescing concurrent misses for the
// same key into a single load.
type Loader struct {
	cache  System
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewLoader creates a Loader that stores loaded values for ttl.
func NewLoader(c System, ttl time.Duration, logger *slog.Logger) *Loader {
	return &Loader{cache: c, ttl: ttl, logger: logger.With("system", "cache")}
}

// Invalidate removes keys from the underlying cache. Failures are logged
// and otherwise ignored; a stale entry expires with its ttl.
func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.logger.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

// Remember returns the value cached at key, or calls load, caches its
// JSON encoding, and returns it. Cache read and write failures fall
// through to load.
func Remember[T any](ctx context.Context, l *Loader, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := l.cache.Get(ctx, key); err != nil {
		l.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		l.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		if raw, err := json.Marshal(v); err == nil {
			if err := l.cache.Set(ctx, key, raw, l.ttl); err != nil {
				l.logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
