package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache puts a CacheManager in front of a loader. The web server
// builds one for the dictionary labels behind GET /api/labels, with the TTL
// taken from web.label_cache_ttl.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache CacheManager[K, V]
	load  func(ctx context.Context, input I) (V, error)
	ttl   time.Duration
}

// NewReadThroughCache returns a cache that keeps loaded values for ttl.
// A ttl of zero or less sends every Get to load.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	load func(ctx context.Context, input I) (V, error),
	ttl time.Duration,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, load: load, ttl: ttl}
}

// Get returns the value cached under key, loading it from input on a miss.
// A failed load leaves the cache untouched.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I) (V, error) {
	if r.ttl <= 0 {
		return r.load(ctx, input)
	}
	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.load(ctx, input)
	if err != nil {
		var zero V
		return zero, err
	}
	r.cache.Set(ctx, key, value, r.ttl)
	return value, nil
}

// Invalidate drops key so the next Get reloads it.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, key K) error {
	return r.cache.Delete(ctx, key)
}
