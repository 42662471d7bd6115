// Package cachemanager holds short-lived in-process caches for `toolasset
// serve`. Dictionary labels change only through migrations, so the web
// server reads them once per TTL instead of on every request.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values by key, each with its own TTL. A zero TTL on
// Set uses the manager's default expiration.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	// GetWithRefresh returns the value and restarts its TTL.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
