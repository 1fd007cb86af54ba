package cachemanager

import (
	"context"
	"time"
)

// Loader computes the value for input on a cache miss.
type Loader[V any, I any] func(ctx context.Context, input I) (V, error)

// ReadThroughCache consults the cache first and falls back to a loader,
// storing successful loads. Failed loads are never cached.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache  CacheManager[K, V]
	load   Loader[V, I]
	bypass bool
}

// NewReadThroughCache wraps cache around load. With bypass set every call
// goes straight to the loader.
func NewReadThroughCache[K comparable, V any, I any](cache CacheManager[K, V], load Loader[V, I], bypass bool) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, load: load, bypass: bypass}
}

// Get returns the cached value for key or loads and stores it.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, r.cache.Get)
}

// GetWithRefresh is Get, extending the ttl of a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, func(ctx context.Context, key K) (V, bool) {
		return r.cache.GetWithRefresh(ctx, key, ttl)
	})
}

func (r *ReadThroughCache[K, V, I]) get(ctx context.Context, key K, input I, ttl time.Duration, lookup func(context.Context, K) (V, bool)) (V, error) {
	if r.bypass {
		return r.load(ctx, input)
	}
	if v, ok := lookup(ctx, key); ok {
		return v, nil
	}
	v, err := r.load(ctx, input)
	if err != nil {
		return v, err
	}
	r.cache.Set(ctx, key, v, ttl)
	return v, nil
}

// Invalidate drops everything cached so far.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context) error {
	return r.cache.Flush(ctx)
}

// Stats exposes the underlying cache counters.
func (r *ReadThroughCache[K, V, I]) Stats() Stats { return r.cache.Stats() }
