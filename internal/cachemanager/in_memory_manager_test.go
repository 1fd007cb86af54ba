package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type styleKey string

type swatch struct {
	Hook  string
	Value string
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := NewInMemoryCacheManager[styleKey, swatch]("styles", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "dark|button|hover", swatch{Hook: "bg", Value: "#333"}, 0)

	got, ok := cache.Get(ctx, "dark|button|hover")
	require.True(t, ok)
	require.Equal(t, swatch{Hook: "bg", Value: "#333"}, got)

	_, ok = cache.Get(ctx, "dark|button|")
	require.False(t, ok)

	require.Equal(t, Stats{Hits: 1, Misses: 1, Items: 1}, cache.Stats())
}

func TestInMemoryCacheManager_WrongTypeIsAMiss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("styles", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("bg", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "bg")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("styles", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "bg", "#000", 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "bg")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("styles", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	_, ok := cache.GetWithRefresh(ctx, "bg", time.Hour)
	require.False(t, ok)

	cache.Set(ctx, "bg", "#000", 50*time.Millisecond)
	got, ok := cache.GetWithRefresh(ctx, "bg", time.Hour)
	require.True(t, ok)
	require.Equal(t, "#000", got)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get(ctx, "bg")
	require.True(t, ok, "refresh extended the ttl")
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("styles", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	require.NoError(t, cache.Delete(ctx))

	cache.Set(ctx, "bg", "#000", 0)
	cache.Set(ctx, "text", "#fff", 0)
	require.NoError(t, cache.Delete(ctx, "bg"))
	_, ok := cache.Get(ctx, "bg")
	require.False(t, ok)

	require.NoError(t, cache.Flush(ctx))
	_, ok = cache.Get(ctx, "text")
	require.False(t, ok)
	require.Equal(t, Stats{Misses: 1}, cache.Stats())
}
