package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K comparable, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCacheManager[K, V]) Stats() Stats {
	return m.Called().Get(0).(Stats)
}

type resolveInput struct {
	Skin string
}

func loadBg(calls *int) Loader[string, resolveInput] {
	return func(_ context.Context, in resolveInput) (string, error) {
		*calls++
		if in.Skin == "broken" {
			return "", errors.New("unresolved")
		}
		return in.Skin + ":#000", nil
	}
}

func TestReadThroughCache_Bypass(t *testing.T) {
	m := &mockCacheManager[string, string]{}
	calls := 0
	rt := NewReadThroughCache[string, string, resolveInput](m, loadBg(&calls), true)

	got, err := rt.Get(context.Background(), "k", resolveInput{Skin: "button"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "button:#000", got)
	require.Equal(t, 1, calls)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_HitSkipsLoader(t *testing.T) {
	m := &mockCacheManager[string, string]{}
	m.On("Get", mock.Anything, "k").Return("cached", true).Once()
	calls := 0
	rt := NewReadThroughCache[string, string, resolveInput](m, loadBg(&calls), false)

	got, err := rt.Get(context.Background(), "k", resolveInput{Skin: "button"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", got)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissLoadsAndStores(t *testing.T) {
	m := &mockCacheManager[string, string]{}
	m.On("GetWithRefresh", mock.Anything, "k", time.Minute).Return("", false).Once()
	m.On("Set", mock.Anything, "k", "button:#000", time.Minute).Once()
	calls := 0
	rt := NewReadThroughCache[string, string, resolveInput](m, loadBg(&calls), false)

	got, err := rt.GetWithRefresh(context.Background(), "k", resolveInput{Skin: "button"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "button:#000", got)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	m := &mockCacheManager[string, string]{}
	m.On("Get", mock.Anything, "k").Return("", false)
	calls := 0
	rt := NewReadThroughCache[string, string, resolveInput](m, loadBg(&calls), false)

	_, err := rt.Get(context.Background(), "k", resolveInput{Skin: "broken"}, time.Minute)
	require.Error(t, err)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_WithInMemoryManager(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("styles", DefaultExpiration, DefaultCleanupInterval)
	calls := 0
	rt := NewReadThroughCache[string, string, resolveInput](cache, loadBg(&calls), false)
	ctx := context.Background()

	for range 3 {
		_, err := rt.Get(ctx, "button", resolveInput{Skin: "button"}, 0)
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls)
	require.Equal(t, uint64(2), rt.Stats().Hits)

	require.NoError(t, rt.Invalidate(ctx))
	_, err := rt.Get(ctx, "button", resolveInput{Skin: "button"}, 0)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
