package cache

import (
	"context"
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	svc, err := NewService(&config.CacheConfig{
		Enabled:   true,
		RedisAddr: mr.Addr(),
		TTL:       time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestSearchCacheRoundtrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := SearchKey("gen-1", []byte(`{"have":["tomato"]}`))
	payload := []byte(`{"count":1,"results":[]}`)

	_, err := svc.GetSearch(ctx, key)
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, svc.SetSearch(ctx, key, payload))

	got, err := svc.GetSearch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSearchCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	svc, err := NewService(&config.CacheConfig{
		Enabled:   true,
		RedisAddr: mr.Addr(),
		TTL:       time.Second,
	})
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	key := SearchKey("gen-1", []byte(`{}`))
	require.NoError(t, svc.SetSearch(ctx, key, []byte("payload")))

	mr.FastForward(2 * time.Second)

	_, err = svc.GetSearch(ctx, key)
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestCacheDisabled(t *testing.T) {
	svc, err := NewService(&config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	assert.False(t, svc.Enabled())

	_, err = svc.GetSearch(context.Background(), "any")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)

	assert.NoError(t, svc.SetSearch(context.Background(), "any", []byte("x")), "set is a silent no-op")
	assert.NoError(t, svc.Close())
}

func TestSearchKey(t *testing.T) {
	req := []byte(`{"have":["a"]}`)

	k1 := SearchKey("gen-1", req)
	k2 := SearchKey("gen-1", req)
	assert.Equal(t, k1, k2, "key derivation is deterministic")
	assert.Contains(t, k1, "search:")

	assert.NotEqual(t, k1, SearchKey("gen-2", req), "a new generation invalidates by key")
	assert.NotEqual(t, k1, SearchKey("gen-1", []byte(`{"have":["b"]}`)), "different requests get different keys")
}
