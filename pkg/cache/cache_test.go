package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/pkg/cache"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSelectsMemoryWithoutAddr(t *testing.T) {
	sys := cache.New(&cache.Config{TTL: "1m"}, discard())
	_, ok := sys.(*cache.Memory)
	assert.True(t, ok, "expected memory cache, got %T", sys)

	redisSys := cache.New(&cache.Config{Addr: "127.0.0.1:6379", TTL: "1m"}, discard())
	_, ok = redisSys.(*cache.Memory)
	assert.False(t, ok)
}

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()

	_, ok, err := m.Get(ctx, "products_all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "products_all", []byte(`[1]`), time.Minute))
	got, ok, err := m.Get(ctx, "products_all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1]`), got)

	require.NoError(t, m.Delete(ctx, "products_all", "missing"))
	_, ok, _ = m.Get(ctx, "products_all")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRememberCachesLoadedValue(t *testing.T) {
	ctx := context.Background()
	l := cache.NewLoader(cache.NewMemory(), time.Minute, discard())

	var calls atomic.Int32
	load := func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"KitKat", "Oreo"}, nil
	}

	for range 3 {
		got, err := cache.Remember(ctx, l, "products_all", load)
		require.NoError(t, err)
		assert.Equal(t, []string{"KitKat", "Oreo"}, got)
	}
	assert.Equal(t, int32(1), calls.Load())

	l.Invalidate(ctx, "products_all")
	_, err := cache.Remember(ctx, l, "products_all", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	l := cache.NewLoader(cache.NewMemory(), time.Minute, discard())
	boom := errors.New("boom")

	_, err := cache.Remember(ctx, l, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	got, err := cache.Remember(ctx, l, "k", func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRememberCoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	l := cache.NewLoader(cache.NewMemory(), time.Minute, discard())

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			v, err := cache.Remember(ctx, l, "k", load)
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		})
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CACHE_ADDR", "redis:6379")
	t.Setenv("TEST_CACHE_DB", "2")

	cfg := cache.Config{}
	require.NoError(t, cfg.Finalize(&cache.Env{Addr: "TEST_CACHE_ADDR", DB: "TEST_CACHE_DB"}))
	assert.Equal(t, "redis:6379", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 10*time.Minute, cfg.TTLDuration())

	bad := cache.Config{TTL: "-1s"}
	assert.Error(t, bad.Finalize(nil))
}
