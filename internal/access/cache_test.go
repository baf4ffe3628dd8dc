package access

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheFlagsPopulatesAndServesFromRedis(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (Flags, bool, error) {
		loads++
		return Flags{CanView: true, CanUpdate: true}, true, nil
	}

	flags, found, err := cache.Flags(ctx, 1, 10, loader)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, flags.CanView)
	require.Equal(t, 1, loads)

	// Second lookup is served from the cache.
	flags, found, err = cache.Flags(ctx, 1, 10, loader)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, flags.CanUpdate)
	require.Equal(t, 1, loads)
}

func TestCacheCachesAbsentRows(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (Flags, bool, error) {
		loads++
		return Flags{}, false, nil
	}

	_, found, err := cache.Flags(ctx, 2, 20, loader)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = cache.Flags(ctx, 2, 20, loader)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, 1, loads)
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (Flags, bool, error) {
		loads++
		return Flags{CanView: loads == 1}, true, nil
	}

	flags, _, err := cache.Flags(ctx, 1, 10, loader)
	require.NoError(t, err)
	require.True(t, flags.CanView)

	cache.Bump(ctx)

	flags, _, err = cache.Flags(ctx, 1, 10, loader)
	require.NoError(t, err)
	require.False(t, flags.CanView)
	require.Equal(t, 2, loads)
}

func TestNilCacheDegradesToLoader(t *testing.T) {
	var cache *Cache
	loads := 0
	flags, found, err := cache.Flags(context.Background(), 1, 10, func(ctx context.Context) (Flags, bool, error) {
		loads++
		return Flags{CanDelete: true}, true, nil
	})
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, flags.CanDelete)
	require.Equal(t, 1, loads)

	// Mutation hooks are also safe on a nil cache.
	cache.Bump(context.Background())
}

func TestCacheVersionInitialisesToOne(t *testing.T) {
	cache, mr := newTestCache(t)

	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)

	stored, err := mr.Get("access:version")
	require.NoError(t, err)
	require.Equal(t, "1", stored)
}
