package pagecache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/pkg/pagecache"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedis_SetGet(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	store := pagecache.NewRedis(client, pagecache.WithPrefix("test"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, pagecache.Entry{
		URI:       "/docs",
		Content:   "<h1>Docs</h1>",
		Layout:    "/docs",
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	require.True(t, mr.Exists("test:/docs"))
	require.Greater(t, mr.TTL("test:/docs"), time.Duration(0))

	e, err := store.Get(ctx, "/docs")
	require.NoError(t, err)
	require.Equal(t, "<h1>Docs</h1>", e.Content)
	require.Equal(t, "/docs", e.Layout)
}

func TestRedis_Expiry(t *testing.T) {
	t.Parallel()

	t.Run("misses after redis ttl elapses", func(t *testing.T) {
		t.Parallel()

		client, mr := setupTestRedis(t)
		store := pagecache.NewRedis(client)
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, pagecache.Entry{URI: "/a", Content: "x", ExpiresAt: time.Now().Add(2 * time.Second)}))
		mr.FastForward(3 * time.Second)

		_, err := store.Get(ctx, "/a")
		require.ErrorIs(t, err, pagecache.ErrNotFound)
	})

	t.Run("misses when stored expiry has passed", func(t *testing.T) {
		t.Parallel()

		client, _ := setupTestRedis(t)
		now := time.Now()
		clock := func() time.Time { return now }
		store := pagecache.NewRedis(client, pagecache.WithRedisClock(clock))
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, pagecache.Entry{URI: "/a", ExpiresAt: now.Add(time.Minute)}))

		now = now.Add(2 * time.Minute)
		_, err := store.Get(ctx, "/a")
		require.ErrorIs(t, err, pagecache.ErrNotFound)
	})

	t.Run("does not write stale entries", func(t *testing.T) {
		t.Parallel()

		client, mr := setupTestRedis(t)
		store := pagecache.NewRedis(client)

		require.NoError(t, store.Set(context.Background(), pagecache.Entry{URI: "/old", ExpiresAt: time.Now().Add(-time.Second)}))
		require.False(t, mr.Exists("pageforge:page:/old"))
	})
}

func TestRedis_Clear(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	store := pagecache.NewRedis(client, pagecache.WithPrefix("pages"))
	ctx := context.Background()

	require.NoError(t, mr.Set("other", "keep"))
	exp := time.Now().Add(time.Minute)
	require.NoError(t, store.Set(ctx, pagecache.Entry{URI: "/a", ExpiresAt: exp}))
	require.NoError(t, store.Set(ctx, pagecache.Entry{URI: "/b", ExpiresAt: exp}))

	require.NoError(t, store.Clear(ctx))

	require.False(t, mr.Exists("pages:/a"))
	require.False(t, mr.Exists("pages:/b"))
	require.True(t, mr.Exists("other"))
}
