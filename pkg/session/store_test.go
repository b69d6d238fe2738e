package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/pkg/session"
)

func stores(t *testing.T) map[string]session.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]session.Store{
		"memory": session.NewMemoryStore(),
		"redis":  session.NewRedisStore(client, ""),
	}
}

func TestStores(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("create then get", func(t *testing.T) {
				s := session.New("id-1", "tok-1", time.Now().Add(time.Hour))
				s.SetValue("csrf_token", "abc")
				require.NoError(t, store.Create(ctx, s))

				got, err := store.Get(ctx, "tok-1")
				require.NoError(t, err)
				require.Equal(t, "id-1", got.ID)
				require.Equal(t, "abc", got.Values["csrf_token"])
				require.False(t, got.IsAuthenticated())
			})

			t.Run("update persists user", func(t *testing.T) {
				s, err := store.Get(ctx, "tok-1")
				require.NoError(t, err)

				s.SetUser("u-1")
				require.NoError(t, store.Update(ctx, s))

				got, err := store.Get(ctx, "tok-1")
				require.NoError(t, err)
				require.True(t, got.IsAuthenticated())
				require.Equal(t, "u-1", *got.UserID)
			})

			t.Run("missing token", func(t *testing.T) {
				_, err := store.Get(ctx, "nope")
				require.ErrorIs(t, err, session.ErrNotFound)
			})

			t.Run("delete", func(t *testing.T) {
				require.NoError(t, store.Delete(ctx, "tok-1"))
				_, err := store.Get(ctx, "tok-1")
				require.ErrorIs(t, err, session.ErrNotFound)
			})
		})
	}
}

func TestMemoryStore_Expired(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	s := session.New("id", "tok", time.Now().Add(-time.Minute))
	require.NoError(t, store.Create(ctx, s))

	_, err := store.Get(ctx, "tok")
	require.ErrorIs(t, err, session.ErrExpired)
	require.Equal(t, 0, store.Len())
}

func TestRedisStore_TTL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, "sess")
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, session.New("id", "tok", time.Now().Add(time.Hour))))
	require.True(t, mr.Exists("sess:tok"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "tok")
	require.ErrorIs(t, err, session.ErrNotFound)

	err = store.Create(ctx, session.New("id2", "tok2", time.Now().Add(-time.Second)))
	require.ErrorIs(t, err, session.ErrExpired)
}

func TestMemoryStore_JanitorPurgesUnreadSessions(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(session.WithCleanupInterval(10 * time.Millisecond))
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	for i := range 50 {
		s := session.New(fmt.Sprintf("id-%d", i), fmt.Sprintf("tok-%d", i), time.Now().Add(5*time.Millisecond))
		require.NoError(t, store.Create(ctx, s))
	}
	live := session.New("live", "tok-live", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, live))

	require.Eventually(t, func() bool { return store.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	got, err := store.Get(ctx, "tok-live")
	require.NoError(t, err)
	require.Equal(t, "live", got.ID)
}

func TestMemoryStore_Close(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	disabled := session.NewMemoryStore(session.WithCleanupInterval(0))
	require.NoError(t, disabled.Close())
}
