package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()
		_, err := Open(ctx, "")
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()
		_, err := Open(ctx, "http://localhost:6379")
		require.ErrorIs(t, err, ErrFailedToParseURL)
	})

	t.Run("connects to server", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client, err := Open(ctx, "redis://"+mr.Addr()+"/0", WithPoolSize(2))
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, Healthcheck(client)(ctx))
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := Open(ctx, "redis://"+addr, WithRetry(2, time.Millisecond), WithTimeouts(50*time.Millisecond, 50*time.Millisecond))
		require.ErrorIs(t, err, ErrConnectionFailed)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrHealthcheckFailed)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdown(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	require.ErrorIs(t, Shutdown(closerFunc(func() error { return boom }))(context.Background()), boom)
}
