package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/middlewares"
)

func newExchange(t *testing.T, req *http.Request) (*internal.Exchange, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	return internal.NewExchange(rec, req), rec
}

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("recovers from panic and returns PanicError", func(t *testing.T) {
		t.Parallel()

		x, _ := newExchange(t, httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Recover()(func(*internal.Exchange) error {
			panic("test panic")
		})

		err := handler(x)
		require.Error(t, err)
		require.True(t, middlewares.IsPanicError(err))

		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		require.Equal(t, "test panic", pe.Value)
		require.NotEmpty(t, pe.Stack)
		require.Equal(t, pe.Stack, pe.StackTrace())
		require.Equal(t, "panic: test panic", pe.Error())
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		t.Parallel()

		x, _ := newExchange(t, httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Recover()(func(*internal.Exchange) error {
			return nil
		})

		require.NoError(t, handler(x))
	})

	t.Run("keeps handler errors untouched", func(t *testing.T) {
		t.Parallel()

		x, _ := newExchange(t, httptest.NewRequest(http.MethodGet, "/", nil))
		sentinel := errors.New("boom")

		handler := middlewares.Recover()(func(*internal.Exchange) error {
			return sentinel
		})

		err := handler(x)
		require.ErrorIs(t, err, sentinel)
		require.False(t, middlewares.IsPanicError(err))
	})

	t.Run("respects DisablePrintStack option", func(t *testing.T) {
		t.Parallel()

		x, _ := newExchange(t, httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Recover(middlewares.WithRecoverDisablePrintStack())(func(*internal.Exchange) error {
			panic("test panic")
		})

		pe, ok := middlewares.AsPanicError(handler(x))
		require.True(t, ok)
		require.Nil(t, pe.Stack)
	})

	t.Run("limits stack size", func(t *testing.T) {
		t.Parallel()

		x, _ := newExchange(t, httptest.NewRequest(http.MethodGet, "/", nil))

		handler := middlewares.Recover(middlewares.WithRecoverStackSize(64))(func(*internal.Exchange) error {
			panic("test panic")
		})

		pe, ok := middlewares.AsPanicError(handler(x))
		require.True(t, ok)
		require.LessOrEqual(t, len(pe.Stack), 64)
	})

	t.Run("error panic unwraps", func(t *testing.T) {
		t.Parallel()

		x, _ := newExchange(t, httptest.NewRequest(http.MethodGet, "/", nil))
		cause := errors.New("cause")

		handler := middlewares.Recover()(func(*internal.Exchange) error {
			panic(cause)
		})

		err := handler(x)
		require.ErrorIs(t, err, cause)
	})
}

func TestPanicErrorHelpers(t *testing.T) {
	t.Parallel()

	require.False(t, middlewares.IsPanicError(http.ErrNoCookie))

	_, ok := middlewares.AsPanicError(http.ErrNoCookie)
	require.False(t, ok)

	require.Equal(t, "panic: 42", (&middlewares.PanicError{Value: 42}).Error())
	require.Equal(t, "panic: <nil>", (&middlewares.PanicError{}).Error())
}
