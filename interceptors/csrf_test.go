package interceptors_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/interceptors"
	"github.com/dmitrymomot/pageforge/internal"
)

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestCSRF(t *testing.T) {
	t.Parallel()

	t.Run("mints token and appends cookie", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		x, rec := e.exchange(t, httptest.NewRequest(http.MethodGet, "/", nil), false)

		v, err := interceptors.CSRF().Intercept(x)
		require.NoError(t, err)
		require.Equal(t, internal.Continue, v)

		token := interceptors.CSRFToken(x.Context())
		require.Regexp(t, hex64, token)

		x.Response().Header().Add("Set-Cookie", "theme=dark")
		require.NoError(t, x.HTML(http.StatusOK, "ok"))

		c := cookieNamed(rec, interceptors.CSRFCookieName)
		require.NotNil(t, c)
		require.Equal(t, token, c.Value)
		require.Equal(t, "/", c.Path)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.False(t, c.Secure)
		require.NotNil(t, cookieNamed(rec, "theme"), "handler cookie must survive")
	})

	t.Run("secure in production", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		x, rec := e.exchange(t, httptest.NewRequest(http.MethodGet, "/", nil), true)

		_, err := interceptors.CSRF().Intercept(x)
		require.NoError(t, err)
		require.NoError(t, x.HTML(http.StatusOK, "ok"))

		require.True(t, cookieNamed(rec, interceptors.CSRFCookieName).Secure)
	})

	t.Run("token is stable across requests", func(t *testing.T) {
		t.Parallel()
		e := newEnv()

		x1, rec1 := e.exchange(t, httptest.NewRequest(http.MethodGet, "/", nil), false)
		_, err := interceptors.CSRF().Intercept(x1)
		require.NoError(t, err)
		require.NoError(t, x1.HTML(http.StatusOK, "ok"))
		first := interceptors.CSRFToken(x1.Context())

		x2, _ := e.exchange(t, carry(rec1, httptest.NewRequest(http.MethodGet, "/about", nil)), false)
		_, err = interceptors.CSRF().Intercept(x2)
		require.NoError(t, err)
		require.Equal(t, first, interceptors.CSRFToken(x2.Context()))

		sess, err := x2.Session()
		require.NoError(t, err)
		require.Equal(t, first, sess.Values[interceptors.CSRFSessionKey])
	})

	t.Run("works without sessions", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		x := internal.NewExchange(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := interceptors.CSRF().Intercept(x)
		require.NoError(t, err)
		require.NoError(t, x.HTML(http.StatusOK, "ok"))
		require.Regexp(t, hex64, cookieNamed(rec, interceptors.CSRFCookieName).Value)
	})
}
