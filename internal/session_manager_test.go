package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

func sessionExchange(sm *internal.SessionManager, req *http.Request) (*internal.Exchange, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return internal.NewExchange(rec, req, internal.WithExchangeSessions(sm)), rec
}

func withCookies(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	return req
}

func TestSessionManager_Lifecycle(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sm := internal.NewSessionManager(store, internal.WithSessionSecret("secret"))

	x, rec := sessionExchange(sm, httptest.NewRequest(http.MethodGet, "/", nil))
	sess, err := x.EnsureSession()
	require.NoError(t, err)
	sess.SetValue("theme", "dark")
	require.NoError(t, x.HTML(http.StatusOK, "ok"))
	require.NotEmpty(t, rec.Result().Cookies())

	x, _ = sessionExchange(sm, withCookies(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	loaded, err := x.Session()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, "dark", x.SessionSnapshot()["theme"])
}

func TestSessionManager_AuthenticateRotatesToken(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sm := internal.NewSessionManager(store, internal.WithSessionSecret("secret"))

	x, rec := sessionExchange(sm, httptest.NewRequest(http.MethodGet, "/", nil))
	anon, err := x.EnsureSession()
	require.NoError(t, err)
	oldToken := anon.Token
	require.NoError(t, x.HTML(http.StatusOK, "ok"))

	x, rec2 := sessionExchange(sm, withCookies(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	authed, err := x.AuthenticateSession("github:42")
	require.NoError(t, err)
	require.True(t, authed.IsAuthenticated())
	require.NotEqual(t, oldToken, authed.Token)
	require.NoError(t, x.HTML(http.StatusOK, "ok"))

	_, err = store.Get(t.Context(), oldToken)
	require.Error(t, err, "old token must stop working")

	x, _ = sessionExchange(sm, withCookies(rec2, httptest.NewRequest(http.MethodGet, "/", nil)))
	loaded, err := x.Session()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.IsAuthenticated())
}

func TestSessionManager_TamperedCookie(t *testing.T) {
	t.Parallel()

	sm := internal.NewSessionManager(session.NewMemoryStore(), internal.WithSessionSecret("secret"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "forged.value"})

	x, _ := sessionExchange(sm, req)
	sess, err := x.Session()
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Empty(t, x.SessionSnapshot())
}

func TestSessionManager_Destroy(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sm := internal.NewSessionManager(store)

	x, rec := sessionExchange(sm, httptest.NewRequest(http.MethodGet, "/", nil))
	sess, err := x.EnsureSession()
	require.NoError(t, err)
	require.NoError(t, x.HTML(http.StatusOK, "ok"))

	x, rec2 := sessionExchange(sm, withCookies(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	require.NoError(t, x.DestroySession())

	_, err = store.Get(t.Context(), sess.Token)
	require.Error(t, err)

	var cleared bool
	for _, c := range rec2.Result().Cookies() {
		if c.Name == sm.CookieName() && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}

func TestSessionManager_NotConfigured(t *testing.T) {
	t.Parallel()

	x := internal.NewExchange(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := x.Session()
	require.ErrorIs(t, err, session.ErrNotConfigured)
	require.ErrorIs(t, x.DestroySession(), session.ErrNotConfigured)
}
