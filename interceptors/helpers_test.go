package interceptors_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/cookie"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

const testSecret = "test-secret"

type env struct {
	sessions *internal.SessionManager
	store    *session.MemoryStore
	cookies  *cookie.Manager
}

func newEnv() *env {
	store := session.NewMemoryStore()
	return &env{
		store:    store,
		sessions: internal.NewSessionManager(store, internal.WithSessionSecret(testSecret)),
		cookies:  cookie.New(cookie.WithSecret(testSecret)),
	}
}

func (e *env) exchange(t *testing.T, req *http.Request, production bool) (*internal.Exchange, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	x := internal.NewExchange(rec, req,
		internal.WithExchangeSessions(e.sessions),
		internal.WithExchangeCookies(e.cookies),
		internal.WithExchangeProduction(production),
	)
	return x, rec
}

// carry copies Set-Cookie headers of a response into the next request.
func carry(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	last := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		last[c.Name] = c
	}
	for _, c := range last {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}
