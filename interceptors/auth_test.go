package interceptors_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/pageforge/interceptors"
	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/oauth"
)

type fakeProvider struct {
	exchangeErr error
	user        oauth.UserInfo
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "at-" + code}, nil
}

func (p *fakeProvider) FetchUserInfo(context.Context, *oauth2.Token) (*oauth.UserInfo, error) {
	u := p.user
	return &u, nil
}

func intercept(t *testing.T, e *env, i internal.Interceptor, req *http.Request) (internal.Verdict, *httptest.ResponseRecorder, *internal.Exchange) {
	t.Helper()
	x, rec := e.exchange(t, req, false)
	v, err := i.Intercept(x)
	require.NoError(t, err)
	if x.Written() {
		return v, rec, x
	}
	require.NoError(t, x.HTML(http.StatusOK, "ok"))
	return v, rec, x
}

// signIn authenticates a session directly and returns its cookies.
func signIn(t *testing.T, e *env, role string) *httptest.ResponseRecorder {
	t.Helper()
	x, rec := e.exchange(t, httptest.NewRequest(http.MethodGet, "/", nil), false)
	sess, err := x.AuthenticateSession("user-1")
	require.NoError(t, err)
	if role != "" {
		sess.SetValue("role", role)
	}
	require.NoError(t, x.HTML(http.StatusOK, "ok"))
	return rec
}

func TestAuth_Classification(t *testing.T) {
	t.Parallel()

	settings := interceptors.AuthSettings{
		PrivateRoutes: []string{"/dashboard/*", "/settings"},
		IsRoleBased:   true,
		RoleRoutes:    map[string][]string{"/admin/*": {"admin"}},
	}

	tests := []struct {
		name     string
		path     string
		role     string
		signedIn bool
		verdict  internal.Verdict
		location string
	}{
		{name: "public root", path: "/", verdict: internal.Continue},
		{name: "unlisted route", path: "/about", verdict: internal.Continue},
		{name: "static asset skipped", path: "/css/app.css", verdict: internal.Continue},
		{name: "auth route anonymous", path: "/signin", verdict: internal.Continue},
		{name: "auth route signed in", path: "/signup", signedIn: true, verdict: internal.Handled, location: "/dashboard"},
		{name: "private anonymous", path: "/dashboard/reports", verdict: internal.Handled, location: "/signin?next=%2Fdashboard%2Freports"},
		{name: "private prefix base", path: "/dashboard", verdict: internal.Handled, location: "/signin?next=%2Fdashboard"},
		{name: "private exact", path: "/settings", verdict: internal.Handled, location: "/signin?next=%2Fsettings"},
		{name: "exact does not prefix", path: "/settings/profile", verdict: internal.Continue},
		{name: "private signed in", path: "/dashboard", signedIn: true, verdict: internal.Continue},
		{name: "role anonymous", path: "/admin/users", verdict: internal.Handled, location: "/signin?next=%2Fadmin%2Fusers"},
		{name: "role missing", path: "/admin/users", signedIn: true, role: "user", verdict: internal.Handled, location: "/unauthorized"},
		{name: "role granted", path: "/admin/users", signedIn: true, role: "admin", verdict: internal.Continue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.signedIn {
				req = carry(signIn(t, e, tt.role), req)
			}

			v, rec, x := intercept(t, e, interceptors.Auth(settings), req)
			require.Equal(t, tt.verdict, v)
			if tt.location != "" {
				require.Equal(t, http.StatusSeeOther, rec.Code)
				require.Equal(t, tt.location, rec.Header().Get("Location"))
			}
			if tt.verdict == internal.Continue && !tt.signedIn {
				require.False(t, interceptors.AuthStateFrom(x.Context()).Authenticated)
			}
		})
	}
}

func TestAuth_NextSurvivesSpecialCharacters(t *testing.T) {
	t.Parallel()
	e := newEnv()

	settings := interceptors.AuthSettings{PrivateRoutes: []string{"/dashboard/*"}}
	req := httptest.NewRequest(http.MethodGet, "/dashboard/q%3Fa=1&b%23frag", nil)

	v, rec, _ := intercept(t, e, interceptors.Auth(settings), req)
	require.Equal(t, internal.Handled, v)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/signin", loc.Path)
	require.Equal(t, "/dashboard/q?a=1&b#frag", loc.Query().Get("next"))
	require.Empty(t, loc.Fragment)
}

func TestAuth_AllRoutesPrivate(t *testing.T) {
	t.Parallel()
	e := newEnv()

	failed := false
	auth := interceptors.Auth(interceptors.AuthSettings{
		IsAllRoutesPrivate: true,
		OnAuthFailure: func(w http.ResponseWriter, r *http.Request) {
			failed = true
			w.WriteHeader(http.StatusUnauthorized)
		},
	})

	v, rec, _ := intercept(t, e, auth, httptest.NewRequest(http.MethodGet, "/anything", nil))
	require.Equal(t, internal.Handled, v)
	require.True(t, failed)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	v, _, _ = intercept(t, e, auth, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, internal.Continue, v)
}

func TestAuth_StateForSignedInUser(t *testing.T) {
	t.Parallel()
	e := newEnv()

	req := carry(signIn(t, e, "editor"), httptest.NewRequest(http.MethodGet, "/", nil))
	_, _, x := intercept(t, e, interceptors.Auth(interceptors.DefaultAuthSettings()), req)

	state := interceptors.AuthStateFrom(x.Context())
	require.True(t, state.Authenticated)
	require.Equal(t, "user-1", state.UserID)
	require.Equal(t, "editor", state.Role)
}

func TestAuth_OAuthFlow(t *testing.T) {
	t.Parallel()
	e := newEnv()

	var signedIn *oauth.UserInfo
	provider := &fakeProvider{user: oauth.UserInfo{Provider: "fake", ID: "42", Email: "a@b.test", Name: "Ada"}}
	auth := interceptors.Auth(interceptors.AuthSettings{
		Providers: []oauth.Provider{provider},
		OnSignIn: func(x *internal.Exchange, user *oauth.UserInfo) error {
			signedIn = user
			sess, err := x.Session()
			if err != nil {
				return err
			}
			sess.SetValue("role", "admin")
			return nil
		},
	})

	// Step 1: signin redirects to the provider with a state cookie.
	v, rec, _ := intercept(t, e, auth, httptest.NewRequest(http.MethodGet, "/api/auth/signin/fake?next=/reports", nil))
	require.Equal(t, internal.Handled, v)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "idp.test", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	// Step 2: callback authenticates and honours next.
	cb := carry(rec, httptest.NewRequest(http.MethodGet, "/api/auth/callback/fake?code=abc&state="+state, nil))
	v, rec, _ = intercept(t, e, auth, cb)
	require.Equal(t, internal.Handled, v)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/reports", rec.Header().Get("Location"))
	require.NotNil(t, signedIn)
	require.Equal(t, "42", signedIn.ID)

	// Step 3: the session cookie now identifies the user.
	_, _, x := intercept(t, e, auth, carry(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	st := interceptors.AuthStateFrom(x.Context())
	require.True(t, st.Authenticated)
	require.Equal(t, "fake:42", st.UserID)
	require.Equal(t, "admin", st.Role)
	require.NotNil(t, st.User)
	require.Equal(t, "a@b.test", st.User.Email)

	// Step 4: signout destroys the session.
	signoutReq := carry(rec, httptest.NewRequest(http.MethodGet, "/api/auth/signout", nil))
	v, out, _ := intercept(t, e, auth, signoutReq)
	require.Equal(t, internal.Handled, v)
	require.Equal(t, "/signin", out.Header().Get("Location"))

	_, _, x = intercept(t, e, auth, carry(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	require.False(t, interceptors.AuthStateFrom(x.Context()).Authenticated)
}

func TestAuth_OAuthFailures(t *testing.T) {
	t.Parallel()

	t.Run("state mismatch", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		auth := interceptors.Auth(interceptors.AuthSettings{Providers: []oauth.Provider{&fakeProvider{}}})

		_, rec, _ := intercept(t, e, auth, httptest.NewRequest(http.MethodGet, "/api/auth/signin/fake", nil))
		cb := carry(rec, httptest.NewRequest(http.MethodGet, "/api/auth/callback/fake?code=abc&state=forged", nil))

		v, rec, x := intercept(t, e, auth, cb)
		require.Equal(t, internal.Handled, v)
		require.Equal(t, "/signin?error=oauth", rec.Header().Get("Location"))
		require.False(t, interceptors.AuthStateFrom(x.Context()).Authenticated)
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		auth := interceptors.Auth(interceptors.AuthSettings{Providers: []oauth.Provider{&fakeProvider{}}})

		_, rec, _ := intercept(t, e, auth, httptest.NewRequest(http.MethodGet, "/api/auth/signin/fake", nil))
		cb := carry(rec, httptest.NewRequest(http.MethodGet, "/api/auth/callback/fake?error=access_denied", nil))

		_, rec, _ = intercept(t, e, auth, cb)
		require.Equal(t, "/signin?error=oauth", rec.Header().Get("Location"))
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		auth := interceptors.Auth(interceptors.AuthSettings{Providers: []oauth.Provider{&fakeProvider{}}})

		x, _ := e.exchange(t, httptest.NewRequest(http.MethodGet, "/api/auth/signin/nope", nil), false)
		v, err := auth.Intercept(x)
		require.Equal(t, internal.Handled, v)
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusNotFound, httpErr.Code)
	})

	t.Run("other prefix paths fall through", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		auth := interceptors.Auth(interceptors.AuthSettings{Providers: []oauth.Provider{&fakeProvider{}}})

		v, _, _ := intercept(t, e, auth, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
		require.Equal(t, internal.Continue, v)
	})
}

func TestDefaultAuthSettings(t *testing.T) {
	t.Parallel()

	s := interceptors.DefaultAuthSettings()
	require.Equal(t, []string{"/"}, s.PublicRoutes)
	require.Equal(t, []string{"/signin", "/signup"}, s.AuthRoutes)
	require.Equal(t, "/dashboard", s.DefaultSigninRedirect)
	require.Equal(t, "/signin", s.DefaultSignoutRedirect)
	require.Equal(t, "/api/auth", s.APIAuthPrefix)
	require.Equal(t, "role", s.RoleIdentifier)
	require.False(t, s.IsAllRoutesPrivate)
}
