package interceptors

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/oauth"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

// Session keys written by the sign-in flow.
const (
	UserSessionKey = "user"
)

// AuthSettings controls route protection and the OAuth flow.
type AuthSettings struct {
	// RoleRoutes maps a route pattern to the roles allowed on it.
	// Consulted only when IsRoleBased is set.
	RoleRoutes map[string][]string

	// OnSignIn runs after a successful OAuth callback, with the session
	// already authenticated. Typical use: store the user's role.
	OnSignIn func(x *internal.Exchange, user *oauth.UserInfo) error

	// OnSignOut runs before the session is destroyed.
	OnSignOut func(x *internal.Exchange)

	// OnAuthFailure answers unauthenticated requests to private routes.
	// When nil they are redirected to the sign-in page.
	OnAuthFailure func(w http.ResponseWriter, r *http.Request)

	// PrivateRoutes is consulted when IsAllRoutesPrivate is false.
	PrivateRoutes []string
	// PublicRoutes never require a session. Defaults to ["/"].
	PublicRoutes []string
	// AuthRoutes are sign-in pages; signed-in users are sent away from them.
	// Defaults to ["/signin", "/signup"].
	AuthRoutes []string

	// Providers serve {APIAuthPrefix}/signin/{name} and /callback/{name}.
	Providers []oauth.Provider

	DefaultSigninRedirect  string // default "/dashboard"
	DefaultSignoutRedirect string // default "/signin"
	SigninPath             string // default "/signin"
	UnauthorizedPath       string // default "/unauthorized"
	APIAuthPrefix          string // default "/api/auth"
	RoleIdentifier         string // session key holding the role; default "role"

	IsAllRoutesPrivate bool
	IsRoleBased        bool
}

// DefaultAuthSettings returns settings with every default filled in.
func DefaultAuthSettings() AuthSettings {
	var s AuthSettings
	s.withDefaults()
	return s
}

func (s *AuthSettings) withDefaults() {
	if s.PublicRoutes == nil {
		s.PublicRoutes = []string{"/"}
	}
	if s.AuthRoutes == nil {
		s.AuthRoutes = []string{"/signin", "/signup"}
	}
	if s.DefaultSigninRedirect == "" {
		s.DefaultSigninRedirect = "/dashboard"
	}
	if s.DefaultSignoutRedirect == "" {
		s.DefaultSignoutRedirect = "/signin"
	}
	if s.SigninPath == "" {
		s.SigninPath = "/signin"
	}
	if s.UnauthorizedPath == "" {
		s.UnauthorizedPath = "/unauthorized"
	}
	if s.APIAuthPrefix == "" {
		s.APIAuthPrefix = "/api/auth"
	}
	s.APIAuthPrefix = "/" + strings.Trim(s.APIAuthPrefix, "/")
	if s.RoleIdentifier == "" {
		s.RoleIdentifier = "role"
	}
}

type authGuard struct {
	settings  AuthSettings
	providers map[string]oauth.Provider
}

// Auth guards routes by session state and serves the OAuth flow.
// Static asset paths are never inspected.
func Auth(settings AuthSettings) internal.Interceptor {
	settings.withDefaults()
	g := &authGuard{
		settings:  settings,
		providers: make(map[string]oauth.Provider, len(settings.Providers)),
	}
	for _, p := range settings.Providers {
		g.providers[p.Name()] = p
	}
	return internal.InterceptorFunc("auth", g.intercept)
}

func (g *authGuard) intercept(x *internal.Exchange) (internal.Verdict, error) {
	path := x.Request().URL.Path
	if internal.IsStaticPath(path) {
		return internal.Continue, nil
	}

	state := g.loadState(x)
	x.Set(authStateKey{}, state)

	if handled, err := g.serveOAuth(x, path); handled || err != nil {
		return internal.Handled, err
	}

	s := g.settings
	if matchAny(path, s.PublicRoutes) {
		return internal.Continue, nil
	}

	if matchAny(path, s.AuthRoutes) {
		if state.Authenticated {
			return internal.Handled, x.Redirect(http.StatusSeeOther, s.DefaultSigninRedirect)
		}
		return internal.Continue, nil
	}

	if s.IsRoleBased {
		if roles := g.requiredRoles(path); len(roles) > 0 {
			if !state.Authenticated {
				return internal.Handled, x.Redirect(http.StatusSeeOther, g.signinURL(path))
			}
			if !slices.Contains(roles, state.Role) {
				return internal.Handled, x.Redirect(http.StatusSeeOther, s.UnauthorizedPath)
			}
		}
	}

	if g.isPrivate(path) && !state.Authenticated {
		if s.OnAuthFailure != nil {
			s.OnAuthFailure(x.Response(), x.Request())
			return internal.Handled, nil
		}
		return internal.Handled, x.Redirect(http.StatusSeeOther, g.signinURL(path))
	}

	return internal.Continue, nil
}

// isPrivate assumes public and auth routes were already let through.
func (g *authGuard) isPrivate(path string) bool {
	if g.settings.IsAllRoutesPrivate {
		return true
	}
	return matchAny(path, g.settings.PrivateRoutes)
}

func (g *authGuard) requiredRoles(path string) []string {
	var roles []string
	for pattern, allowed := range g.settings.RoleRoutes {
		if matchRoute(path, pattern) {
			roles = append(roles, allowed...)
		}
	}
	return roles
}

func (g *authGuard) signinURL(next string) string {
	return g.settings.SigninPath + "?next=" + url.QueryEscape(next)
}

func (g *authGuard) loadState(x *internal.Exchange) *AuthState {
	state := &AuthState{}
	sess, err := x.Session()
	if err != nil || sess == nil || !sess.IsAuthenticated() {
		return state
	}
	state.Authenticated = true
	state.UserID = *sess.UserID
	state.Role = session.ValueOr(sess, g.settings.RoleIdentifier, "")
	state.User = userFromSession(sess)
	return state
}

// AuthState describes who is making the current request.
type AuthState struct {
	User          *oauth.UserInfo
	UserID        string
	Role          string
	Authenticated bool
}

type authStateKey struct{}

// AuthStateFrom returns the auth state set by the Auth interceptor.
// It is never nil; requests it did not inspect are anonymous.
func AuthStateFrom(ctx context.Context) *AuthState {
	if s, ok := ctx.Value(authStateKey{}).(*AuthState); ok {
		return s
	}
	return &AuthState{}
}

// matchRoute matches exactly, or by prefix when pattern ends in "/*".
func matchRoute(path, pattern string) bool {
	if base, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == pattern
}

func matchAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchRoute(path, p) {
			return true
		}
	}
	return false
}

// safeNext keeps only same-site relative redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" {
		return ""
	}
	return next
}

func logAuthFailure(x *internal.Exchange, msg string, err error, attrs ...any) {
	x.Logger().WarnContext(x.Context(), msg, append(attrs, slog.Any("error", err))...)
}
