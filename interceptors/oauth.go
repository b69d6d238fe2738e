package interceptors

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/oauth"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

const (
	oauthStateCookie = "pp_oauth_state"
	oauthStateMaxAge = 600 // seconds
)

type oauthState struct {
	State    string `json:"state"`
	Provider string `json:"provider"`
	Next     string `json:"next,omitempty"`
}

// serveOAuth answers signin/{provider}, callback/{provider} and signout
// under the API auth prefix. Other paths are not handled.
func (g *authGuard) serveOAuth(x *internal.Exchange, path string) (bool, error) {
	rest, ok := strings.CutPrefix(path, g.settings.APIAuthPrefix+"/")
	if !ok {
		return false, nil
	}

	action, name, _ := strings.Cut(strings.Trim(rest, "/"), "/")
	switch action {
	case "signout":
		if name != "" {
			return false, nil
		}
		return true, g.signOut(x)
	case "signin", "callback":
		if name == "" || strings.Contains(name, "/") {
			return false, nil
		}
		p, ok := g.providers[name]
		if !ok {
			return true, internal.ErrNotFound("", internal.WithError(fmt.Errorf("%w: %s", oauth.ErrUnknownProvider, name)))
		}
		if action == "signin" {
			return true, g.signIn(x, p)
		}
		return true, g.callback(x, p)
	}
	return false, nil
}

func (g *authGuard) signIn(x *internal.Exchange, p oauth.Provider) error {
	state := oauthState{
		State:    randomState(),
		Provider: p.Name(),
		Next:     safeNext(x.Request().URL.Query().Get("next")),
	}
	if err := x.Cookies().SetJSON(x.Response(), oauthStateCookie, state, oauthStateMaxAge); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return x.Redirect(http.StatusFound, p.AuthCodeURL(state.State))
}

func (g *authGuard) callback(x *internal.Exchange, p oauth.Provider) error {
	ctx := x.Context()
	r := x.Request()
	q := r.URL.Query()

	var saved oauthState
	err := x.Cookies().GetJSON(r, oauthStateCookie, &saved)
	x.Cookies().Delete(x.Response(), oauthStateCookie)

	fail := func(msg string, err error) error {
		logAuthFailure(x, msg, err, slog.String("provider", p.Name()))
		return x.Redirect(http.StatusSeeOther, g.settings.SigninPath+"?error=oauth")
	}

	switch {
	case err != nil:
		return fail("oauth state cookie unreadable", err)
	case q.Get("error") != "":
		return fail("oauth provider refused sign-in", fmt.Errorf("%w: %s", ErrProviderDenied, q.Get("error")))
	case saved.Provider != p.Name() || subtle.ConstantTimeCompare([]byte(saved.State), []byte(q.Get("state"))) != 1:
		return fail("oauth state rejected", ErrStateMismatch)
	case q.Get("code") == "":
		return fail("oauth callback rejected", ErrMissingCode)
	}

	token, err := p.Exchange(ctx, q.Get("code"))
	if err != nil {
		return fail("oauth code exchange failed", err)
	}
	user, err := p.FetchUserInfo(ctx, token)
	if err != nil {
		return fail("oauth user lookup failed", err)
	}

	sess, err := x.AuthenticateSession(user.Provider + ":" + user.ID)
	if err != nil {
		return fail("failed to authenticate session", err)
	}
	sess.SetValue(UserSessionKey, userToMap(user))

	if g.settings.OnSignIn != nil {
		if err := g.settings.OnSignIn(x, user); err != nil {
			logAuthFailure(x, "sign-in hook failed", err, slog.String("provider", p.Name()))
		}
	}

	x.Logger().InfoContext(ctx, "user signed in",
		slog.String("provider", p.Name()),
		slog.String("user_id", user.ID),
	)

	next := saved.Next
	if next == "" {
		next = g.settings.DefaultSigninRedirect
	}
	return x.Redirect(http.StatusSeeOther, next)
}

func (g *authGuard) signOut(x *internal.Exchange) error {
	if g.settings.OnSignOut != nil {
		g.settings.OnSignOut(x)
	}
	if err := x.DestroySession(); err != nil && !errors.Is(err, session.ErrNotConfigured) {
		logAuthFailure(x, "failed to destroy session", err)
	}
	return x.Redirect(http.StatusSeeOther, g.settings.DefaultSignoutRedirect)
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func userToMap(u *oauth.UserInfo) map[string]any {
	return map[string]any{
		"provider": u.Provider,
		"id":       u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"picture":  u.Picture,
	}
}

func userFromSession(sess *session.Session) *oauth.UserInfo {
	m, ok := sess.Values[UserSessionKey].(map[string]any)
	if !ok {
		return nil
	}
	str := func(k string) string {
		v, _ := m[k].(string)
		return v
	}
	return &oauth.UserInfo{
		Provider: str("provider"),
		ID:       str("id"),
		Email:    str("email"),
		Name:     str("name"),
		Picture:  str("picture"),
	}
}
