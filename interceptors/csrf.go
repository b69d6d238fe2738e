package interceptors

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

const (
	// CSRFSessionKey is the session value holding the token.
	CSRFSessionKey = "csrf_token"
	// CSRFCookieName is the cookie readable by client scripts.
	CSRFCookieName = "pp_csrf"
)

type csrfKey struct{}

// CSRF mints one token per session and mirrors it into a pp_csrf cookie on
// every response. The cookie is appended to the headers already set by
// the handler, never replacing them.
func CSRF() internal.Interceptor {
	return internal.InterceptorFunc("csrf", func(x *internal.Exchange) (internal.Verdict, error) {
		token := sessionCSRFToken(x)
		x.Set(csrfKey{}, token)

		secure := x.Production()
		x.Response().OnBeforeWrite(func() {
			http.SetCookie(x.Response(), &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				SameSite: http.SameSiteLaxMode,
				Secure:   secure,
			})
		})
		return internal.Continue, nil
	})
}

// CSRFToken returns the token of the current request, or "" outside CSRF.
func CSRFToken(ctx context.Context) string {
	v, _ := ctx.Value(csrfKey{}).(string)
	return v
}

func sessionCSRFToken(x *internal.Exchange) string {
	sess, err := x.EnsureSession()
	if err != nil {
		// Without sessions the token lives for one response.
		if !errors.Is(err, session.ErrNotConfigured) {
			x.Logger().WarnContext(x.Context(), "csrf: session unavailable", slog.Any("error", err))
		}
		return newCSRFToken()
	}
	if t, ok := sess.Values[CSRFSessionKey].(string); ok && t != "" {
		return t
	}
	t := newCSRFToken()
	sess.SetValue(CSRFSessionKey, t)
	return t
}

func newCSRFToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
