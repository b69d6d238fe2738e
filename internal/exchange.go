package internal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pageforge/pkg/cookie"
	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

// Exchange is one request/response pair travelling through middlewares,
// interceptors and page dispatch. It is not safe for use by more than one
// goroutine at a time.
type Exchange struct {
	request        *http.Request
	response       *ResponseWriter
	logger         *slog.Logger
	cookies        *cookie.Manager
	sessionManager *SessionManager
	session        *session.Session

	production            bool
	sessionLoaded         bool
	sessionHookRegistered bool
}

func newExchange(w http.ResponseWriter, r *http.Request, a *App) *Exchange {
	return NewExchange(w, r,
		WithExchangeLogger(a.logger),
		WithExchangeCookies(a.cookieManager),
		WithExchangeSessions(a.sessionManager),
		WithExchangeProduction(a.production),
	)
}

// ExchangeOption configures a standalone Exchange.
type ExchangeOption func(*Exchange)

// WithExchangeLogger sets the logger.
func WithExchangeLogger(l *slog.Logger) ExchangeOption {
	return func(x *Exchange) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithExchangeCookies sets the cookie manager.
func WithExchangeCookies(m *cookie.Manager) ExchangeOption {
	return func(x *Exchange) {
		if m != nil {
			x.cookies = m
		}
	}
}

// WithExchangeSessions enables session access.
func WithExchangeSessions(sm *SessionManager) ExchangeOption {
	return func(x *Exchange) { x.sessionManager = sm }
}

// WithExchangeProduction sets production mode.
func WithExchangeProduction(on bool) ExchangeOption {
	return func(x *Exchange) { x.production = on }
}

// NewExchange wraps w and r. Apps create one per request; it is exported so
// middlewares and interceptors can be driven on their own.
func NewExchange(w http.ResponseWriter, r *http.Request, opts ...ExchangeOption) *Exchange {
	x := &Exchange{
		response: NewResponseWriter(w),
		logger:   logger.NewNope(),
		cookies:  cookie.New(),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.request = r.WithContext(context.WithValue(r.Context(), exchangeKey{}, x))
	return x
}

type exchangeKey struct{}

// ExchangeFrom returns the Exchange serving ctx, or nil outside the app pipeline.
func ExchangeFrom(ctx context.Context) *Exchange {
	x, _ := ctx.Value(exchangeKey{}).(*Exchange)
	return x
}

// Request returns the current request.
func (x *Exchange) Request() *http.Request { return x.request }

// SetRequest replaces the request seen by everything downstream.
func (x *Exchange) SetRequest(r *http.Request) {
	if r != nil {
		x.request = r
	}
}

// Response returns the response writer.
func (x *Exchange) Response() *ResponseWriter { return x.response }

// Context returns the request context.
func (x *Exchange) Context() context.Context { return x.request.Context() }

// Set stores a request-scoped value in the request context.
func (x *Exchange) Set(key, value any) {
	x.request = x.request.WithContext(context.WithValue(x.request.Context(), key, value))
}

// Get returns a request-scoped value.
func (x *Exchange) Get(key any) any {
	return x.request.Context().Value(key)
}

// Logger returns the app logger.
func (x *Exchange) Logger() *slog.Logger { return x.logger }

// Cookies returns the app cookie manager.
func (x *Exchange) Cookies() *cookie.Manager { return x.cookies }

// Production reports whether the app runs in production mode.
func (x *Exchange) Production() bool { return x.production }

// Written reports whether the response header has been sent.
func (x *Exchange) Written() bool { return x.response.Written() }

// Redirect sends a redirect response.
func (x *Exchange) Redirect(code int, url string) error {
	http.Redirect(x.response, x.request, url, code)
	return nil
}

// HTML writes an HTML body with the given status.
func (x *Exchange) HTML(code int, body string) error {
	x.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	x.response.WriteHeader(code)
	_, err := x.response.Write([]byte(body))
	return err
}

func (x *Exchange) registerSessionHook() {
	if x.sessionHookRegistered || x.sessionManager == nil {
		return
	}
	x.sessionHookRegistered = true
	x.response.OnBeforeWrite(func() {
		// Best-effort save; the response is already on its way.
		if err := x.sessionManager.SaveSession(x.Context(), x.session); err != nil {
			x.logger.ErrorContext(x.Context(), "failed to save session", slog.Any("error", err))
		}
	})
}

// Session returns the current session, loading it from the store if needed.
// Returns nil, nil when the request carries no valid session.
// Returns session.ErrNotConfigured if sessions are not enabled.
func (x *Exchange) Session() (*session.Session, error) {
	if x.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}
	x.registerSessionHook()

	if x.sessionLoaded {
		return x.session, nil
	}

	sess, err := x.sessionManager.LoadSession(x.Context(), x.request)
	x.sessionLoaded = true
	if err != nil {
		x.logger.DebugContext(x.Context(), "discarding session", slog.Any("error", err))
		return nil, nil
	}
	x.session = sess
	return x.session, nil
}

// EnsureSession returns the current session, creating one if needed.
func (x *Exchange) EnsureSession() (*session.Session, error) {
	sess, err := x.Session()
	if err != nil || sess != nil {
		return sess, err
	}

	sess, err = x.sessionManager.CreateSession(x.Context())
	if err != nil {
		return nil, err
	}
	x.session = sess
	if err := x.sessionManager.WriteCookie(x.response, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AuthenticateSession attaches a user to the session and rotates its token.
// Creates a new session if one doesn't exist.
func (x *Exchange) AuthenticateSession(userID string) (*session.Session, error) {
	sess, err := x.EnsureSession()
	if err != nil {
		return nil, err
	}

	sess.SetUser(userID)
	if err := x.sessionManager.RotateToken(x.Context(), sess); err != nil {
		return nil, err
	}
	if err := x.sessionManager.WriteCookie(x.response, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// DestroySession deletes the session and clears its cookie.
func (x *Exchange) DestroySession() error {
	if x.sessionManager == nil {
		return session.ErrNotConfigured
	}
	if _, err := x.Session(); err != nil {
		return err
	}
	if err := x.sessionManager.DestroySession(x.Context(), x.session); err != nil {
		return err
	}
	x.sessionManager.DeleteCookie(x.response)
	x.session = nil
	return nil
}

// SessionSnapshot returns a plain copy of the session values.
// It is empty when there is no session.
func (x *Exchange) SessionSnapshot() map[string]any {
	sess, _ := x.Session()
	if sess == nil {
		return map[string]any{}
	}
	return sess.Snapshot()
}
