package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pageforge/pkg/cookie"
	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "session"
	defaultSessionLifetime   = 7 * time.Hour
)

// SessionManager handles session lifecycle and the token cookie.
// The cookie carries only a signed token; session data lives in the store.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieName string
	secret     string
	domain     string
	lifetime   time.Duration
	secure     bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		lifetime:   defaultSessionLifetime,
	}

	for _, opt := range opts {
		opt(sm)
	}

	sm.cookies = cookie.New(
		cookie.WithSecret(sm.secret),
		cookie.WithDomain(sm.domain),
		cookie.WithSecure(sm.secure),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionSecret sets the key the token cookie is signed with.
// Without a secret the token is stored unsigned.
func WithSessionSecret(secret string) SessionOption {
	return func(sm *SessionManager) {
		sm.secret = secret
	}
}

// WithSessionLifetime sets how long a session and its cookie live.
func WithSessionLifetime(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.lifetime = d
		}
	}
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// SetLogger sets the logger for session events. Called by App after initialization.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// CookieName returns the session cookie name.
func (sm *SessionManager) CookieName() string { return sm.cookieName }

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store { return sm.store }

// readToken extracts the session token from the request cookie.
func (sm *SessionManager) readToken(r *http.Request) (string, error) {
	if sm.secret == "" {
		return sm.cookies.Get(r, sm.cookieName)
	}
	return sm.cookies.GetSigned(r, sm.cookieName)
}

// LoadSession loads an existing session from the request cookie.
// Returns nil, nil if no session cookie exists.
// A tampered cookie yields session.ErrInvalidToken.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.readToken(r)
	if err != nil {
		if errors.Is(err, cookie.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Join(session.ErrInvalidToken, err)
	}
	if token == "" {
		return nil, nil
	}

	sess, err := sm.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	sess.LastActiveAt = time.Now()
	return sess, nil
}

// CreateSession creates and stores a fresh anonymous session.
func (sm *SessionManager) CreateSession(ctx context.Context) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	sess := session.New(uuid.NewString(), token, time.Now().Add(sm.lifetime))
	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// SaveSession persists a dirty session.
func (sm *SessionManager) SaveSession(ctx context.Context, sess *session.Session) error {
	if sess == nil || !sess.IsDirty() {
		return nil
	}
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// WriteCookie appends the session cookie to the response.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *session.Session) error {
	maxAge := int(sm.lifetime / time.Second)
	if sm.secret == "" {
		sm.cookies.Set(w, sm.cookieName, sess.Token, maxAge)
		return nil
	}
	return sm.cookies.SetSigned(w, sm.cookieName, sess.Token, maxAge)
}

// RotateToken moves the session to a new token.
// Called after authentication so a token planted before sign-in stops working.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return err
	}
	sess.Token = newToken
	if err := sm.store.Create(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	if err := sm.store.Delete(ctx, oldToken); err != nil {
		sm.logger.WarnContext(ctx, "failed to delete rotated session token",
			slog.String("session_id", sess.ID), slog.Any("error", err))
	}
	sess.ClearDirty()
	return nil
}

// DestroySession removes the session from the store.
func (sm *SessionManager) DestroySession(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	return sm.store.Delete(ctx, sess.Token)
}

// DeleteCookie clears the session cookie.
func (sm *SessionManager) DeleteCookie(w http.ResponseWriter) {
	sm.cookies.Delete(w, sm.cookieName)
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
