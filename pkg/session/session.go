package session

import (
	"errors"
	"maps"
	"time"
)

// Session is server-side state bound to a browser by a token cookie.
type Session struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"` // nil = anonymous
	Values       map[string]any `json:"values"`
	ID           string         `json:"id"`
	Token        string         `json:"token"` // cookie value, rotated on sign-in

	dirty bool
	isNew bool
}

// New creates a session. The result is new and dirty.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is attached to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// SetUser attaches a user to the session.
func (s *Session) SetUser(id string) {
	s.UserID = &id
	s.dirty = true
}

// ClearUser detaches the user and drops all values.
func (s *Session) ClearUser() {
	s.UserID = nil
	s.Values = make(map[string]any)
	s.dirty = true
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue returns a stored value.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value. The session becomes dirty only if the key existed.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Snapshot returns a plain copy of the session contents.
// The user id, when set, is exposed under "user_id".
func (s *Session) Snapshot() map[string]any {
	out := make(map[string]any, len(s.Values)+1)
	maps.Copy(out, s.Values)
	if s.IsAuthenticated() {
		out["user_id"] = *s.UserID
	}
	return out
}

// Clone returns a deep enough copy for stores that hand out sessions
// to concurrent requests: the values map is not shared.
func (s *Session) Clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	if c.Values == nil {
		c.Values = make(map[string]any)
	}
	if s.UserID != nil {
		uid := *s.UserID
		c.UserID = &uid
	}
	return &c
}

func (s *Session) IsDirty() bool { return s.dirty }
func (s *Session) ClearDirty()   { s.dirty = false }
func (s *Session) MarkDirty()    { s.dirty = true }
func (s *Session) IsNew() bool   { return s.isNew }
func (s *Session) ClearNew()     { s.isNew = false }

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns a typed session value.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.Join(ErrTypeMismatch, errors.New(key))
	}
	return typed, nil
}

// ValueOr returns a typed session value or def.
func ValueOr[T any](s *Session, key string, def T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return def
	}
	return val
}
