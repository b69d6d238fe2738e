package session

import "errors"

var (
	// ErrNotConfigured is returned when sessions are used without a manager.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session or value does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrInvalidToken is returned when a session cookie fails verification.
	ErrInvalidToken = errors.New("session: invalid token")

	// ErrTypeMismatch is returned by Value when the stored type differs.
	ErrTypeMismatch = errors.New("session: type mismatch")
)
