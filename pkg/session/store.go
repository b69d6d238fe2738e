package session

import "context"

// Store persists sessions, addressed by their cookie token.
type Store interface {
	// Create persists a new session under s.Token.
	Create(ctx context.Context, s *Session) error

	// Get loads a session by token.
	// Returns ErrNotFound if missing and ErrExpired if past its expiry.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves an existing session under s.Token.
	Update(ctx context.Context, s *Session) error

	// Delete removes the session stored under token.
	Delete(ctx context.Context, token string) error
}
