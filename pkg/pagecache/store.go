package pagecache

import (
	"context"
	"time"
)

// Entry is a rendered page kept for later requests to the same URI.
type Entry struct {
	ExpiresAt time.Time `json:"expires_at"`
	URI       string    `json:"uri"`
	Content   string    `json:"content"`
	Layout    string    `json:"layout,omitempty"` // root layout id of the render
}

// FreshAt reports whether the entry may be served at the given instant.
func (e Entry) FreshAt(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store persists rendered pages.
type Store interface {
	// Get returns the entry for uri.
	// Returns ErrNotFound when the entry is missing or no longer fresh.
	Get(ctx context.Context, uri string) (Entry, error)

	// Set stores e under e.URI, replacing any previous entry.
	Set(ctx context.Context, e Entry) error

	// Delete removes the entry for uri if present.
	Delete(ctx context.Context, uri string) error

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// Close releases background resources.
	Close() error
}
