package pagecache

import "errors"

var (
	// ErrNotFound is returned when no fresh entry exists for a URI.
	ErrNotFound = errors.New("pagecache: entry not found")

	// ErrClosed is returned when a store is used after Close.
	ErrClosed = errors.New("pagecache: closed")

	// ErrMarshal is returned when an entry cannot be encoded.
	ErrMarshal = errors.New("pagecache: failed to marshal entry")

	// ErrUnmarshal is returned when a stored entry cannot be decoded.
	ErrUnmarshal = errors.New("pagecache: failed to unmarshal entry")
)
