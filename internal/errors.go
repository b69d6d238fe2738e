package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDuplicateRoute    = errors.New("pageforge: duplicate route pattern")
	ErrDuplicateEndpoint = errors.New("pageforge: duplicate endpoint name")
	ErrInvalidRouteIndex = errors.New("pageforge: invalid route index")
	ErrHandlerLoad       = errors.New("pageforge: failed to load page handler")
	ErrLayoutRender      = errors.New("pageforge: failed to render layout")
	ErrStaticPage        = errors.New("pageforge: failed to read static page")
	ErrNoExchange        = errors.New("pageforge: request has no exchange")
)

// HTTPError represents an HTTP error with all data needed for rendering.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
// An empty message defaults to the status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrRequestTooLarge(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, message, opts...)
}

func ErrNotImplemented(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotImplemented, message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// MissingHandlerError reports a route whose handler unit could not be found
// or does not expose an entry function.
type MissingHandlerError struct {
	Dir    string
	Reason string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("pageforge: no page handler for %q: %s", e.Dir, e.Reason)
}

// IsMissingHandler reports whether err carries a MissingHandlerError.
func IsMissingHandler(err error) bool {
	var target *MissingHandlerError
	return errors.As(err, &target)
}

// StackTracer is implemented by errors that captured a stack trace,
// such as recovered panics.
type StackTracer interface {
	StackTrace() []byte
}
