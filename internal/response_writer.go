package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records the status and size of a response and runs
// registered hooks once, right before the header goes out. Session
// persistence and the CSRF cookie hang off those hooks.
type ResponseWriter struct {
	http.ResponseWriter
	hooks   []func()
	status  int
	size    int64
	mu      sync.Mutex
	written bool
}

// NewResponseWriter wraps w. A *ResponseWriter is returned as is so hooks
// registered further up are not lost.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite queues fn to run before the header is sent.
// Hooks run in registration order; registering after the header was sent is a no-op.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.written {
		w.hooks = append(w.hooks, fn)
	}
}

// commit sends the header with code unless it was already sent.
// Hooks run outside the lock so they may set headers and cookies.
func (w *ResponseWriter) commit(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	hooks := w.hooks
	w.hooks = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

// WriteHeader sends the header. Later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.commit(code)
}

// Write sends the header with 200 if needed, then b.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit(http.StatusOK)
	n, err := w.ResponseWriter.Write(b)

	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Flush sends the header if needed and flushes buffered data to the client.
func (w *ResponseWriter) Flush() {
	w.commit(http.StatusOK)
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status returns the status code sent, or 200 before anything was written.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Hijack lets WebSocket upgrades that bypass the interceptors take over the connection.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
