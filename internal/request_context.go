package internal

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// RequestContext is the render state of one page dispatch.
// It is created fresh for every request and handed to the page handler,
// so concurrent requests never observe each other's metadata or injections.
type RequestContext struct {
	PathParams map[string]string
	Query      url.Values
	Args       map[string]any

	metadata *Metadata
	head     []string
	body     []string
	mu       sync.Mutex
}

// NewRequestContext creates an empty render state.
func NewRequestContext(pathParams map[string]string, query url.Values) *RequestContext {
	return &RequestContext{
		PathParams: pathParams,
		Query:      query,
		Args:       make(map[string]any),
	}
}

// SetMetadata replaces the dynamic metadata for this render.
// It is merged over the page's static metadata.
func (rc *RequestContext) SetMetadata(m Metadata) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.metadata = &m
}

// Metadata returns the dynamic metadata, or nil when none was set.
func (rc *RequestContext) Metadata() *Metadata {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.metadata
}

// InjectHead queues a fragment for the document head.
func (rc *RequestContext) InjectHead(fragment string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.head = append(rc.head, fragment)
}

// InjectBody queues a fragment for the end of the document body.
func (rc *RequestContext) InjectBody(fragment string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.body = append(rc.body, fragment)
}

// Head returns the queued head fragments.
func (rc *RequestContext) Head() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.head...)
}

// Body returns the queued body fragments.
func (rc *RequestContext) Body() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.body...)
}

// applyInjections places head fragments before </head> and body fragments
// before </body>. Without those tags head fragments are prepended and
// body fragments appended.
func (rc *RequestContext) applyInjections(html string) string {
	if rc == nil {
		return html
	}
	if head := rc.Head(); len(head) > 0 {
		html = insertBefore(html, "</head>", strings.Join(head, "\n"), true)
	}
	if body := rc.Body(); len(body) > 0 {
		html = insertBefore(html, "</body>", strings.Join(body, "\n"), false)
	}
	return html
}

func insertBefore(html, tag, fragment string, prependFallback bool) string {
	idx := strings.LastIndex(strings.ToLower(html), tag)
	if idx < 0 {
		if prependFallback {
			return fragment + html
		}
		return html + fragment
	}
	return html[:idx] + fragment + html[idx:]
}

type requestContextKey struct{}

// WithRequestContext stores rc in ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the render state stored in ctx, or nil.
// Components rendered deep inside a page use it to inject into the document.
func RequestContextFrom(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}
