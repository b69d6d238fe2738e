package internal

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/pageforge/pkg/metrics"
)

// Verdict is an interceptor's decision about the request.
type Verdict int

const (
	// Continue passes the request to the next interceptor.
	Continue Verdict = iota
	// Handled means the interceptor produced the response; the chain ends.
	Handled
)

// Interceptor inspects a request before page dispatch and may answer it.
type Interceptor interface {
	Name() string
	Intercept(x *Exchange) (Verdict, error)
}

type interceptorFunc struct {
	fn   func(x *Exchange) (Verdict, error)
	name string
}

func (f interceptorFunc) Name() string                           { return f.name }
func (f interceptorFunc) Intercept(x *Exchange) (Verdict, error) { return f.fn(x) }

// InterceptorFunc adapts a function to the Interceptor interface.
func InterceptorFunc(name string, fn func(x *Exchange) (Verdict, error)) Interceptor {
	return interceptorFunc{name: name, fn: fn}
}

// Chain is an ordered list of interceptors.
// The interceptor added last runs first.
type Chain struct {
	metrics *metrics.Metrics
	links   []Interceptor
}

// NewChain creates a chain from interceptors in registration order.
func NewChain(links ...Interceptor) *Chain {
	c := &Chain{}
	c.Add(links...)
	return c
}

// Add registers interceptors. Nil values are ignored.
func (c *Chain) Add(links ...Interceptor) {
	for _, l := range links {
		if l != nil {
			c.links = append(c.links, l)
		}
	}
}

// Order returns the interceptors in execution order.
func (c *Chain) Order() []Interceptor {
	out := slices.Clone(c.links)
	slices.Reverse(out)
	return out
}

// Then returns a handler running the chain in front of core.
// WebSocket upgrade requests skip every interceptor.
func (c *Chain) Then(core HandlerFunc) HandlerFunc {
	order := c.Order()
	return func(x *Exchange) error {
		if isUpgrade(x.Request()) {
			return core(x)
		}
		for _, i := range order {
			v, err := i.Intercept(x)
			if err != nil {
				return err
			}
			if v == Handled {
				c.metrics.Intercepted(i.Name())
				return nil
			}
		}
		return core(x)
	}
}

// isUpgrade reports whether r asks to switch to a non-HTTP protocol.
func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		headerHasToken(r.Header, "Connection", "upgrade")
}

func headerHasToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for part := range strings.SplitSeq(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}
