package internal

import (
	"context"
	"maps"
	"net/http"
	"time"
)

// PageFunc is the entry function of a handler unit.
// The returned value is classified into a PageResult: see Classify.
type PageFunc func(ctx context.Context, in Input) (any, error)

// Param declares one parameter of a page entry function.
type Param struct {
	Name string
	Type Type

	// Variadic parameters are never bound from the query.
	Variadic bool
}

// P is shorthand for a non-variadic Param.
func P(name string, t Type) Param {
	return Param{Name: name, Type: t}
}

// RequestParam declares that the entry function wants the live request.
var RequestParam = Param{Name: requestParamName, Type: Any}

const (
	requestParamName = "request"
	kwargsParamName  = "kwargs"
)

// Page is a loaded handler unit: its entry function plus optional
// static metadata and cache policy.
type Page struct {
	Handler  PageFunc
	Metadata *Metadata
	Cache    *CacheSettings
	Params   []Param
}

// declares reports whether the entry function declares a parameter named name.
func (p *Page) declares(name string) bool {
	for _, prm := range p.Params {
		if prm.Name == name {
			return true
		}
	}
	return false
}

// CacheSettings is the per-page cache policy.
// A nil Enabled defers to the global setting; a non-positive TTL uses the default.
type CacheSettings struct {
	Enabled *bool
	TTL     time.Duration
}

// CacheOn enables caching for a page with the given TTL.
func CacheOn(ttl time.Duration) *CacheSettings {
	on := true
	return &CacheSettings{Enabled: &on, TTL: ttl}
}

// CacheOff disables caching for a page regardless of the global setting.
func CacheOff() *CacheSettings {
	off := false
	return &CacheSettings{Enabled: &off}
}

// Metadata describes the document: title, description and free-form extras.
type Metadata struct {
	Extra       map[string]string
	Title       string
	Description string
}

// Merge returns m overlaid with over. Non-empty values in over win key by key.
// Either side may be nil.
func (m *Metadata) Merge(over *Metadata) Metadata {
	var out Metadata
	if m != nil {
		out.Title = m.Title
		out.Description = m.Description
		if len(m.Extra) > 0 {
			out.Extra = maps.Clone(m.Extra)
		}
	}
	if over == nil {
		return out
	}
	if over.Title != "" {
		out.Title = over.Title
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	for k, v := range over.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(over.Extra))
		}
		out.Extra[k] = v
	}
	return out
}

// Flatten returns title, description and extras as one map.
// Empty title or description are omitted.
func (m Metadata) Flatten() map[string]string {
	out := make(map[string]string, len(m.Extra)+2)
	if m.Title != "" {
		out["title"] = m.Title
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	maps.Copy(out, m.Extra)
	return out
}

// Input is what a page entry function receives.
type Input struct {
	// Path holds URL path parameters; nil when the route has none.
	Path map[string]string

	// Request is the live request, set only when the page declares RequestParam.
	Request *http.Request

	// Args holds coerced query values for declared parameters whose key was present.
	Args map[string]any

	// State is the per-request render state: metadata and head/body injections.
	State *RequestContext
}

// Has reports whether the named argument was bound.
func (in Input) Has(name string) bool {
	_, ok := in.Args[name]
	return ok
}

// Arg returns the bound argument converted to T.
// ok is false when the argument is absent or holds another type.
func Arg[T any](in Input, name string) (T, bool) {
	v, ok := in.Args[name]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ArgOr returns the bound argument converted to T, or def.
func ArgOr[T any](in Input, name string, def T) T {
	if v, ok := Arg[T](in, name); ok {
		return v
	}
	return def
}
