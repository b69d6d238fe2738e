package internal

import (
	"context"
	"net/http"
)

// BuildInput assembles the arguments for a page entry function.
// Path params are handed over only when present, the request only when declared,
// and each remaining declared parameter only when its query key is present.
// Variadic parameters and a parameter named "kwargs" are never bound.
func BuildInput(p *Page, r *http.Request, pathParams map[string]string, rc *RequestContext) Input {
	in := Input{State: rc, Args: make(map[string]any)}
	if len(pathParams) > 0 {
		in.Path = pathParams
	}
	if p.declares(requestParamName) {
		in.Request = r
	}

	query := r.URL.Query()
	for _, prm := range p.Params {
		if prm.Name == requestParamName || prm.Name == kwargsParamName || prm.Variadic {
			continue
		}
		if v, ok := CoerceQuery(query, prm); ok {
			in.Args[prm.Name] = v
		}
	}

	if rc != nil {
		rc.Args = in.Args
	}
	return in
}

// Invoker resolves handler units and runs their entry functions.
type Invoker struct {
	registry *Registry
}

// NewInvoker creates an Invoker backed by registry.
func NewInvoker(registry *Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Invoke loads the handler unit for dir, calls it and classifies the result.
// A missing unit or entry function is returned as an error, not as a PageResult.
func (inv *Invoker) Invoke(ctx context.Context, dir string, r *http.Request, pathParams map[string]string, rc *RequestContext) (PageResult, *Page, error) {
	page, err := inv.registry.Lookup(ctx, dir)
	if err != nil {
		return PageResult{}, nil, err
	}

	in := BuildInput(page, r, pathParams, rc)
	ctx = WithRequestContext(ctx, rc)
	v, err := page.Handler(ctx, in)
	return Classify(ctx, v, err), page, nil
}
