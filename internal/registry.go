package internal

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader produces the Page of a handler unit. It runs at most once per
// successful load; failed loads are retried on the next request.
type Loader func(ctx context.Context) (*Page, error)

// Registry maps route directories to handler units.
// Units are resolved lazily on first request and memoized.
type Registry struct {
	loaders map[string]Loader
	pages   map[string]*Page
	group   singleflight.Group
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]Loader),
		pages:   make(map[string]*Page),
	}
}

// Register binds a loader to a route directory relative to the app root.
func (r *Registry) Register(dir string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeDir(dir)
	r.loaders[key] = l
	delete(r.pages, key)
}

// RegisterPage binds an already built Page to a route directory.
func (r *Registry) RegisterPage(dir string, p *Page) {
	r.Register(dir, func(context.Context) (*Page, error) { return p, nil })
}

// Has reports whether a loader is registered for dir.
func (r *Registry) Has(dir string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[normalizeDir(dir)]
	return ok
}

// Dirs returns every registered directory.
func (r *Registry) Dirs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.loaders))
	for d := range r.loaders {
		out = append(out, d)
	}
	return out
}

// Lookup returns the Page for dir, loading it on first use.
// Concurrent first lookups of the same dir share one load.
func (r *Registry) Lookup(ctx context.Context, dir string) (*Page, error) {
	key := normalizeDir(dir)

	r.mu.RLock()
	p, ok := r.pages[key]
	load, registered := r.loaders[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}
	if !registered {
		return nil, &MissingHandlerError{Dir: key, Reason: "no handler unit registered"}
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.RLock()
		done, ok := r.pages[key]
		r.mu.RUnlock()
		if ok {
			return done, nil
		}

		page, err := load(ctx)
		if err != nil {
			return nil, errors.Join(ErrHandlerLoad, err)
		}
		if page == nil || page.Handler == nil {
			return nil, &MissingHandlerError{Dir: key, Reason: "handler unit has no entry function"}
		}
		r.mu.Lock()
		r.pages[key] = page
		r.mu.Unlock()
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Page), nil
}

// normalizeDir turns "", ".", "/", "./blog/" into a canonical slash form without
// leading or trailing separators. The app root is "".
func normalizeDir(dir string) string {
	dir = strings.ReplaceAll(dir, "\\", "/")
	dir = path.Clean("/" + dir)
	return strings.Trim(dir, "/")
}
