// Package internal provides the core types and implementation of the pageforge engine.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/pageforge"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: owns the router, the interceptor chain and the rendering components
//   - Exchange: one request/response pair with lazy session access
//   - Interceptor, Chain: ordered request guards; the one registered last runs first
//   - RouteTable, ResolvedRoute: the route index bound to index files on disk
//   - Registry, Page, Loader: handler units keyed by route directory, loaded lazily
//   - Type, Param: query parameter annotations and their coercion
//   - PageResult: the classified return of a page (raw, stream, content with props, plain, error)
//   - LayoutComposer: nested layout.html composition
//   - CacheGate: rendered page cache keyed by request path
//   - ErrorPresenter: 404, 500 and other error pages
//
// # Request Flow
//
// Every request runs through the middlewares, then the interceptor chain, then the
// router. A page route first consults the cache gate (GET only). On a miss the
// handler unit is invoked, or the static index.html / index.md is read. Content goes
// through the component transformer, the layout chain and the script transformer,
// and the document is sent with an X-PP-Root-Layout header naming the outermost
// layout. Successful GET renders are cached when the page or the global flag allows.
//
// # Page Handlers
//
//	pageforge.WithPage("blog/[slug]", &pageforge.Page{
//	    Params: []pageforge.Param{
//	        pageforge.RequestParam,
//	        pageforge.P("page", pageforge.Int),
//	        pageforge.P("tag", pageforge.List(pageforge.String)),
//	    },
//	    Metadata: &pageforge.Metadata{Title: "Blog"},
//	    Cache:    pageforge.CacheOn(5 * time.Minute),
//	    Handler: func(ctx context.Context, in pageforge.Input) (any, error) {
//	        page := pageforge.ArgOr(in, "page", 1)
//	        in.State.SetMetadata(pageforge.Metadata{Title: in.Path["slug"]})
//	        return pageforge.WithProps(renderPost(in.Path["slug"], page), map[string]any{"wide": true}), nil
//	    },
//	})
//
// Query parameters are bound only when their key is present. Failed conversions keep
// the raw string.
package internal
