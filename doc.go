// Package pageforge serves server-rendered pages from a directory tree.
//
// Every route in the route index points at a directory under the app root.
// A directory holds either a registered handler unit, an index.html or an
// index.md. Rendered content is wrapped by every layout.html from the route
// directory up to the app root.
//
// # Quick Start
//
//	app, err := pageforge.New(
//	    pageforge.WithRouteIndex("settings/routes.yaml"),
//	    pageforge.WithPage("blog/[slug]", &pageforge.Page{
//	        Params: []pageforge.Param{pageforge.P("page", pageforge.Int)},
//	        Handler: func(ctx context.Context, in pageforge.Input) (any, error) {
//	            return "<article>" + in.Path["slug"] + "</article>", nil
//	        },
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(app.Run(":5091"))
//
// # Route Index
//
//	routes:
//	  - pattern: /
//	    dir: ""
//	  - pattern: /blog/{slug}
//	    dir: blog/[slug]
//	    has_handler: true
//	  - pattern: /docs/{rest:path}
//	    dir: docs/[...rest]
//
// # Page Results
//
// A page handler may return:
//   - an http.Handler, served as is
//   - an iter.Seq2[string, error], iter.Seq[string] or <-chan string, sent as Server-Sent Events
//   - a Content value made with WithProps, whose props reach every layout
//   - anything else, rendered to a string (templ components included)
//
// Returning an error renders the error page.
//
// # Layouts
//
// Layouts are html/template files. They receive .Children (the inner content),
// .Props, .Meta, .Params, .Request, .Title and .Description. The response
// carries an X-PP-Root-Layout header naming the outermost layout.
//
// # Caching
//
// Successful GET renders are cached by path when the page opts in with
// CacheOn or the cache is enabled globally with WithCacheEnabled.
//
// # Interceptors
//
// See the interceptors package for CSRF, Auth and RPC.
package pageforge
