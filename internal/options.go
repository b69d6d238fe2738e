package internal

import (
	"html/template"
	"log/slog"
	"maps"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/pageforge/pkg/cookie"
	"github.com/dmitrymomot/pageforge/pkg/metrics"
	"github.com/dmitrymomot/pageforge/pkg/pagecache"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger.
// Components derive their loggers from it.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithProduction switches production behavior: secure cookies and no
// stack traces on error pages.
func WithProduction(on bool) Option {
	return func(a *App) {
		a.production = on
	}
}

// WithAppRoot sets the directory holding route directories, layouts and error pages.
// Defaults to "src/app".
func WithAppRoot(dir string) Option {
	return func(a *App) {
		if dir != "" {
			a.appRoot = dir
		}
	}
}

// WithPublicDir sets the directory static assets are served from.
// Defaults to "public".
func WithPublicDir(dir string) Option {
	return func(a *App) {
		if dir != "" {
			a.publicDir = dir
		}
	}
}

// WithRouteTable sets the routes to serve.
func WithRouteTable(t *RouteTable) Option {
	return func(a *App) {
		a.routes = t
	}
}

// WithRouteIndex loads the routes to serve from a YAML or JSON index file.
func WithRouteIndex(file string) Option {
	return func(a *App) {
		t, err := LoadRouteIndex(file)
		if err != nil {
			a.setupErrs = append(a.setupErrs, err)
			return
		}
		a.routes = t
	}
}

// WithPage registers a handler unit for a route directory.
//
// Example:
//
//	pageforge.WithPage("blog/[slug]", &pageforge.Page{
//	    Params:  []pageforge.Param{pageforge.P("ref", pageforge.String)},
//	    Handler: showPost,
//	})
func WithPage(dir string, p *Page) Option {
	return func(a *App) {
		a.registry.RegisterPage(dir, p)
	}
}

// WithPageLoader registers a lazily built handler unit for a route directory.
// The loader runs on the first request for the route.
func WithPageLoader(dir string, l Loader) Option {
	return func(a *App) {
		a.registry.Register(dir, l)
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, outside the interceptors.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithInterceptors registers interceptors. The one registered last runs first.
func WithInterceptors(i ...Interceptor) Option {
	return func(a *App) {
		a.interceptors = append(a.interceptors, i...)
	}
}

// WithSession enables server-side sessions backed by store.
//
// Example:
//
//	pageforge.WithSession(session.NewMemoryStore(),
//	    pageforge.WithSessionSecret(cfg.AuthSecret),
//	    pageforge.WithSessionLifetime(7*time.Hour),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithCookieOptions configures the cookie manager handed to interceptors.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithPageCache stores rendered pages in store.
func WithPageCache(store pagecache.Store, opts ...CacheGateOption) Option {
	return func(a *App) {
		a.cacheStore = store
		a.cacheOpts = append(a.cacheOpts, opts...)
	}
}

// WithComponentTransformer sets the transform applied to page bodies and layout sources.
func WithComponentTransformer(fn ComponentTransformer) Option {
	return func(a *App) {
		if fn != nil {
			a.components = fn
		}
	}
}

// WithScriptTransformer sets the transform applied to every final document.
func WithScriptTransformer(fn ScriptTransformer) Option {
	return func(a *App) {
		if fn != nil {
			a.scripts = fn
		}
	}
}

// WithTemplateFuncs adds functions available to layout templates.
func WithTemplateFuncs(funcs template.FuncMap) Option {
	return func(a *App) {
		if a.templateFuncs == nil {
			a.templateFuncs = make(template.FuncMap, len(funcs))
		}
		maps.Copy(a.templateFuncs, funcs)
	}
}

// WithMetrics records render, cache and interceptor metrics.
// A non-empty path exposes them for scraping.
func WithMetrics(m *metrics.Metrics, path string) Option {
	return func(a *App) {
		a.metrics = m
		a.metricsPath = path
	}
}

// WithTracer sets the tracer for render spans. Defaults to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(a *App) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithHealthChecks enables health check endpoints.
//
// Example:
//
//	pageforge.WithHealthChecks(
//	    pageforge.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
