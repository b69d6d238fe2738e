package pageforge

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/pageforge/internal"
	"github.com/dmitrymomot/pageforge/pkg/cookie"
	"github.com/dmitrymomot/pageforge/pkg/health"
	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/metrics"
	"github.com/dmitrymomot/pageforge/pkg/pagecache"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

// Type aliases - public API
type (
	// App serves a tree of pages.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Exchange is one request/response pair seen by middlewares and interceptors.
	Exchange = internal.Exchange

	// HandlerFunc is the signature wrapped by middlewares.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps the whole request pipeline.
	Middleware = internal.Middleware

	// Interceptor guards requests before page dispatch.
	Interceptor = internal.Interceptor

	// Verdict is an interceptor's decision.
	Verdict = internal.Verdict

	// ResponseWriter wraps http.ResponseWriter with before-write hooks.
	ResponseWriter = internal.ResponseWriter

	// Page is a handler unit bound to a route directory.
	Page = internal.Page

	// PageFunc is the page handler signature.
	PageFunc = internal.PageFunc

	// Loader builds a Page on first use.
	Loader = internal.Loader

	// Param declares a handler parameter.
	Param = internal.Param

	// Type annotates a parameter for query coercion.
	Type = internal.Type

	// Input carries the values bound for one invocation.
	Input = internal.Input

	// Metadata is page metadata merged into layouts.
	Metadata = internal.Metadata

	// CacheSettings is per-page cache configuration.
	CacheSettings = internal.CacheSettings

	// Content is a page body with layout props.
	Content = internal.Content

	// RequestContext is request-scoped page state.
	RequestContext = internal.RequestContext

	// PageResult is the classified return value of a page.
	PageResult = internal.PageResult

	// RouteEntry is one line of the route index.
	RouteEntry = internal.RouteEntry

	// RouteTable is the ordered set of routes to serve.
	RouteTable = internal.RouteTable

	// ResolvedRoute is a route bound to its index file.
	ResolvedRoute = internal.ResolvedRoute

	// ComponentTransformer rewrites page content before layouts run.
	ComponentTransformer = internal.ComponentTransformer

	// ScriptTransformer rewrites the final document.
	ScriptTransformer = internal.ScriptTransformer

	// CacheGateOption configures the page cache.
	CacheGateOption = internal.CacheGateOption

	// HTTPError is an error carrying a status code.
	HTTPError = internal.HTTPError

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// PageCacheStore persists rendered pages.
	PageCacheStore = pagecache.Store

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Interceptor verdicts.
const (
	Continue = internal.Continue
	Handled  = internal.Handled
)

// RootLayoutHeader names the outermost layout of a rendered page.
const RootLayoutHeader = internal.RootLayoutHeader

// Parameter types.
var (
	Untyped = internal.Untyped
	String  = internal.String
	Any     = internal.Any
	Int     = internal.Int
	Float   = internal.Float
	Bool    = internal.Bool
)

// RequestParam declares that the handler wants the *http.Request.
var RequestParam = internal.RequestParam

// Errors for checking return values.
var (
	ErrDuplicateRoute    = internal.ErrDuplicateRoute
	ErrDuplicateEndpoint = internal.ErrDuplicateEndpoint
	ErrInvalidRouteIndex = internal.ErrInvalidRouteIndex
	ErrHandlerLoad       = internal.ErrHandlerLoad
	ErrLayoutRender      = internal.ErrLayoutRender
	ErrStaticPage        = internal.ErrStaticPage
)

// Constructors

// New creates an application with the given options.
//
// Example:
//
//	app, err := pageforge.New(
//	    pageforge.WithRouteIndex("settings/routes.yaml"),
//	    pageforge.WithPage("blog/[slug]", blogPage),
//	    pageforge.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    pageforge.WithInterceptors(interceptors.RPC(nil), interceptors.Auth(auth), interceptors.CSRF()),
//	)
//	if err != nil {
//	    return err
//	}
//	return app.Run(":5091")
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// NewRouteTable builds a route table from entries.
func NewRouteTable(entries []RouteEntry) (*RouteTable, error) {
	return internal.NewRouteTable(entries)
}

// LoadRouteIndex reads a YAML route index.
func LoadRouteIndex(file string) (*RouteTable, error) {
	return internal.LoadRouteIndex(file)
}

// InterceptorFunc adapts a function to the Interceptor interface.
func InterceptorFunc(name string, fn func(x *Exchange) (Verdict, error)) Interceptor {
	return internal.InterceptorFunc(name, fn)
}

// Page helpers

// P declares a named query parameter.
func P(name string, t Type) Param { return internal.P(name, t) }

// Optional marks a type as optional.
func Optional(t Type) Type { return internal.Optional(t) }

// List declares a repeated query parameter.
func List(t Type) Type { return internal.List(t) }

// Named declares an application type passed through as the raw string.
func Named(name string) Type { return internal.Named(name) }

// CacheOn enables caching for a page. Zero ttl uses the default.
func CacheOn(ttl time.Duration) *CacheSettings { return internal.CacheOn(ttl) }

// CacheOff disables caching for a page.
func CacheOff() *CacheSettings { return internal.CacheOff() }

// WithProps attaches layout props to a page body.
func WithProps(body any, props map[string]any) Content { return internal.WithProps(body, props) }

// Arg returns a bound argument converted to T.
func Arg[T any](in Input, name string) (T, bool) { return internal.Arg[T](in, name) }

// ArgOr returns a bound argument or def.
func ArgOr[T any](in Input, name string, def T) T { return internal.ArgOr(in, name, def) }

// RequestContextFrom returns the page state of the current request.
func RequestContextFrom(ctx context.Context) *RequestContext {
	return internal.RequestContextFrom(ctx)
}

// ExchangeFrom returns the Exchange serving ctx.
func ExchangeFrom(ctx context.Context) *Exchange { return internal.ExchangeFrom(ctx) }

// HTTP errors

// NewHTTPError creates an error rendered with the given status.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string) *HTTPError { return internal.ErrNotFound(message) }

// App options

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option { return internal.WithLogger(l) }

// WithProduction switches secure cookies on and hides stack traces.
func WithProduction(on bool) Option { return internal.WithProduction(on) }

// WithAppRoot sets the directory holding route directories and layouts.
func WithAppRoot(dir string) Option { return internal.WithAppRoot(dir) }

// WithPublicDir sets the static asset directory.
func WithPublicDir(dir string) Option { return internal.WithPublicDir(dir) }

// WithRouteTable sets the routes to serve.
func WithRouteTable(t *RouteTable) Option { return internal.WithRouteTable(t) }

// WithRouteIndex loads the routes to serve from a YAML file.
func WithRouteIndex(file string) Option { return internal.WithRouteIndex(file) }

// WithPage registers a handler unit for a route directory.
func WithPage(dir string, p *Page) Option { return internal.WithPage(dir, p) }

// WithPageLoader registers a lazily built handler unit.
func WithPageLoader(dir string, l Loader) Option { return internal.WithPageLoader(dir, l) }

// WithMiddleware adds pipeline middleware. The first one listed runs first.
func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }

// WithInterceptors registers interceptors. The last one registered runs first.
func WithInterceptors(i ...Interceptor) Option { return internal.WithInterceptors(i...) }

// WithComponentTransformer sets the page content transformer.
func WithComponentTransformer(fn ComponentTransformer) Option {
	return internal.WithComponentTransformer(fn)
}

// WithScriptTransformer sets the final document transformer.
func WithScriptTransformer(fn ScriptTransformer) Option {
	return internal.WithScriptTransformer(fn)
}

// WithTemplateFuncs adds functions available to layouts.
func WithTemplateFuncs(funcs template.FuncMap) Option { return internal.WithTemplateFuncs(funcs) }

// WithMetrics records Prometheus metrics and serves them at path.
func WithMetrics(m *metrics.Metrics, path string) Option { return internal.WithMetrics(m, path) }

// WithTracer sets the OpenTelemetry tracer used for page renders.
func WithTracer(t trace.Tracer) Option { return internal.WithTracer(t) }

// WithCookieOptions configures the cookie manager.
func WithCookieOptions(opts ...CookieOption) Option { return internal.WithCookieOptions(opts...) }

// Page cache options

// WithPageCache enables the rendered page cache.
//
// Example:
//
//	pageforge.WithPageCache(pagecache.NewRedis(client),
//	    pageforge.WithCacheEnabled(cfg.CacheEnabled),
//	    pageforge.WithCacheTTL(cfg.CacheTTLDuration()),
//	)
func WithPageCache(store PageCacheStore, opts ...CacheGateOption) Option {
	return internal.WithPageCache(store, opts...)
}

// WithCacheEnabled caches every page that does not opt out.
func WithCacheEnabled(on bool) CacheGateOption { return internal.WithCacheEnabled(on) }

// WithCacheTTL sets the default cache lifetime.
func WithCacheTTL(d time.Duration) CacheGateOption { return internal.WithCacheTTL(d) }

// Session options

// WithSession enables server-side sessions.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionSecret signs the session cookie.
func WithSessionSecret(secret string) SessionOption { return internal.WithSessionSecret(secret) }

// WithSessionLifetime sets how long a session lives.
func WithSessionLifetime(d time.Duration) SessionOption {
	return internal.WithSessionLifetime(d)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption { return internal.WithSessionDomain(domain) }

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption { return internal.WithSessionSecure(secure) }

// Cookie options

// WithCookieSecret sets the secret for signing and encryption.
func WithCookieSecret(secret string) CookieOption { return cookie.WithSecret(secret) }

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption { return cookie.WithSecure(secure) }

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption { return cookie.WithSameSite(ss) }

// Health check options

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	pageforge.WithHealthChecks(
//	    pageforge.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option { return internal.WithHealthChecks(opts...) }

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption { return internal.WithLivenessPath(path) }

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption { return internal.WithReadinessPath(path) }

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption { return internal.Logger(l) }

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption { return internal.ShutdownTimeout(d) }

// StartupHook registers a function to run before serving.
func StartupHook(fn func(context.Context) error) RunOption { return internal.StartupHook(fn) }

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption { return internal.WithContext(ctx) }
