package internal

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/pageforge/pkg/cookie"
	"github.com/dmitrymomot/pageforge/pkg/health"
	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/metrics"
	"github.com/dmitrymomot/pageforge/pkg/pagecache"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 0 // streams may stay open
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Default filesystem locations.
const (
	DefaultAppRoot   = "src/app"
	DefaultPublicDir = "public"
)

const tracerName = "github.com/dmitrymomot/pageforge"

// App serves a tree of pages.
// It owns the router, the interceptor chain and every rendering component.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router         chi.Router
	pipeline       HandlerFunc
	logger         *slog.Logger
	cookieManager  *cookie.Manager
	sessionManager *SessionManager
	routes         *RouteTable
	registry       *Registry
	invoker        *Invoker
	layouts        *LayoutComposer
	cache          *CacheGate
	presenter      *ErrorPresenter
	static         *staticPages
	chain          *Chain
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	healthConfig   *healthConfig
	components     ComponentTransformer
	scripts        ScriptTransformer
	templateFuncs  template.FuncMap
	cacheStore     pagecache.Store
	cacheOpts      []CacheGateOption
	middlewares    []Middleware
	interceptors   []Interceptor
	resolved       []ResolvedRoute
	setupErrs      []error
	appRoot        string
	publicDir      string
	metricsPath    string
	production     bool
}

// New creates an application with the given options.
// It fails when the route table cannot be resolved against the app root.
//
// Example:
//
//	app, err := pageforge.New(
//	    pageforge.WithRouteIndex("settings/routes.yaml"),
//	    pageforge.WithPage("blog/[slug]", blogPage),
//	    pageforge.WithMiddleware(middlewares.Recover(), middlewares.RequestID()),
//	    pageforge.WithInterceptors(interceptors.RPC(nil), interceptors.Auth(authCfg), interceptors.CSRF()),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(), // Default: noop logger (before options)
		cookieManager: cookie.New(),     // Default: cookie manager (no secret)
		registry:      NewRegistry(),
		tracer:        otel.Tracer(tracerName),
		components:    identityComponents,
		scripts:       identityScripts,
		appRoot:       DefaultAppRoot,
		publicDir:     DefaultPublicDir,
	}

	for _, opt := range opts {
		opt(a)
	}
	if err := errors.Join(a.setupErrs...); err != nil {
		return nil, err
	}

	if a.sessionManager != nil {
		a.sessionManager.SetLogger(logger.Component(a.logger, "session"))
	}
	if a.routes == nil {
		a.routes = &RouteTable{}
	}
	resolved, err := a.routes.Resolve(a.appRoot)
	if err != nil {
		return nil, err
	}
	a.resolved = resolved

	a.invoker = NewInvoker(a.registry)
	a.static = newStaticPages()
	a.layouts = NewLayoutComposer(a.appRoot, a.components, a.templateFuncs)
	a.presenter = NewErrorPresenter(a.appRoot, a.layouts, a.scripts, logger.Component(a.logger, "presenter"), a.production)
	a.cache = NewCacheGate(a.cacheStore, append([]CacheGateOption{
		WithCacheMetrics(a.metrics),
		WithCacheLogger(logger.Component(a.logger, "cachegate")),
	}, a.cacheOpts...)...)
	a.chain = NewChain(a.interceptors...)
	a.chain.metrics = a.metrics

	a.setupRoutes()
	a.pipeline = chainMiddleware(a.chain.Then(a.serveRouter), a.middlewares)
	return a, nil
}

// ServeHTTP runs the request through middlewares, interceptors and the router.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	x := newExchange(w, r, a)
	if err := a.pipeline(x); err != nil {
		a.handleError(x, err)
	}
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router { return a.router }

// Routes returns the resolved route table.
func (a *App) Routes() []ResolvedRoute {
	return append([]ResolvedRoute(nil), a.resolved...)
}

// Registry returns the handler registry.
func (a *App) Registry() *Registry { return a.registry }

// Cache returns the cache gate.
func (a *App) Cache() *CacheGate { return a.cache }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Production reports whether the app runs in production mode.
func (a *App) Production() bool { return a.production }

func (a *App) serveRouter(x *Exchange) error {
	a.router.ServeHTTP(x.Response(), x.Request())
	return nil
}

// setupRoutes configures the router with assets, health, metrics and pages.
func (a *App) setupRoutes() {
	a.router.NotFound(a.wrapHandler(func(*Exchange) error {
		return ErrNotFound("")
	}))
	a.router.MethodNotAllowed(a.wrapHandler(func(*Exchange) error {
		return ErrMethodNotAllowed("")
	}))

	mountStatic(a.router, a.publicDir)

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}
	if a.metrics != nil && a.metricsPath != "" {
		a.router.Handle(a.metricsPath, a.metrics.Handler())
	}

	for _, rr := range a.resolved {
		if rr.Kind == PageHandler && !a.registry.Has(rr.Dir) {
			a.logger.Warn("route has no registered handler unit",
				slog.String("pattern", rr.Pattern), slog.String("dir", rr.Dir))
		}
		h := a.wrapHandler(a.pageHandler(rr))
		a.router.Get(rr.ChiPattern, h)
		a.router.Post(rr.ChiPattern, h)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handling.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		x := ExchangeFrom(r.Context())
		if x == nil {
			x = newExchange(w, r, a)
		} else {
			x.SetRequest(r)
		}
		if err := h(x); err != nil {
			a.handleError(x, err)
		}
	}
}

// handleError hands err to the ErrorPresenter unless the response already started.
func (a *App) handleError(x *Exchange, err error) {
	if x.Written() {
		a.logger.ErrorContext(x.Context(), "error after response was written", slog.Any("error", err))
		return
	}
	a.presenter.Present(x, err)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	pageforge.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
