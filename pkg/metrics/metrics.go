// Package metrics exposes Prometheus collectors for page rendering.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
	CacheSkip = "skip"
	CacheSave = "save"
)

// Config configures the collectors.
type Config struct {
	Registry  *prometheus.Registry // default: a fresh registry
	Namespace string               // default: "pageforge"
	Buckets   []float64            // default: prometheus.DefBuckets
}

// Option mutates Config.
type Option func(*Config)

func WithNamespace(ns string) Option {
	return func(c *Config) {
		if ns != "" {
			c.Namespace = ns
		}
	}
}

func WithRegistry(r *prometheus.Registry) Option {
	return func(c *Config) {
		if r != nil {
			c.Registry = r
		}
	}
}

func WithBuckets(b []float64) Option {
	return func(c *Config) {
		if len(b) > 0 {
			c.Buckets = b
		}
	}
}

// Metrics groups the collectors used by the render pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	renders       *prometheus.CounterVec
	renderSeconds *prometheus.HistogramVec
	cache         *prometheus.CounterVec
	intercepted   *prometheus.CounterVec
}

// New registers the collectors.
func New(opts ...Option) *Metrics {
	cfg := Config{Namespace: "pageforge", Buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		registry: cfg.Registry,
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "renders_total",
			Help:      "Page dispatches by route pattern, result kind and status.",
		}, []string{"route", "kind", "status"}),
		renderSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent producing a page response.",
			Buckets:   cfg.Buckets,
		}, []string{"route"}),
		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_operations_total",
			Help:      "Page cache lookups and saves by outcome.",
		}, []string{"result"}),
		intercepted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "interceptions_total",
			Help:      "Requests answered by an interceptor before page dispatch.",
		}, []string{"interceptor"}),
	}
}

// ObserveRender records one page dispatch.
func (m *Metrics) ObserveRender(route, kind string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(route, kind, strconv.Itoa(status)).Inc()
	m.renderSeconds.WithLabelValues(route).Observe(d.Seconds())
}

// Cache records a cache outcome.
func (m *Metrics) Cache(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}

// Intercepted records a request short-circuited by the named interceptor.
func (m *Metrics) Intercepted(name string) {
	if m == nil {
		return
	}
	m.intercepted.WithLabelValues(name).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
