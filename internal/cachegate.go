package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/metrics"
	"github.com/dmitrymomot/pageforge/pkg/pagecache"
)

// DefaultCacheTTL applies when neither the page nor the configuration set a TTL.
const DefaultCacheTTL = 600 * time.Second

// ShouldCache decides whether a render is saved.
// An explicit page setting wins over the global flag.
func ShouldCache(s *CacheSettings, globalEnabled bool) bool {
	if s != nil && s.Enabled != nil {
		return *s.Enabled
	}
	return globalEnabled
}

// EffectiveTTL returns the page TTL when positive, else def.
func EffectiveTTL(s *CacheSettings, def time.Duration) time.Duration {
	if s != nil && s.TTL > 0 {
		return s.TTL
	}
	return def
}

// CacheGate serves and stores rendered pages keyed by request path.
// A gate without a store never hits and never saves.
type CacheGate struct {
	store      pagecache.Store
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	defaultTTL time.Duration
	enabled    bool
}

// CacheGateOption configures a CacheGate.
type CacheGateOption func(*CacheGate)

// WithCacheEnabled sets the global caching flag used when pages do not decide.
func WithCacheEnabled(on bool) CacheGateOption {
	return func(g *CacheGate) { g.enabled = on }
}

// WithCacheTTL sets the default TTL.
func WithCacheTTL(d time.Duration) CacheGateOption {
	return func(g *CacheGate) {
		if d > 0 {
			g.defaultTTL = d
		}
	}
}

// WithCacheMetrics reports lookups and saves.
func WithCacheMetrics(m *metrics.Metrics) CacheGateOption {
	return func(g *CacheGate) { g.metrics = m }
}

// WithCacheLogger sets the logger for store failures.
func WithCacheLogger(l *slog.Logger) CacheGateOption {
	return func(g *CacheGate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithCacheClock overrides the clock used to compute expiry.
func WithCacheClock(now func() time.Time) CacheGateOption {
	return func(g *CacheGate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewCacheGate creates a gate over store. store may be nil.
func NewCacheGate(store pagecache.Store, opts ...CacheGateOption) *CacheGate {
	g := &CacheGate{
		store:      store,
		logger:     logger.NewNope(),
		now:        time.Now,
		defaultTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports the global caching flag.
func (g *CacheGate) Enabled() bool { return g.enabled }

// DefaultTTL returns the configured default TTL.
func (g *CacheGate) DefaultTTL() time.Duration { return g.defaultTTL }

// Serve returns a fresh entry for uri. Only GET requests are ever served.
func (g *CacheGate) Serve(ctx context.Context, method, uri string) (pagecache.Entry, bool) {
	if method != http.MethodGet || g.store == nil {
		g.metrics.Cache(metrics.CacheSkip)
		return pagecache.Entry{}, false
	}
	e, err := g.store.Get(ctx, uri)
	if err != nil {
		if !errors.Is(err, pagecache.ErrNotFound) {
			g.logger.WarnContext(ctx, "page cache lookup failed",
				slog.String("uri", uri), slog.Any("error", err))
		}
		g.metrics.Cache(metrics.CacheMiss)
		return pagecache.Entry{}, false
	}
	if !e.FreshAt(g.now()) {
		if err := g.store.Delete(ctx, uri); err != nil {
			g.logger.WarnContext(ctx, "page cache eviction failed",
				slog.String("uri", uri), slog.Any("error", err))
		}
		g.metrics.Cache(metrics.CacheMiss)
		return pagecache.Entry{}, false
	}
	g.metrics.Cache(metrics.CacheHit)
	return e, true
}

// Save stores content for uri until now+ttl, replacing any previous entry.
func (g *CacheGate) Save(ctx context.Context, uri, content, layout string, ttl time.Duration) error {
	if g.store == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = g.defaultTTL
	}
	err := g.store.Set(ctx, pagecache.Entry{
		URI:       uri,
		Content:   content,
		Layout:    layout,
		ExpiresAt: g.now().Add(ttl),
	})
	if err != nil {
		return err
	}
	g.metrics.Cache(metrics.CacheSave)
	return nil
}

// Admit applies the save decision for a finished render.
func (g *CacheGate) Admit(method string, res PageResult, s *CacheSettings) bool {
	if method != http.MethodGet || !res.Renderable() {
		return false
	}
	return ShouldCache(s, g.enabled)
}

// Close releases the store.
func (g *CacheGate) Close() error {
	if g.store == nil {
		return nil
	}
	return g.store.Close()
}
