package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pageforge"
	"github.com/dmitrymomot/pageforge/interceptors"
	"github.com/dmitrymomot/pageforge/internal/config"
	"github.com/dmitrymomot/pageforge/middlewares"
	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/metrics"
	"github.com/dmitrymomot/pageforge/pkg/oauth"
	"github.com/dmitrymomot/pageforge/pkg/pagecache"
	"github.com/dmitrymomot/pageforge/pkg/redis"
	"github.com/dmitrymomot/pageforge/pkg/session"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.AppEnv,
		SentryDSN:   cfg.SentryDSN,
		Text:        !cfg.Production(),
	}, middlewares.RequestIDExtractor())

	s, err := buildServer(ctx, cfg, log)
	if err != nil {
		return err
	}

	runOpts := []pageforge.RunOption{
		pageforge.Logger(log),
		pageforge.WithContext(ctx),
	}
	if s.redis != nil {
		runOpts = append(runOpts, pageforge.ShutdownHook(redis.Shutdown(s.redis)))
	}
	if cfg.SentryDSN != "" {
		runOpts = append(runOpts, pageforge.ShutdownHook(func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		}))
	}

	return s.app.Run(cfg.Addr(), runOpts...)
}

type server struct {
	app   *pageforge.App
	redis goredis.UniversalClient
}

// buildServer wires stores, providers and observability from cfg.
// Redis backs sessions and the page cache when REDIS_URL is set.
func buildServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*server, error) {
	s := &server{}

	var (
		sessions session.Store
		pages    pagecache.Store
	)
	if cfg.RedisURL != "" {
		client, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s.redis = client
		sessions = session.NewRedisStore(client, "")
		pages = pagecache.NewRedis(client)
	} else {
		sessions = session.NewMemoryStore()
		pages = pagecache.NewMemory()
	}

	providers, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}

	auth := interceptors.DefaultAuthSettings()
	auth.Providers = providers

	opts := []pageforge.Option{
		pageforge.WithLogger(log),
		pageforge.WithProduction(cfg.Production()),
		pageforge.WithAppRoot(cfg.AppRoot),
		pageforge.WithPublicDir(cfg.PublicDir),
		pageforge.WithRouteIndex(cfg.RoutesFile),
		pageforge.WithCookieOptions(
			pageforge.WithCookieSecret(cfg.AuthSecret),
			pageforge.WithCookieSecure(cfg.Production()),
		),
		pageforge.WithSession(sessions,
			pageforge.WithSessionCookieName(cfg.AuthCookieName),
			pageforge.WithSessionSecret(cfg.AuthSecret),
			pageforge.WithSessionLifetime(cfg.SessionLifetime()),
			pageforge.WithSessionSecure(cfg.Production()),
		),
		pageforge.WithPageCache(pages,
			pageforge.WithCacheEnabled(cfg.CacheEnabled),
			pageforge.WithCacheTTL(cfg.CacheTTLDuration()),
		),
		pageforge.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.BodyLimit(cfg.MaxBodyBytes()),
		),
		pageforge.WithInterceptors(
			interceptors.RPC(nil),
			interceptors.Auth(auth),
			interceptors.CSRF(),
		),
	}

	if cfg.MetricsEnabled {
		opts = append(opts, pageforge.WithMetrics(metrics.New(), cfg.MetricsPath))
	}

	health := []pageforge.HealthOption{}
	if s.redis != nil {
		health = append(health, pageforge.WithReadinessCheck("redis", redis.Healthcheck(s.redis)))
	}
	opts = append(opts, pageforge.WithHealthChecks(health...))

	app, err := pageforge.New(opts...)
	if err != nil {
		if s.redis != nil {
			_ = s.redis.Close()
		}
		return nil, err
	}
	s.app = app
	return s, nil
}

func buildProviders(cfg *config.Config) ([]oauth.Provider, error) {
	var (
		providers []oauth.Provider
		errs      []error
	)
	if cfg.GitHub.Enabled() {
		p, err := oauth.NewGitHubProvider(cfg.GitHub)
		errs = append(errs, err)
		if err == nil {
			providers = append(providers, p)
		}
	}
	if cfg.Google.Enabled() {
		p, err := oauth.NewGoogleProvider(cfg.Google)
		errs = append(errs, err)
		if err == nil {
			providers = append(providers, p)
		}
	}
	return providers, errors.Join(errs...)
}
