package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// RunOption configures App.Run.
type RunOption func(*runSettings)

type runSettings struct {
	logger          *slog.Logger
	baseCtx         context.Context
	startup         []func(context.Context) error
	shutdown        []func(context.Context) error
	shutdownTimeout time.Duration
}

// Logger sets the runtime logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(s *runSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// ShutdownTimeout bounds server shutdown and the shutdown hooks together.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(s *runSettings) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn before the listener opens. An error aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(s *runSettings) {
		if fn != nil {
			s.startup = append(s.startup, fn)
		}
	}
}

// ShutdownHook runs fn after the server stopped, in registration order.
//
//	pageforge.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(s *runSettings) {
		if fn != nil {
			s.shutdown = append(s.shutdown, fn)
		}
	}
}

// WithContext sets the parent of the signal context. Cancelling it stops the server.
func WithContext(ctx context.Context) RunOption {
	return func(s *runSettings) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// Run serves the app on addr until SIGINT, SIGTERM or a cancelled base
// context, then shuts down gracefully. The page cache and a closable
// session store are closed last.
// An empty addr means ":5091".
func (a *App) Run(addr string, opts ...RunOption) error {
	s := &runSettings{
		logger:          a.logger,
		baseCtx:         context.Background(),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shutdown = append(s.shutdown, func(context.Context) error { return a.cache.Close() })
	if a.sessionManager != nil {
		if c, ok := a.sessionManager.Store().(io.Closer); ok {
			s.shutdown = append(s.shutdown, func(context.Context) error { return c.Close() })
		}
	}

	if addr == "" {
		addr = ":5091"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(s.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, hook := range s.startup {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	return s.stop(srv)
}

// stop shuts srv down and runs the shutdown hooks under one deadline.
func (s *runSettings) stop(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range s.shutdown {
		if err := hook(ctx); err != nil {
			s.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("shutdown completed with errors")
		return err
	}
	s.logger.Info("shutdown completed")
	return nil
}
