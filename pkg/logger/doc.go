// Package logger builds slog loggers for the server.
//
// Records are written as JSON (or text in development) and optionally
// mirrored to Sentry. [ContextExtractor] functions add request-scoped
// attributes such as the request id to every record:
//
//	log := logger.New(logger.Config{
//	    Level:     "info",
//	    SentryDSN: os.Getenv("SENTRY_DSN"),
//	}, middlewares.RequestIDExtractor())
//
// [NewNope] is the default before an application logger is configured.
package logger
