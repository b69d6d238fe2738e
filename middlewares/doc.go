// Package middlewares provides HTTP middleware for pageforge applications.
//
// Middlewares wrap the whole pipeline: they run before the interceptor chain
// and the router, and errors they return are rendered by the app error page.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. An ID from X-Request-ID or
// X-Correlation-ID is kept; otherwise a UUID is generated.
//
//	app, err := pageforge.New(
//	    pageforge.WithLogger(logger.New(cfg, middlewares.RequestIDExtractor())),
//	    pageforge.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns panics into PanicError values. The stack it captures is shown
// on the development error page.
//
// # Body Limit
//
// BodyLimit rejects request bodies larger than the configured size with 413.
//
// # Recommended Order
//
//	pageforge.WithMiddleware(
//	    middlewares.RequestID(),        // first: every later log line carries the ID
//	    middlewares.Recover(),          // second: catch panics in interceptors and pages
//	    middlewares.BodyLimit(16 << 20),
//	)
package middlewares
