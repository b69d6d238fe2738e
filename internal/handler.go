package internal

// HandlerFunc is the signature for everything that runs inside the app pipeline.
// Returning a non-nil error hands the request to the ErrorPresenter.
type HandlerFunc func(x *Exchange) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func Timing(next pageforge.HandlerFunc) pageforge.HandlerFunc {
//	    return func(x *pageforge.Exchange) error {
//	        start := time.Now()
//	        err := next(x)
//	        x.Logger().Debug("served", slog.Duration("took", time.Since(start)))
//	        return err
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// chainMiddleware applies middlewares so the first one listed is the outermost.
func chainMiddleware(h HandlerFunc, mws []Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
