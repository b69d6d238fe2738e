package middlewares

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/pageforge/internal"
)

// DefaultMaxBodyBytes matches the default MAX_CONTENT_LENGTH_MB of 16.
const DefaultMaxBodyBytes int64 = 16 << 20

// BodyLimit caps request bodies at maxBytes. Requests that announce a larger
// Content-Length fail with 413 before any handler runs; bodies without a
// length are cut off by http.MaxBytesReader.
func BodyLimit(maxBytes int64) internal.Middleware {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(x *internal.Exchange) error {
			r := x.Request()
			if r.ContentLength > maxBytes {
				return internal.ErrRequestTooLarge(
					fmt.Sprintf("Request body exceeds %d bytes", maxBytes),
				)
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(x.Response(), r.Body, maxBytes)
			}
			return next(x)
		}
	}
}
