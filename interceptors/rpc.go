package interceptors

import (
	"net/http"

	"github.com/dmitrymomot/pageforge/internal"
)

// RPCHeader marks a POST request as a remote procedure call.
const RPCHeader = "X-PP-RPC"

// RPCHandler answers an RPC request. session is a plain copy of the
// caller's session values; changes to it are not persisted.
type RPCHandler func(w http.ResponseWriter, r *http.Request, session map[string]any)

// RPC diverts POST requests carrying a truthy X-PP-RPC header to h.
// The handler's response goes out unmodified and the chain ends there.
// A nil handler answers RPC requests with 501.
func RPC(h RPCHandler) internal.Interceptor {
	return internal.InterceptorFunc("rpc", func(x *internal.Exchange) (internal.Verdict, error) {
		r := x.Request()
		if r.Method != http.MethodPost || !internal.IsTruthy(r.Header.Get(RPCHeader)) {
			return internal.Continue, nil
		}
		if h == nil {
			return internal.Handled, internal.ErrNotImplemented("RPC is not configured")
		}
		h(x.Response(), r, x.SessionSnapshot())
		return internal.Handled, nil
	})
}
