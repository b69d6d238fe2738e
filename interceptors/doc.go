// Package interceptors provides the request guards that run in front of page
// dispatch.
//
// Interceptors execute in reverse registration order. The usual setup
// registers RPC, Auth and CSRF, so a request meets CSRF first:
//
//	app, err := pageforge.New(
//	    pageforge.WithSession(store, pageforge.WithSessionSecret(secret)),
//	    pageforge.WithInterceptors(
//	        interceptors.RPC(rpcHandler),
//	        interceptors.Auth(interceptors.AuthSettings{
//	            PrivateRoutes: []string{"/dashboard/*"},
//	            Providers:     []oauth.Provider{github},
//	        }),
//	        interceptors.CSRF(),
//	    ),
//	)
//
// # CSRF
//
// CSRF stores one token per session under "csrf_token" and appends a pp_csrf
// cookie to every response. Pages read it with CSRFToken(ctx).
//
// # Auth
//
// Auth classifies the path as public, auth-only, role-gated or private and
// redirects with 303 where the session does not qualify. It also serves the
// OAuth endpoints under the API auth prefix:
//
//	GET  /api/auth/signin/{provider}    redirect to the provider
//	GET  /api/auth/callback/{provider}  finish sign-in, rotate the session token
//	GET  /api/auth/signout              destroy the session
//
// Route patterns match exactly, or by prefix when they end in "/*".
//
// # RPC
//
// RPC hands POST requests with a truthy X-PP-RPC header to an RPCHandler,
// together with a copy of the session values.
package interceptors
