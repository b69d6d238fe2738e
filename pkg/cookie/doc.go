// Package cookie issues plain, signed, and encrypted cookies.
//
// The session token travels in a signed cookie; short-lived OAuth state
// travels in an encrypted JSON cookie:
//
//	m := cookie.New(cookie.WithSecret(cfg.AuthSecret), cookie.WithSecure(cfg.Production))
//	_ = m.SetSigned(w, "session", token, maxAge)
//	_ = m.SetJSON(w, "pp_oauth", state, 600)
//
// Signed and encrypted operations return [ErrNoSecret] when no secret is set.
package cookie
