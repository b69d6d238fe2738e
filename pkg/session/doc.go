// Package session defines server-side sessions and their persistence.
//
// A [Session] is addressed by an opaque token carried in a cookie. Stores
// implement [Store]; [MemoryStore] and [RedisStore] are provided.
// Sessions track a dirty flag so callers can persist only when something
// changed.
package session
