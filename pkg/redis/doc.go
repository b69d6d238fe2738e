// Package redis opens go-redis clients and exposes health and shutdown hooks
// for them. The same client backs the page cache and the session store.
package redis
