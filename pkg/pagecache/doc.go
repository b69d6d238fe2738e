// Package pagecache stores rendered pages keyed by request URI.
//
// A [Store] holds [Entry] values. An entry is served only while the current
// time is strictly before its ExpiresAt; expired entries are evicted lazily
// on the read that observes them. Save always overwrites, so the last writer
// for a URI wins.
//
// Two implementations are provided:
//
//   - [Memory]: in-process map guarded by a mutex, with optional LRU bound
//     and a background janitor.
//   - [Redis]: entries encoded as JSON under a key prefix, with the Redis TTL
//     set to the remaining lifetime of the entry.
//
// Example:
//
//	store := pagecache.NewMemory(pagecache.WithMaxEntries(5000))
//	defer store.Close()
//
//	_ = store.Set(ctx, pagecache.Entry{
//	    URI:       "/blog",
//	    Content:   html,
//	    Layout:    "/",
//	    ExpiresAt: time.Now().Add(10 * time.Minute),
//	})
package pagecache
