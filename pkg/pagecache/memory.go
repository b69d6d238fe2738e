package pagecache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is an in-process page store.
//
// Entries live in a map for lookups and a list ordered by recency so that
// the least recently served page is dropped first once MaxEntries is hit.
type Memory struct {
	items    map[string]*list.Element
	eviction *list.List
	opts     *memoryOptions
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// NewMemory creates a memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		opts:     o,
		done:     make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Get returns a fresh entry for uri. A stale entry is removed on the spot.
func (m *Memory) Get(_ context.Context, uri string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[uri]
	if !ok {
		return Entry{}, ErrNotFound
	}

	e := elem.Value.(Entry)
	if !e.FreshAt(m.opts.now()) {
		m.remove(elem)
		return Entry{}, ErrNotFound
	}

	m.eviction.MoveToFront(elem)
	return e, nil
}

// Set stores e, overwriting any entry for the same URI.
func (m *Memory) Set(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if elem, ok := m.items[e.URI]; ok {
		elem.Value = e
		m.eviction.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.eviction.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[e.URI] = m.eviction.PushFront(e)
	return nil
}

// Delete removes the entry for uri.
func (m *Memory) Delete(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[uri]; ok {
		m.remove(elem)
	}
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*list.Element)
	m.eviction.Init()
	return nil
}

// Len returns the number of stored entries, stale ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor. It is safe to call more than once.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.purge()
		}
	}
}

// purge removes stale entries, walking from the least recently used end.
func (m *Memory) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	for elem := m.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if !elem.Value.(Entry).FreshAt(now) {
			m.remove(elem)
		}
		elem = prev
	}
}

// remove must be called with mu held.
func (m *Memory) remove(elem *list.Element) {
	m.eviction.Remove(elem)
	delete(m.items, elem.Value.(Entry).URI)
}

var _ Store = (*Memory)(nil)
