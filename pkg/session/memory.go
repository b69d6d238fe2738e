package session

import (
	"context"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often a MemoryStore sweeps expired sessions.
const DefaultCleanupInterval = time.Minute

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCleanupInterval sets how often expired sessions are swept.
// Zero disables the janitor; expired sessions are then only dropped when read.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *MemoryStore) {
		if d >= 0 {
			m.cleanupInterval = d
		}
	}
}

// MemoryStore keeps sessions in process memory. Suitable for a single
// instance and for tests. A janitor drops expired sessions nobody reads
// again, such as the ones minted for cookie-less probes and bots.
type MemoryStore struct {
	sessions        map[string]*Session
	done            chan struct{}
	cleanupInterval time.Duration
	mu              sync.RWMutex
	closed          bool
}

// NewMemoryStore creates an empty MemoryStore and starts its janitor.
// Call Close to stop it.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		sessions:        make(map[string]*Session),
		done:            make(chan struct{}),
		cleanupInterval: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		delete(m.sessions, token)
		return nil, ErrExpired
	}

	out := s.Clone()
	out.ClearDirty()
	out.ClearNew()
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, s *Session) error {
	return m.Create(ctx, s)
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the janitor. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *MemoryStore) janitor() {
	ticker := time.NewTicker(m.cleanupInterval)
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

// purge drops every expired session.
func (m *MemoryStore) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, token)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
