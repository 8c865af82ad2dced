package registry

import (
	"context"
	"sync"
	"time"
)

// Store tracks refresh tokens that are still allowed to be exchanged.
type Store interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
	// Consume removes token and reports whether it was present. Among
	// concurrent callers for the same token at most one gets true.
	Consume(ctx context.Context, token string) (bool, error)
	// Sweep drops every entry for which valid returns false.
	Sweep(ctx context.Context, valid func(token string) bool) (int, error)
	Close() error
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryStore) Add(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.entries[token] = exp
	return nil
}

// live must be called with mu held.
func (m *MemoryStore) live(token string) bool {
	exp, ok := m.entries[token]
	if !ok {
		return false
	}
	if !exp.IsZero() && !m.now().Before(exp) {
		delete(m.entries, token)
		return false
	}
	return true
}

func (m *MemoryStore) Contains(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(token), nil
}

func (m *MemoryStore) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live(token) {
		return false, nil
	}
	delete(m.entries, token)
	return true, nil
}

func (m *MemoryStore) Sweep(ctx context.Context, valid func(string) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for tok := range m.entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !m.live(tok) {
			removed++
			continue
		}
		if !valid(tok) {
			delete(m.entries, tok)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error { return nil }
