// Package dedup tracks webhook delivery ids so duplicate deliveries can be
// acknowledged and dropped. The set is bounded by a TTL; it is a best-effort
// guard, not an ordering or exactly-once guarantee.
package dedup

import (
	"context"
	"sync"
	"time"
)

// Store records delivery ids. Seen marks the id as processed and reports
// whether it had already been recorded.
type Store interface {
	Seen(ctx context.Context, deliveryID string) (bool, error)
}

// MemoryStore is the in-process fallback used when no Redis address is
// configured. It does not survive restarts and is not shared across replicas.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an in-memory delivery-id set with the given TTL
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Seen implements Store
func (m *MemoryStore) Seen(_ context.Context, deliveryID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	// Lazy expiry keeps the map bounded without a sweeper goroutine
	for id, expires := range m.entries {
		if now.After(expires) {
			delete(m.entries, id)
		}
	}

	if _, ok := m.entries[deliveryID]; ok {
		return true, nil
	}

	m.entries[deliveryID] = now.Add(m.ttl)
	return false, nil
}
