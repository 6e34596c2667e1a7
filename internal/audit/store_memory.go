package audit

import (
	"context"
	"sync"

	id "heirloom/pkg/domain"
)

// InMemoryStore keeps the chain in a slice. Used by unit tests and for
// single-process deployments without Postgres.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

func (s *InMemoryStore) TailHash(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return "", nil
	}
	return s.entries[len(s.entries)-1].Hash, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryStore) ListByVault(_ context.Context, vaultID id.VaultID) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Entry
	// newest first
	for i := len(s.entries) - 1; i >= 0; i-- {
		if scoped, ok := s.entries[i].VaultID(); ok && scoped == vaultID {
			copied := *s.entries[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Tamper overwrites a stored field by index. Only exists so verification tests
// can corrupt the chain; nothing in production code calls it.
func (s *InMemoryStore) Tamper(index int, mutate func(*Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= 0 && index < len(s.entries) {
		mutate(s.entries[index])
	}
}
