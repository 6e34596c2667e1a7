package vault

import (
	"context"
	"sync"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// InMemoryStore keeps vaults in a map guarded by one RWMutex. Vaults are
// copied in and out so callers never share slices with the store.
type InMemoryStore struct {
	mu     sync.RWMutex
	vaults map[id.VaultID]Vault
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{vaults: make(map[id.VaultID]Vault)}
}

func copyVault(v Vault) Vault {
	copied := v
	copied.Participants = append([]Participant(nil), v.Participants...)
	copied.Items = append([]Item(nil), v.Items...)
	return copied
}

func (s *InMemoryStore) Save(_ context.Context, vault *Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[vault.ID] = copyVault(*vault)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, vaultID id.VaultID) (*Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vault, ok := s.vaults[vaultID]; ok {
		copied := copyVault(vault)
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, vault *Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vaults[vault.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.vaults[vault.ID] = copyVault(*vault)
	return nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Vault
	for _, vault := range s.vaults {
		if vault.OwnerID == ownerID {
			copied := copyVault(vault)
			out = append(out, &copied)
		}
	}
	return out, nil
}
