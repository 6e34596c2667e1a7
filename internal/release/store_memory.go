package release

import (
	"context"
	"sync"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// InMemoryStore keeps releases in maps guarded by one RWMutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	releases map[id.ReleaseID]Release
	byVault  map[id.VaultID][]id.ReleaseID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		releases: make(map[id.ReleaseID]Release),
		byVault:  make(map[id.VaultID][]id.ReleaseID),
	}
}

func (s *InMemoryStore) Save(_ context.Context, release *Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.releases[release.ID]; !exists {
		s.byVault[release.VaultID] = append(s.byVault[release.VaultID], release.ID)
	}
	s.releases[release.ID] = *release
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, releaseID id.ReleaseID) (*Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if release, ok := s.releases[releaseID]; ok {
		return &release, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, release *Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.releases[release.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.releases[release.ID] = *release
	return nil
}

func (s *InMemoryStore) ListByVault(_ context.Context, vaultID id.VaultID) ([]*Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Release
	for _, releaseID := range s.byVault[vaultID] {
		release := s.releases[releaseID]
		out = append(out, &release)
	}
	return out, nil
}
