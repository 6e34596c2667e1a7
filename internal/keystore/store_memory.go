package keystore

import (
	"context"
	"sync"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

type envelopeKey struct {
	vaultID       id.VaultID
	participantID id.UserID
}

// InMemoryStore keeps envelopes in a map guarded by one RWMutex, which also
// makes Insert atomic with its duplicate check.
type InMemoryStore struct {
	mu        sync.RWMutex
	envelopes map[envelopeKey]Envelope
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{envelopes: make(map[envelopeKey]Envelope)}
}

func (s *InMemoryStore) Insert(_ context.Context, envelope *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := envelopeKey{envelope.VaultID, envelope.ParticipantID}
	if _, exists := s.envelopes[key]; exists {
		return sentinel.ErrConflict
	}
	s.envelopes[key] = *envelope
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, vaultID id.VaultID, participantID id.UserID) (*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if envelope, ok := s.envelopes[envelopeKey{vaultID, participantID}]; ok {
		return &envelope, nil
	}
	return nil, sentinel.ErrNotFound
}

// MarkSealed checks the stored status and writes inside one critical section;
// the second of two racing seals sees a sealed envelope and fails.
func (s *InMemoryStore) MarkSealed(_ context.Context, envelope *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := envelopeKey{envelope.VaultID, envelope.ParticipantID}
	existing, exists := s.envelopes[key]
	if !exists || existing.Status != StatusPending {
		return sentinel.ErrNotFound
	}
	s.envelopes[key] = *envelope
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, vaultID id.VaultID, participantID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := envelopeKey{vaultID, participantID}
	if _, exists := s.envelopes[key]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.envelopes, key)
	return nil
}
