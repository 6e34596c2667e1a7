package keystore

import (
	"context"
	"errors"
	"time"

	"heirloom/internal/audit"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/sentinel"
)

// Store persists envelopes keyed by (vault, participant). Insert must be
// atomic with its duplicate check; check-then-insert races are the store's
// problem, not the service's.
type Store interface {
	Insert(ctx context.Context, envelope *Envelope) error
	Find(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*Envelope, error)
	// MarkSealed writes the sealed envelope only while the stored one is still
	// pending, atomically with that check, so two racing seals cannot both
	// succeed. Returns sentinel.ErrNotFound when no pending envelope remains.
	MarkSealed(ctx context.Context, envelope *Envelope) error
	Delete(ctx context.Context, vaultID id.VaultID, participantID id.UserID) error
}

// AuditLog is the slice of the audit recorder this service appends to.
type AuditLog interface {
	Append(ctx context.Context, actor *id.UserID, action audit.Action, details audit.Details) (*audit.Entry, error)
}

// Service owns envelope lifecycle: pending on participant add, sealed when key
// material arrives, removed when the participant leaves. Reads are never
// logged here; disclosure logging belongs to the access engine, which knows
// why a lookup happened.
type Service struct {
	store Store
	log   AuditLog
	clock func() time.Time
}

type ServiceOption func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(store Store, log AuditLog, opts ...ServiceOption) *Service {
	s := &Service{store: store, log: log, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AddPending creates the empty envelope for a newly added participant.
func (s *Service) AddPending(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*Envelope, error) {
	envelope := &Envelope{
		VaultID:       vaultID,
		ParticipantID: participantID,
		Status:        StatusPending,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.store.Insert(ctx, envelope); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "participant already has an envelope for this vault")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "insert envelope")
	}
	return envelope, nil
}

// Seal transitions pending -> sealed with the supplied ciphertext.
func (s *Service) Seal(ctx context.Context, vaultID id.VaultID, participantID id.UserID, ciphertext []byte, actor id.UserID) (*Envelope, error) {
	if len(ciphertext) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "ciphertext must not be empty")
	}
	envelope, err := s.store.Find(ctx, vaultID, participantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no pending envelope for participant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find envelope")
	}
	if envelope.Status != StatusPending {
		return nil, dErrors.New(dErrors.CodeNotFound, "no pending envelope for participant")
	}

	sealedAt := s.clock().UTC()
	envelope.Ciphertext = ciphertext
	envelope.Status = StatusSealed
	envelope.SealedAt = &sealedAt
	if err := s.store.MarkSealed(ctx, envelope); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// A concurrent seal got there first.
			return nil, dErrors.New(dErrors.CodeNotFound, "no pending envelope for participant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "seal envelope")
	}

	if _, err := s.log.Append(ctx, &actor, audit.ActionKeySealed, audit.EnvelopeDetails{
		VaultID:       vaultID,
		ParticipantID: participantID,
	}); err != nil {
		return nil, err
	}
	return envelope, nil
}

// Lookup returns the envelope for (vault, participant). Callers performing a
// disclosure must append their own audit entry before handing the envelope on.
func (s *Service) Lookup(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*Envelope, error) {
	envelope, err := s.store.Find(ctx, vaultID, participantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no envelope for participant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find envelope")
	}
	return envelope, nil
}

// Remove irreversibly deletes the envelope. Re-adding the participant later
// starts over with a fresh pending envelope.
func (s *Service) Remove(ctx context.Context, vaultID id.VaultID, participantID id.UserID) error {
	if err := s.store.Delete(ctx, vaultID, participantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no envelope for participant")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete envelope")
	}
	return nil
}
