package vault

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"heirloom/internal/audit"
	"heirloom/internal/keystore"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
)

type VaultServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	envelopes  *keystore.Service
	auditStore *audit.InMemoryStore
	service    *Service
	owner      id.UserID
}

func TestVaultServiceSuite(t *testing.T) {
	suite.Run(t, new(VaultServiceSuite))
}

func (s *VaultServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	now := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	recorder := audit.NewRecorder(s.auditStore, audit.WithClock(clock))
	s.envelopes = keystore.NewService(keystore.NewInMemoryStore(), recorder, keystore.WithClock(clock))
	s.service = NewService(s.store, s.envelopes, recorder, WithClock(clock))
	s.owner = id.NewUserID()
}

func (s *VaultServiceSuite) createVault() *Vault {
	vault, err := s.service.Create(context.Background(), s.owner, "estate documents", "", "ruleset-1")
	s.Require().NoError(err)
	return vault
}

func (s *VaultServiceSuite) auditActions() []audit.Action {
	entries, err := s.auditStore.List(context.Background())
	s.Require().NoError(err)
	actions := make([]audit.Action, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// =============================================================================
// Create / Get Tests
// =============================================================================

func (s *VaultServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("creates a vault with no participants or items", func() {
		vault := s.createVault()
		s.Equal(s.owner, vault.OwnerID)
		s.True(vault.IsOwner(s.owner))
		s.Empty(vault.Participants)
		s.Empty(vault.Items)
		s.Contains(s.auditActions(), audit.ActionVaultCreated)
	})

	s.Run("empty title is rejected", func() {
		_, err := s.service.Create(ctx, s.owner, "", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("nil owner is rejected", func() {
		_, err := s.service.Create(ctx, id.UserID{}, "title", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *VaultServiceSuite) TestGet() {
	ctx := context.Background()

	s.Run("returns the stored vault", func() {
		created := s.createVault()
		vault, err := s.service.Get(ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(created.ID, vault.ID)
	})

	s.Run("unknown vault is not found", func() {
		_, err := s.service.Get(ctx, id.NewVaultID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *VaultServiceSuite) TestListByOwner() {
	ctx := context.Background()
	s.createVault()
	s.createVault()

	vaults, err := s.service.ListByOwner(ctx, s.owner)
	s.Require().NoError(err)
	s.Len(vaults, 2)

	vaults, err = s.service.ListByOwner(ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(vaults)
}

// =============================================================================
// Participant Tests
// =============================================================================

func (s *VaultServiceSuite) TestAddParticipant() {
	ctx := context.Background()

	s.Run("owner adds a participant and a pending envelope appears", func() {
		vault := s.createVault()
		userID := id.NewUserID()

		participant, err := s.service.AddParticipant(ctx, vault.ID, s.owner, userID, id.RoleBeneficiary)
		s.Require().NoError(err)
		s.Equal(id.RoleBeneficiary, participant.Role)

		stored, err := s.service.Get(ctx, vault.ID)
		s.Require().NoError(err)
		_, ok := stored.Participant(userID)
		s.True(ok)

		envelope, err := s.envelopes.Lookup(ctx, vault.ID, userID)
		s.Require().NoError(err)
		s.Equal(keystore.StatusPending, envelope.Status)

		s.Contains(s.auditActions(), audit.ActionParticipantAdded)
	})

	s.Run("non-owner actor is rejected with an opaque message", func() {
		vault := s.createVault()
		_, err := s.service.AddParticipant(ctx, vault.ID, id.NewUserID(), id.NewUserID(), id.RoleWitness)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(err.Error(), "not permitted")
	})

	s.Run("owner cannot be a participant of their own vault", func() {
		vault := s.createVault()
		_, err := s.service.AddParticipant(ctx, vault.ID, s.owner, s.owner, id.RoleBeneficiary)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("duplicate participant conflicts", func() {
		vault := s.createVault()
		userID := id.NewUserID()
		_, err := s.service.AddParticipant(ctx, vault.ID, s.owner, userID, id.RoleWitness)
		s.Require().NoError(err)

		_, err = s.service.AddParticipant(ctx, vault.ID, s.owner, userID, id.RoleBeneficiary)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown role is rejected", func() {
		vault := s.createVault()
		_, err := s.service.AddParticipant(ctx, vault.ID, s.owner, id.NewUserID(), id.Role("executor"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *VaultServiceSuite) TestRemoveParticipant() {
	ctx := context.Background()

	s.Run("removal drops membership and the envelope", func() {
		vault := s.createVault()
		userID := id.NewUserID()
		_, err := s.service.AddParticipant(ctx, vault.ID, s.owner, userID, id.RoleBeneficiary)
		s.Require().NoError(err)

		s.Require().NoError(s.service.RemoveParticipant(ctx, vault.ID, s.owner, userID))

		stored, err := s.service.Get(ctx, vault.ID)
		s.Require().NoError(err)
		_, ok := stored.Participant(userID)
		s.False(ok)

		_, err = s.envelopes.Lookup(ctx, vault.ID, userID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		s.Contains(s.auditActions(), audit.ActionParticipantRemoved)
	})

	s.Run("non-owner actor cannot remove", func() {
		vault := s.createVault()
		userID := id.NewUserID()
		_, err := s.service.AddParticipant(ctx, vault.ID, s.owner, userID, id.RoleShared)
		s.Require().NoError(err)

		err = s.service.RemoveParticipant(ctx, vault.ID, id.NewUserID(), userID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("removing a non-participant is not found", func() {
		vault := s.createVault()
		err := s.service.RemoveParticipant(ctx, vault.ID, s.owner, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Item Tests
// =============================================================================

func (s *VaultServiceSuite) TestAddItem() {
	ctx := context.Background()

	s.Run("owner adds an item reference", func() {
		vault := s.createVault()
		item, err := s.service.AddItem(ctx, vault.ID, s.owner, "will.pdf", "blobs/abc123")
		s.Require().NoError(err)
		s.False(item.ID.IsNil())

		stored, err := s.service.Get(ctx, vault.ID)
		s.Require().NoError(err)
		s.Len(stored.Items, 1)
		s.Equal("will.pdf", stored.Items[0].Name)
	})

	s.Run("non-owner cannot add items", func() {
		vault := s.createVault()
		_, err := s.service.AddItem(ctx, vault.ID, id.NewUserID(), "will.pdf", "blobs/abc123")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("empty name or blob reference is rejected", func() {
		vault := s.createVault()
		_, err := s.service.AddItem(ctx, vault.ID, s.owner, "", "blobs/abc123")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		_, err = s.service.AddItem(ctx, vault.ID, s.owner, "will.pdf", "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func newRacingService() (*Service, *InMemoryStore, *keystore.Service) {
	store := NewInMemoryStore()
	recorder := audit.NewRecorder(audit.NewInMemoryStore())
	envelopes := keystore.NewService(keystore.NewInMemoryStore(), recorder)
	return NewService(store, envelopes, recorder), store, envelopes
}

// TestConcurrentAddParticipants races membership writes for the same vault.
// Mutations are whole-document read-modify-write, so without per-vault
// serialization concurrent adds overwrite each other and members vanish after
// their add was reported successful.
func (s *VaultServiceSuite) TestConcurrentAddParticipants() {
	ctx := context.Background()
	service, _, envelopes := newRacingService()
	owner := id.NewUserID()
	vault, err := service.Create(ctx, owner, "estate documents", "", "")
	s.Require().NoError(err)

	const adders = 8
	users := make([]id.UserID, adders)
	for i := range users {
		users[i] = id.NewUserID()
	}

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range adders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := service.AddParticipant(ctx, vault.ID, owner, users[i], id.RoleBeneficiary)
			s.NoError(err)
		}()
	}
	close(start)
	wg.Wait()

	stored, err := service.Get(ctx, vault.ID)
	s.Require().NoError(err)
	s.Len(stored.Participants, adders)
	for _, user := range users {
		_, ok := stored.Participant(user)
		s.True(ok, "added participant missing from stored vault")
		_, err := envelopes.Lookup(ctx, vault.ID, user)
		s.NoError(err, "added participant has no envelope")
	}
}

// TestConcurrentAddSameParticipant races duplicate adds of one user: exactly
// one wins and the stored vault holds the user once.
func (s *VaultServiceSuite) TestConcurrentAddSameParticipant() {
	ctx := context.Background()
	service, _, _ := newRacingService()
	owner := id.NewUserID()
	user := id.NewUserID()
	vault, err := service.Create(ctx, owner, "estate documents", "", "")
	s.Require().NoError(err)

	const adders = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	var added, conflicted atomic.Int32
	for range adders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := service.AddParticipant(ctx, vault.ID, owner, user, id.RoleWitness)
			switch {
			case err == nil:
				added.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), added.Load())
	s.Equal(int32(adders-1), conflicted.Load())

	stored, err := service.Get(ctx, vault.ID)
	s.Require().NoError(err)
	s.Len(stored.Participants, 1)
}

// =============================================================================
// Transaction Boundary Tests
// =============================================================================

// trackingRunner records whether collaborator writes happen inside RunInTx.
type trackingRunner struct {
	depth atomic.Int32
	calls atomic.Int32
}

func (r *trackingRunner) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	r.calls.Add(1)
	r.depth.Add(1)
	defer r.depth.Add(-1)
	return fn(ctx)
}

func (r *trackingRunner) inTx() bool { return r.depth.Load() > 0 }

type txObservingStore struct {
	*InMemoryStore
	runner      *trackingRunner
	updatesInTx int
}

func (s *txObservingStore) Update(ctx context.Context, vault *Vault) error {
	if s.runner.inTx() {
		s.updatesInTx++
	}
	return s.InMemoryStore.Update(ctx, vault)
}

type txObservingEnvelopes struct {
	runner     *trackingRunner
	addInTx    int
	removeInTx int
}

func (e *txObservingEnvelopes) AddPending(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*keystore.Envelope, error) {
	if e.runner.inTx() {
		e.addInTx++
	}
	return &keystore.Envelope{
		VaultID:       vaultID,
		ParticipantID: participantID,
		Status:        keystore.StatusPending,
	}, nil
}

func (e *txObservingEnvelopes) Remove(_ context.Context, _ id.VaultID, _ id.UserID) error {
	if e.runner.inTx() {
		e.removeInTx++
	}
	return nil
}

// TestMembershipWritesShareTransaction verifies the vault update and its
// envelope write run inside a single runner call, so on transactional stores a
// failed envelope write rolls the membership change back with it.
func (s *VaultServiceSuite) TestMembershipWritesShareTransaction() {
	ctx := context.Background()
	runner := &trackingRunner{}
	store := &txObservingStore{InMemoryStore: NewInMemoryStore(), runner: runner}
	envelopes := &txObservingEnvelopes{runner: runner}
	recorder := audit.NewRecorder(audit.NewInMemoryStore())
	service := NewService(store, envelopes, recorder, WithTxRunner(runner))

	owner := id.NewUserID()
	user := id.NewUserID()
	vault, err := service.Create(ctx, owner, "estate documents", "", "")
	s.Require().NoError(err)

	_, err = service.AddParticipant(ctx, vault.ID, owner, user, id.RoleBeneficiary)
	s.Require().NoError(err)
	s.Equal(int32(1), runner.calls.Load())
	s.Equal(1, store.updatesInTx)
	s.Equal(1, envelopes.addInTx)

	s.Require().NoError(service.RemoveParticipant(ctx, vault.ID, owner, user))
	s.Equal(int32(2), runner.calls.Load())
	s.Equal(2, store.updatesInTx)
	s.Equal(1, envelopes.removeInTx)
}
