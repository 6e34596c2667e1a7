package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"heirloom/internal/audit"
	"heirloom/internal/keystore"
	"heirloom/internal/release"
	"heirloom/internal/vault"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
)

// =============================================================================
// Access Engine Test Suite
// =============================================================================
// The engine is wired against the real release, keystore, and audit
// implementations (in-memory stores) rather than mocks: the denial outcomes
// depend on the interplay of all three, and that interplay is the thing under
// test.

type AccessEngineSuite struct {
	suite.Suite
	releases   *release.Service
	keys       *keystore.Service
	recorder   *audit.Recorder
	auditStore *audit.InMemoryStore
	metrics    *capturedMetrics
	engine     *Engine

	owner       id.UserID
	beneficiary id.UserID
	witness     id.UserID
	vault       *vault.Vault
}

func TestAccessEngineSuite(t *testing.T) {
	suite.Run(t, new(AccessEngineSuite))
}

type capturedMetrics struct {
	mu          sync.Mutex
	outcomes    map[string]int
	disclosures int
}

func (m *capturedMetrics) ObserveEvaluation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *capturedMetrics) ObserveDisclosure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disclosures++
}

func (s *AccessEngineSuite) SetupTest() {
	s.auditStore = audit.NewInMemoryStore()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	s.recorder = audit.NewRecorder(s.auditStore, audit.WithClock(clock))
	s.releases = release.NewService(release.NewInMemoryStore(), s.recorder, release.WithClock(clock))
	s.keys = keystore.NewService(keystore.NewInMemoryStore(), s.recorder, keystore.WithClock(clock))
	s.metrics = &capturedMetrics{outcomes: make(map[string]int)}
	s.engine = NewEngine(s.releases, s.keys, s.recorder, WithMetrics(s.metrics))

	s.owner = id.NewUserID()
	s.beneficiary = id.NewUserID()
	s.witness = id.NewUserID()
	s.vault = &vault.Vault{
		ID:      id.NewVaultID(),
		OwnerID: s.owner,
		Title:   "estate",
		Items: []vault.Item{
			{ID: id.NewItemID(), Name: "will.pdf", BlobRef: "blobs/1"},
			{ID: id.NewItemID(), Name: "deeds.pdf", BlobRef: "blobs/2"},
		},
		Participants: []vault.Participant{
			{UserID: s.beneficiary, Role: id.RoleBeneficiary},
			{UserID: s.witness, Role: id.RoleWitness},
		},
	}
}

// sealKey provisions a sealed envelope for the participant.
func (s *AccessEngineSuite) sealKey(participantID id.UserID) {
	ctx := context.Background()
	_, err := s.keys.AddPending(ctx, s.vault.ID, participantID)
	s.Require().NoError(err)
	_, err = s.keys.Seal(ctx, s.vault.ID, participantID, []byte("sealed-for-"+participantID.String()), s.owner)
	s.Require().NoError(err)
}

// driveRelease creates a release and walks it to target.
func (s *AccessEngineSuite) driveRelease(target release.Status) *release.Release {
	ctx := context.Background()
	rel, err := s.releases.Create(ctx, s.vault.ID, &s.owner)
	s.Require().NoError(err)

	path := map[release.Status][]release.Status{
		release.StatusPending:    {},
		release.StatusInProgress: {release.StatusInProgress},
		release.StatusApproved:   {release.StatusInProgress, release.StatusApproved},
		release.StatusReleased:   {release.StatusInProgress, release.StatusApproved, release.StatusReleased},
		release.StatusCancelled:  {release.StatusCancelled},
	}
	for _, step := range path[target] {
		rel, err = s.releases.Transition(ctx, rel.ID, step, &s.owner)
		s.Require().NoError(err)
	}
	return rel
}

func (s *AccessEngineSuite) disclosureCount() int {
	entries, err := s.auditStore.List(context.Background())
	s.Require().NoError(err)
	count := 0
	for _, e := range entries {
		if e.Action == audit.ActionKeyDisclosed {
			count++
		}
	}
	return count
}

// =============================================================================
// Owner and Outsider Tests
// =============================================================================

func (s *AccessEngineSuite) TestEvaluateOwner() {
	ctx := context.Background()

	s.Run("owner sees everything with no release", func() {
		decision, err := s.engine.Evaluate(ctx, s.vault, s.owner)
		s.Require().NoError(err)
		s.True(decision.CanAccessFiles)
		s.Equal(RoleOwner, decision.Role)
		s.Len(decision.VisibleItems, 2)
		s.Nil(decision.SealedKey)
	})

	s.Run("owner access is never logged as a disclosure", func() {
		_, err := s.engine.Evaluate(ctx, s.vault, s.owner)
		s.Require().NoError(err)
		s.Zero(s.disclosureCount())
	})
}

func (s *AccessEngineSuite) TestEvaluateOutsider() {
	ctx := context.Background()

	s.Run("non-participant is refused with an opaque message", func() {
		_, err := s.engine.Evaluate(ctx, s.vault, id.NewUserID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(err.Error(), "not permitted")
	})

	s.Run("refusal is identical after the vault is fully released", func() {
		s.driveRelease(release.StatusReleased)
		_, err := s.engine.Evaluate(ctx, s.vault, id.NewUserID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(err.Error(), "not permitted")
	})
}

// =============================================================================
// Release-Gating Tests
// =============================================================================

func (s *AccessEngineSuite) TestEvaluateBeneficiary() {
	ctx := context.Background()

	s.Run("denied while the vault has no release", func() {
		s.SetupTest()
		s.sealKey(s.beneficiary)
		decision, err := s.engine.Evaluate(ctx, s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
		s.Equal(string(id.RoleBeneficiary), decision.Role)
		s.Equal(DenialNoRelease, decision.Denial)
		s.Empty(decision.VisibleItems)
		s.Nil(decision.SealedKey)
		s.Zero(s.disclosureCount())
	})

	s.Run("granted once the release completes", func() {
		s.SetupTest()
		s.sealKey(s.beneficiary)
		s.driveRelease(release.StatusReleased)

		decision, err := s.engine.Evaluate(ctx, s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.True(decision.CanAccessFiles)
		s.Empty(decision.Denial)
		s.Len(decision.VisibleItems, 2)
		s.Require().NotNil(decision.SealedKey)
		s.True(decision.SealedKey.Sealed())
		s.Equal(1, s.disclosureCount())
		s.Equal(1, s.metrics.disclosures)
	})

	s.Run("every disclosure is logged exactly once per evaluation", func() {
		s.SetupTest()
		s.sealKey(s.beneficiary)
		s.driveRelease(release.StatusReleased)

		for range 3 {
			_, err := s.engine.Evaluate(ctx, s.vault, s.beneficiary)
			s.Require().NoError(err)
		}
		s.Equal(3, s.disclosureCount())
	})
}

func (s *AccessEngineSuite) TestEvaluateReleaseStates() {
	notYet := []release.Status{release.StatusPending, release.StatusInProgress, release.StatusApproved}
	for _, status := range notYet {
		s.Run("denied while release is "+string(status), func() {
			s.SetupTest()
			s.sealKey(s.beneficiary)
			s.driveRelease(status)

			decision, err := s.engine.Evaluate(context.Background(), s.vault, s.beneficiary)
			s.Require().NoError(err)
			s.False(decision.CanAccessFiles)
			s.Equal(DenialNotReleased, decision.Denial)
			s.Nil(decision.SealedKey)
		})
	}

	s.Run("denied when the only release was cancelled", func() {
		s.SetupTest()
		s.sealKey(s.beneficiary)
		s.driveRelease(release.StatusCancelled)

		decision, err := s.engine.Evaluate(context.Background(), s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
	})

	s.Run("a released release keeps governing after a later one is cancelled", func() {
		s.SetupTest()
		s.sealKey(s.beneficiary)
		s.driveRelease(release.StatusReleased)
		s.driveRelease(release.StatusCancelled)

		decision, err := s.engine.Evaluate(context.Background(), s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.True(decision.CanAccessFiles)
	})

	s.Run("a newer unresolved release closes access again", func() {
		s.SetupTest()
		s.sealKey(s.beneficiary)
		s.driveRelease(release.StatusReleased)
		s.driveRelease(release.StatusPending)

		decision, err := s.engine.Evaluate(context.Background(), s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
	})
}

// =============================================================================
// Role Capability Tests
// =============================================================================

func (s *AccessEngineSuite) TestEvaluateRoleTable() {
	for _, role := range id.Roles() {
		s.Run(string(role)+" after full release", func() {
			s.SetupTest()
			participant := id.NewUserID()
			s.vault.Participants = append(s.vault.Participants, vault.Participant{UserID: participant, Role: role})
			s.sealKey(participant)
			s.driveRelease(release.StatusReleased)

			decision, err := s.engine.Evaluate(context.Background(), s.vault, participant)
			s.Require().NoError(err)
			s.Equal(string(role), decision.Role)
			if role.CanReceiveFiles() {
				s.True(decision.CanAccessFiles)
				s.NotNil(decision.SealedKey)
			} else {
				s.False(decision.CanAccessFiles)
				s.Empty(decision.VisibleItems)
				s.Nil(decision.SealedKey)
			}
		})
	}

	s.Run("witness denial is never logged as a disclosure", func() {
		s.SetupTest()
		s.sealKey(s.witness)
		s.driveRelease(release.StatusReleased)

		decision, err := s.engine.Evaluate(context.Background(), s.vault, s.witness)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
		s.Equal(DenialRole, decision.Denial)
		s.Zero(s.disclosureCount())
	})

	s.Run("unknown role fails closed", func() {
		s.SetupTest()
		participant := id.NewUserID()
		s.vault.Participants = append(s.vault.Participants, vault.Participant{UserID: participant, Role: id.Role("executor")})
		s.driveRelease(release.StatusReleased)

		decision, err := s.engine.Evaluate(context.Background(), s.vault, participant)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
	})
}

// =============================================================================
// Envelope-Gating Tests
// =============================================================================

func (s *AccessEngineSuite) TestEvaluateEnvelopeStates() {
	ctx := context.Background()

	s.Run("denied when no envelope exists", func() {
		s.driveRelease(release.StatusReleased)

		decision, err := s.engine.Evaluate(ctx, s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
		s.Equal(DenialNoEnvelope, decision.Denial)
		s.Nil(decision.SealedKey)
	})

	s.Run("denied while the envelope is still pending", func() {
		_, err := s.keys.AddPending(ctx, s.vault.ID, s.beneficiary)
		s.Require().NoError(err)

		decision, err := s.engine.Evaluate(ctx, s.vault, s.beneficiary)
		s.Require().NoError(err)
		s.False(decision.CanAccessFiles)
		s.Equal(DenialEnvelopePending, decision.Denial)
		s.Nil(decision.SealedKey)
		s.Zero(s.disclosureCount())
	})
}

// =============================================================================
// Disclosure Logging Failure Tests
// =============================================================================

type rejectingLog struct {
	inner *audit.Recorder
}

func (l *rejectingLog) Append(ctx context.Context, actor *id.UserID, action audit.Action, details audit.Details) (*audit.Entry, error) {
	if action == audit.ActionKeyDisclosed {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit chain unavailable")
	}
	return l.inner.Append(ctx, actor, action, details)
}

func (s *AccessEngineSuite) TestEvaluateUnloggableDisclosure() {
	ctx := context.Background()
	s.sealKey(s.beneficiary)
	s.driveRelease(release.StatusReleased)

	engine := NewEngine(s.releases, s.keys, &rejectingLog{inner: s.recorder})

	_, err := engine.Evaluate(ctx, s.vault, s.beneficiary)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Zero(s.disclosureCount())
}
