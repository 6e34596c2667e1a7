package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
)

// =============================================================================
// Recorder Test Suite
// =============================================================================
// Justification for unit tests: chain linkage and tamper detection are pure
// invariants over stored bytes; exercising them through HTTP would only add
// noise around the property under test.

type RecorderSuite struct {
	suite.Suite
	store    *InMemoryStore
	recorder *Recorder
	now      time.Time
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.recorder = NewRecorder(s.store, WithClock(func() time.Time {
		s.now = s.now.Add(time.Second)
		return s.now
	}))
}

func (s *RecorderSuite) appendRelease(vaultID id.VaultID, actor *id.UserID, action Action) *Entry {
	entry, err := s.recorder.Append(context.Background(), actor, action, ReleaseDetails{
		VaultID:   vaultID,
		ReleaseID: id.NewReleaseID(),
		To:        "pending",
	})
	s.Require().NoError(err)
	return entry
}

// =============================================================================
// Append Tests
// =============================================================================

func (s *RecorderSuite) TestAppend() {
	ctx := context.Background()
	vaultID := id.NewVaultID()
	actor := id.NewUserID()

	s.Run("first entry has empty previous hash", func() {
		entry := s.appendRelease(vaultID, &actor, ActionReleaseCreated)
		s.Empty(entry.PrevHash)
		s.NotEmpty(entry.Hash)
		s.Equal(ComputeHash(&actor, ActionReleaseCreated, entry.Timestamp, ""), entry.Hash)
	})

	s.Run("subsequent entries link to the predecessor", func() {
		first := s.appendRelease(vaultID, &actor, ActionReleaseStarted)
		second := s.appendRelease(vaultID, &actor, ActionReleaseApproved)
		s.Equal(first.Hash, second.PrevHash)
		s.NotEqual(first.Hash, second.Hash)
	})

	s.Run("nil actor is accepted for system events", func() {
		entry, err := s.recorder.Append(ctx, nil, ActionReleaseCompleted, ReleaseDetails{
			VaultID:   vaultID,
			ReleaseID: id.NewReleaseID(),
			From:      "approved",
			To:        "released",
		})
		s.NoError(err)
		s.Nil(entry.Actor)
		s.Equal(ComputeHash(nil, ActionReleaseCompleted, entry.Timestamp, entry.PrevHash), entry.Hash)
	})

	s.Run("timestamps are UTC and microsecond-truncated", func() {
		entry := s.appendRelease(vaultID, &actor, ActionReleaseCancelled)
		s.Equal(time.UTC, entry.Timestamp.Location())
		s.Equal(entry.Timestamp, entry.Timestamp.Truncate(time.Microsecond))
	})
}

func (s *RecorderSuite) TestAppendMirror() {
	ctx := context.Background()
	vaultID := id.NewVaultID()
	actor := id.NewUserID()

	s.Run("appended entry is offered to the mirror channel", func() {
		mirror := make(chan *Entry, 1)
		recorder := NewRecorder(s.store, WithMirror(mirror))

		entry, err := recorder.Append(ctx, &actor, ActionKeySealed, EnvelopeDetails{
			VaultID:       vaultID,
			ParticipantID: actor,
		})
		s.Require().NoError(err)

		select {
		case mirrored := <-mirror:
			s.Equal(entry.Hash, mirrored.Hash)
		default:
			s.Fail("expected entry on mirror channel")
		}
	})

	s.Run("full mirror channel never blocks the append", func() {
		mirror := make(chan *Entry) // unbuffered, no reader
		recorder := NewRecorder(s.store, WithMirror(mirror))

		_, err := recorder.Append(ctx, &actor, ActionKeySealed, EnvelopeDetails{
			VaultID:       vaultID,
			ParticipantID: actor,
		})
		s.NoError(err)
	})
}

func (s *RecorderSuite) TestAppendStoreFailure() {
	s.Run("store failure surfaces as unavailable", func() {
		recorder := NewRecorder(failingStore{})
		_, err := recorder.Append(context.Background(), nil, ActionReleaseCreated, ReleaseDetails{
			VaultID:   id.NewVaultID(),
			ReleaseID: id.NewReleaseID(),
			To:        "pending",
		})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Per-Vault View Tests
// =============================================================================

func (s *RecorderSuite) TestEntriesForVault() {
	ctx := context.Background()
	actor := id.NewUserID()
	vaultA := id.NewVaultID()
	vaultB := id.NewVaultID()

	first := s.appendRelease(vaultA, &actor, ActionReleaseCreated)
	s.appendRelease(vaultB, &actor, ActionReleaseCreated)
	second := s.appendRelease(vaultA, &actor, ActionReleaseStarted)

	s.Run("only entries for the requested vault are returned, newest first", func() {
		entries, err := s.recorder.EntriesForVault(ctx, vaultA)
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(second.Hash, entries[0].Hash)
		s.Equal(first.Hash, entries[1].Hash)
	})

	s.Run("vault with no entries returns empty slice", func() {
		entries, err := s.recorder.EntriesForVault(ctx, id.NewVaultID())
		s.NoError(err)
		s.Empty(entries)
	})
}

// =============================================================================
// Verification Tests
// =============================================================================

func (s *RecorderSuite) TestVerifyChain() {
	ctx := context.Background()
	vaultID := id.NewVaultID()
	actor := id.NewUserID()

	s.Run("empty chain verifies", func() {
		result, err := s.recorder.VerifyChain(ctx)
		s.Require().NoError(err)
		s.True(result.OK)
		s.Equal(-1, result.FirstDivergent)
		s.Zero(result.Checked)
	})

	s.Run("untouched chain verifies end to end", func() {
		for range 10 {
			s.appendRelease(vaultID, &actor, ActionReleaseCreated)
		}
		result, err := s.recorder.VerifyChain(ctx)
		s.Require().NoError(err)
		s.True(result.OK)
		s.Equal(-1, result.FirstDivergent)
		s.Equal(10, result.Checked)
	})
}

func (s *RecorderSuite) TestVerifyChainDetectsTampering() {
	ctx := context.Background()
	vaultID := id.NewVaultID()
	actor := id.NewUserID()

	for range 5 {
		s.appendRelease(vaultID, &actor, ActionReleaseCreated)
	}

	s.Run("rewritten action is caught at the tampered index", func() {
		s.store.Tamper(2, func(e *Entry) { e.Action = ActionKeyDisclosed })

		result, err := s.recorder.VerifyChain(ctx)
		s.Require().NoError(err)
		s.False(result.OK)
		s.Equal(2, result.FirstDivergent)

		s.store.Tamper(2, func(e *Entry) { e.Action = ActionReleaseCreated })
	})

	s.Run("rewritten timestamp is caught", func() {
		s.store.Tamper(4, func(e *Entry) { e.Timestamp = e.Timestamp.Add(time.Minute) })

		result, err := s.recorder.VerifyChain(ctx)
		s.Require().NoError(err)
		s.False(result.OK)
		s.Equal(4, result.FirstDivergent)

		s.store.Tamper(4, func(e *Entry) { e.Timestamp = e.Timestamp.Add(-time.Minute) })
	})

	s.Run("broken back-pointer is caught", func() {
		s.store.Tamper(3, func(e *Entry) { e.PrevHash = "0000" })

		result, err := s.recorder.VerifyChain(ctx)
		s.Require().NoError(err)
		s.False(result.OK)
		s.Equal(3, result.FirstDivergent)
	})
}

// TestVerifyFailureHaltsAppends: a failed verification latches the recorder,
// refusing further appends. Disclosures log before returning key material, so
// halting appends halts disclosures too. A clean pass lifts the halt.
func (s *RecorderSuite) TestVerifyFailureHaltsAppends() {
	ctx := context.Background()
	vaultID := id.NewVaultID()
	actor := id.NewUserID()

	for range 3 {
		s.appendRelease(vaultID, &actor, ActionReleaseCreated)
	}

	s.store.Tamper(1, func(e *Entry) { e.Action = ActionKeyDisclosed })
	result, err := s.recorder.VerifyChain(ctx)
	s.Require().NoError(err)
	s.Require().False(result.OK)

	_, err = s.recorder.Append(ctx, &actor, ActionKeyDisclosed, DisclosureDetails{
		VaultID:       vaultID,
		ParticipantID: actor,
		Role:          id.RoleBeneficiary,
	})
	s.True(dErrors.HasCode(err, dErrors.CodeChainIntegrity))

	s.store.Tamper(1, func(e *Entry) { e.Action = ActionReleaseCreated })
	result, err = s.recorder.VerifyChain(ctx)
	s.Require().NoError(err)
	s.Require().True(result.OK)

	_, err = s.recorder.Append(ctx, &actor, ActionReleaseCreated, ReleaseDetails{
		VaultID:   vaultID,
		ReleaseID: id.NewReleaseID(),
		To:        "pending",
	})
	s.NoError(err)
}

// =============================================================================
// Hash Tests
// =============================================================================

func (s *RecorderSuite) TestComputeHash() {
	actor := id.NewUserID()
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Run("identical inputs produce identical digests", func() {
		a := ComputeHash(&actor, ActionKeyDisclosed, ts, "abc")
		b := ComputeHash(&actor, ActionKeyDisclosed, ts, "abc")
		s.Equal(a, b)
		s.Len(a, 64)
	})

	s.Run("each input field perturbs the digest", func() {
		base := ComputeHash(&actor, ActionKeyDisclosed, ts, "abc")
		other := id.NewUserID()
		s.NotEqual(base, ComputeHash(&other, ActionKeyDisclosed, ts, "abc"))
		s.NotEqual(base, ComputeHash(&actor, ActionKeySealed, ts, "abc"))
		s.NotEqual(base, ComputeHash(&actor, ActionKeyDisclosed, ts.Add(time.Nanosecond), "abc"))
		s.NotEqual(base, ComputeHash(&actor, ActionKeyDisclosed, ts, "abd"))
	})

	s.Run("non-UTC timestamps normalize to the same digest", func() {
		local := ts.In(time.FixedZone("UTC+2", 2*60*60))
		s.Equal(ComputeHash(&actor, ActionKeySealed, ts, ""), ComputeHash(&actor, ActionKeySealed, local, ""))
	})
}

// failingStore simulates an unreachable backing store.
type failingStore struct{}

func (failingStore) Append(context.Context, *Entry) error { return errStoreDown }
func (failingStore) TailHash(context.Context) (string, error) {
	return "", errStoreDown
}
func (failingStore) List(context.Context) ([]*Entry, error) { return nil, errStoreDown }
func (failingStore) ListByVault(context.Context, id.VaultID) ([]*Entry, error) {
	return nil, errStoreDown
}

var errStoreDown = errors.New("store down")
