package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
)

// Recorder is the single logical writer for the chain. Appends are serialized
// behind one mutex: each entry's PrevHash depends on the prior entry, so
// concurrent unordered appends would fork the chain. Reads take no lock.
type Recorder struct {
	mu     sync.Mutex
	store  Store
	clock  func() time.Time
	mirror chan<- *Entry
	logger *slog.Logger

	// compromised latches after VerifyChain finds a divergence. While set,
	// appends are refused, which also blocks key disclosures: the engine logs
	// before disclosing. A later clean verification clears it.
	compromised atomic.Bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithMirror attaches an outbox channel. Appended entries are offered to it
// without blocking; the chain store stays the source of truth, the mirror is
// best-effort delivery to downstream consumers.
func WithMirror(mirror chan<- *Entry) Option {
	return func(r *Recorder) {
		r.mirror = mirror
	}
}

// WithLogger sets a logger for mirror overflow reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store: store,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Append creates, hashes, and persists one entry. actor is nil for
// system-triggered events. A failed append is surfaced to the caller and never
// retried here: re-appending without confirming the prior attempt's outcome
// would corrupt the chain.
func (r *Recorder) Append(ctx context.Context, actor *id.UserID, action Action, details Details) (*Entry, error) {
	if r.compromised.Load() {
		return nil, dErrors.New(dErrors.CodeChainIntegrity, "audit chain failed verification, appends halted")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prevHash, err := r.store.TailHash(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read audit chain tail")
	}

	// Truncate to microseconds so the hash input survives TIMESTAMPTZ storage.
	timestamp := r.clock().UTC().Truncate(time.Microsecond)

	entry := &Entry{
		ID:        uuid.New(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		Timestamp: timestamp,
		PrevHash:  prevHash,
	}
	entry.Hash = ComputeHash(actor, action, timestamp, prevHash)

	if err := r.store.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "append audit entry")
	}

	if r.mirror != nil {
		select {
		case r.mirror <- entry:
		default:
			if r.logger != nil {
				r.logger.WarnContext(ctx, "audit mirror buffer full, dropping entry",
					"entry_id", entry.ID.String(),
					"action", string(entry.Action),
				)
			}
		}
	}
	return entry, nil
}

// EntriesForVault returns the vault-scoped view of the chain, newest first.
// Entries without a resolvable vault ID are excluded.
func (r *Recorder) EntriesForVault(ctx context.Context, vaultID id.VaultID) ([]*Entry, error) {
	entries, err := r.store.ListByVault(ctx, vaultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list vault audit entries")
	}
	return entries, nil
}

// VerifyResult reports the outcome of a full-chain verification.
type VerifyResult struct {
	OK bool
	// FirstDivergent is the index (in global chain order) of the first entry
	// whose recomputed digest or back-pointer disagrees with stored state.
	// -1 when the chain verifies.
	FirstDivergent int
	Checked        int
}

// VerifyChain recomputes every entry's digest from its stored fields and walks
// the PrevHash pointers. Any mismatch signals tampering or a bug; callers must
// treat a failed result as fatal to trust in the affected history.
func (r *Recorder) VerifyChain(ctx context.Context) (VerifyResult, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		return VerifyResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "list audit entries")
	}

	prevHash := ""
	for i, entry := range entries {
		if entry.PrevHash != prevHash {
			r.compromised.Store(true)
			return VerifyResult{OK: false, FirstDivergent: i, Checked: len(entries)}, nil
		}
		recomputed := ComputeHash(entry.Actor, entry.Action, entry.Timestamp, entry.PrevHash)
		if recomputed != entry.Hash {
			r.compromised.Store(true)
			return VerifyResult{OK: false, FirstDivergent: i, Checked: len(entries)}, nil
		}
		prevHash = entry.Hash
	}
	// A clean pass over restored history lifts the halt.
	r.compromised.Store(false)
	return VerifyResult{OK: true, FirstDivergent: -1, Checked: len(entries)}, nil
}
