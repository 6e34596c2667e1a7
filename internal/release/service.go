package release

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"heirloom/internal/audit"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/sentinel"
)

// numVaultShards spreads per-vault serialization across independent mutexes so
// unrelated vaults never contend.
const numVaultShards = 128

// Store persists releases, keyed by vault and trigger time.
type Store interface {
	Save(ctx context.Context, release *Release) error
	FindByID(ctx context.Context, releaseID id.ReleaseID) (*Release, error)
	Update(ctx context.Context, release *Release) error
	ListByVault(ctx context.Context, vaultID id.VaultID) ([]*Release, error)
}

// AuditLog is the slice of the audit recorder this service appends to.
type AuditLog interface {
	Append(ctx context.Context, actor *id.UserID, action audit.Action, details audit.Details) (*audit.Entry, error)
}

// ActiveCache is an optional read-through cache for ActiveRelease lookups,
// invalidated on every mutation. The evaluate path is read-heavy; the store is
// only authoritative.
type ActiveCache interface {
	Get(ctx context.Context, vaultID id.VaultID) (*Release, bool)
	Set(ctx context.Context, vaultID id.VaultID, release *Release)
	Invalidate(ctx context.Context, vaultID id.VaultID)
}

// Service drives the state machine. Transitions for the same vault are
// serialized via sharded mutexes so two concurrent transitions can never both
// succeed from the same source state; different vaults proceed in parallel.
type Service struct {
	shards [numVaultShards]sync.Mutex
	store  Store
	log    AuditLog
	cache  ActiveCache // nil disables caching
	clock  func() time.Time
	tracer trace.Tracer
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

// WithActiveCache attaches a cache for ActiveRelease lookups.
func WithActiveCache(cache ActiveCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func NewService(store Store, log AuditLog, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		log:    log,
		clock:  time.Now,
		tracer: otel.Tracer("heirloom/release"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) shard(vaultID id.VaultID) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(vaultID.String()))
	return &s.shards[h.Sum32()%numVaultShards]
}

// Create starts a new release in pending state. A second concurrent
// non-terminal release for the same vault is structurally disallowed: creation
// fails with a conflict while one is unresolved.
func (s *Service) Create(ctx context.Context, vaultID id.VaultID, actor *id.UserID) (*Release, error) {
	if vaultID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "vault id must not be nil")
	}

	lock := s.shard(vaultID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.ListByVault(ctx, vaultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list releases")
	}
	for _, release := range existing {
		if !release.Status.Terminal() {
			return nil, dErrors.New(dErrors.CodeConflict, "vault already has an unresolved release")
		}
	}

	now := s.clock().UTC()
	release := &Release{
		ID:          id.NewReleaseID(),
		VaultID:     vaultID,
		Status:      StatusPending,
		TriggeredAt: now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, release); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "save release")
	}
	s.invalidate(ctx, vaultID)

	if _, err := s.log.Append(ctx, actor, audit.ActionReleaseCreated, audit.ReleaseDetails{
		VaultID:   vaultID,
		ReleaseID: release.ID,
		To:        string(StatusPending),
	}); err != nil {
		return nil, err
	}
	return release, nil
}

// Transition moves a release to target if the edge exists in the table.
// Illegal edges fail with invalid_transition and are not logged as succeeded.
func (s *Service) Transition(ctx context.Context, releaseID id.ReleaseID, target Status, actor *id.UserID) (*Release, error) {
	ctx, span := s.tracer.Start(ctx, "release.Transition",
		trace.WithAttributes(attribute.String("release.target", string(target))))
	defer span.End()

	if !target.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown release status: "+string(target))
	}

	// Resolve the vault first so the lock can be taken; state is re-read under
	// the lock before the edge check.
	release, err := s.findRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	lock := s.shard(release.VaultID)
	lock.Lock()
	defer lock.Unlock()

	release, err = s.findRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	from := release.Status
	if !CanTransition(from, target) {
		return nil, dErrors.New(dErrors.CodeInvalidTransition,
			"no transition from "+string(from)+" to "+string(target))
	}

	release.Status = target
	release.UpdatedAt = s.clock().UTC()
	if err := s.store.Update(ctx, release); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "update release")
	}
	s.invalidate(ctx, release.VaultID)

	if _, err := s.log.Append(ctx, actor, transitionAction(target), audit.ReleaseDetails{
		VaultID:   release.VaultID,
		ReleaseID: release.ID,
		From:      string(from),
		To:        string(target),
	}); err != nil {
		return nil, err
	}
	return release, nil
}

// Get returns a release by ID.
func (s *Service) Get(ctx context.Context, releaseID id.ReleaseID) (*Release, error) {
	return s.findRelease(ctx, releaseID)
}

// ActiveRelease returns the release currently governing the vault: the most
// recently triggered among non-cancelled ones. Cancelled releases are excluded
// outright, so an earlier released release keeps governing after a later
// cancellation; a later pending/in_progress/approved release supersedes a
// released one and closes access until it completes.
func (s *Service) ActiveRelease(ctx context.Context, vaultID id.VaultID) (*Release, error) {
	if s.cache != nil {
		if release, ok := s.cache.Get(ctx, vaultID); ok {
			return release, nil
		}
	}

	releases, err := s.store.ListByVault(ctx, vaultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list releases")
	}
	var active *Release
	for _, release := range releases {
		if release.Status == StatusCancelled {
			continue
		}
		if active == nil || release.TriggeredAt.After(active.TriggeredAt) {
			active = release
		}
	}
	if active == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no active release for vault")
	}
	if s.cache != nil {
		s.cache.Set(ctx, vaultID, active)
	}
	return active, nil
}

func (s *Service) findRelease(ctx context.Context, releaseID id.ReleaseID) (*Release, error) {
	release, err := s.store.FindByID(ctx, releaseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "release not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find release")
	}
	return release, nil
}

func (s *Service) invalidate(ctx context.Context, vaultID id.VaultID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, vaultID)
	}
}

// transitionAction maps a successful transition's target status to its audit
// action label.
func transitionAction(to Status) audit.Action {
	switch to {
	case StatusInProgress:
		return audit.ActionReleaseStarted
	case StatusApproved:
		return audit.ActionReleaseApproved
	case StatusReleased:
		return audit.ActionReleaseCompleted
	default:
		return audit.ActionReleaseCancelled
	}
}
