package vault

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"heirloom/internal/audit"
	"heirloom/internal/keystore"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/sentinel"
	"heirloom/pkg/platform/tx"
)

// numVaultShards spreads per-vault serialization across independent mutexes so
// unrelated vaults never contend.
const numVaultShards = 128

// Store persists vaults with their participant and item collections.
type Store interface {
	Save(ctx context.Context, vault *Vault) error
	FindByID(ctx context.Context, vaultID id.VaultID) (*Vault, error)
	Update(ctx context.Context, vault *Vault) error
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Vault, error)
}

// Envelopes is the slice of the sealed-key service membership changes touch.
type Envelopes interface {
	AddPending(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*keystore.Envelope, error)
	Remove(ctx context.Context, vaultID id.VaultID, participantID id.UserID) error
}

// AuditLog is the slice of the audit recorder this service appends to.
type AuditLog interface {
	Append(ctx context.Context, actor *id.UserID, action audit.Action, details audit.Details) (*audit.Entry, error)
}

// Service owns vault metadata and membership. Participant changes keep the
// keystore in step: adding a participant creates their pending envelope,
// removing one deletes it. Mutations of the same vault are read-modify-write
// over the whole document, so they are serialized via sharded mutexes;
// unguarded concurrent writers would lose updates.
type Service struct {
	shards    [numVaultShards]sync.Mutex
	store     Store
	envelopes Envelopes
	log       AuditLog
	txr       tx.Runner
	clock     func() time.Time
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

// WithTxRunner makes membership writes and their envelope writes atomic. Used
// with the Postgres stores; in-memory stores run with the passthrough default.
func WithTxRunner(txr tx.Runner) ServiceOption {
	return func(s *Service) {
		if txr != nil {
			s.txr = txr
		}
	}
}

func NewService(store Store, envelopes Envelopes, log AuditLog, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		envelopes: envelopes,
		log:       log,
		txr:       tx.Passthrough{},
		clock:     time.Now,
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

// Create registers a new vault for ownerID.
func (s *Service) Create(ctx context.Context, ownerID id.UserID, title, description, ruleSetID string) (*Vault, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner id must not be nil")
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}

	vault := &Vault{
		ID:          id.NewVaultID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		RuleSetID:   ruleSetID,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.store.Save(ctx, vault); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "save vault")
	}

	if _, err := s.log.Append(ctx, &ownerID, audit.ActionVaultCreated, audit.VaultDetails{
		VaultID: vault.ID,
		Title:   vault.Title,
	}); err != nil {
		return nil, err
	}
	return vault, nil
}

// Get returns a vault by ID.
func (s *Service) Get(ctx context.Context, vaultID id.VaultID) (*Vault, error) {
	return s.findVault(ctx, vaultID)
}

// ListByOwner returns all vaults owned by ownerID.
func (s *Service) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Vault, error) {
	vaults, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list vaults")
	}
	return vaults, nil
}

// AddParticipant adds userID with the given role and creates their pending key
// envelope. Only the owner may change membership; the owner can never be a
// participant of their own vault.
func (s *Service) AddParticipant(ctx context.Context, vaultID id.VaultID, actor, userID id.UserID, role id.Role) (*Participant, error) {
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+string(role))
	}

	lock := s.shard(vaultID)
	lock.Lock()
	defer lock.Unlock()

	vault, err := s.findVault(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !vault.IsOwner(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not permitted")
	}
	if userID == vault.OwnerID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "owner cannot be added as a participant")
	}
	if _, exists := vault.Participant(userID); exists {
		return nil, dErrors.New(dErrors.CodeConflict, "user is already a participant")
	}

	participant := Participant{
		UserID:  userID,
		Role:    role,
		AddedAt: s.clock().UTC(),
	}
	vault.Participants = append(vault.Participants, participant)
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, vault); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update vault")
		}
		_, err := s.envelopes.AddPending(ctx, vaultID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.log.Append(ctx, &actor, audit.ActionParticipantAdded, audit.ParticipantDetails{
		VaultID:       vaultID,
		ParticipantID: userID,
		Role:          role,
	}); err != nil {
		return nil, err
	}
	return &participant, nil
}

// RemoveParticipant removes userID from the vault and deletes their envelope.
// The envelope is gone for good; rejoining starts a fresh pending one.
func (s *Service) RemoveParticipant(ctx context.Context, vaultID id.VaultID, actor, userID id.UserID) error {
	lock := s.shard(vaultID)
	lock.Lock()
	defer lock.Unlock()

	vault, err := s.findVault(ctx, vaultID)
	if err != nil {
		return err
	}
	if !vault.IsOwner(actor) {
		return dErrors.New(dErrors.CodeForbidden, "not permitted")
	}

	found := false
	kept := vault.Participants[:0]
	for _, participant := range vault.Participants {
		if participant.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, participant)
	}
	if !found {
		return dErrors.New(dErrors.CodeNotFound, "user is not a participant")
	}
	vault.Participants = kept
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, vault); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update vault")
		}
		// A participant added before any key was sealed may legitimately have
		// no envelope left to remove.
		if err := s.envelopes.Remove(ctx, vaultID, userID); err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := s.log.Append(ctx, &actor, audit.ActionParticipantRemoved, audit.ParticipantDetails{
		VaultID:       vaultID,
		ParticipantID: userID,
	}); err != nil {
		return err
	}
	return nil
}

// AddItem records a reference to an encrypted asset.
func (s *Service) AddItem(ctx context.Context, vaultID id.VaultID, actor id.UserID, name, blobRef string) (*Item, error) {
	if name == "" || blobRef == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "item name and blob reference must not be empty")
	}

	lock := s.shard(vaultID)
	lock.Lock()
	defer lock.Unlock()

	vault, err := s.findVault(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !vault.IsOwner(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not permitted")
	}

	item := Item{
		ID:      id.NewItemID(),
		Name:    name,
		BlobRef: blobRef,
		AddedAt: s.clock().UTC(),
	}
	vault.Items = append(vault.Items, item)
	if err := s.store.Update(ctx, vault); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "update vault")
	}
	return &item, nil
}

func (s *Service) findVault(ctx context.Context, vaultID id.VaultID) (*Vault, error) {
	vault, err := s.store.FindByID(ctx, vaultID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vault not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "find vault")
	}
	return vault, nil
}
