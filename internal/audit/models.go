// Package audit implements the hash-chained, append-only security log. Every
// release transition and every key disclosure lands here; each entry's digest
// incorporates the previous entry's digest, so altering history is detectable.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
)

// Action labels a security-relevant event. The set is closed; each action has
// exactly one Details variant.
type Action string

const (
	ActionVaultCreated       Action = "vault_created"
	ActionParticipantAdded   Action = "participant_added"
	ActionParticipantRemoved Action = "participant_removed"
	ActionKeySealed          Action = "key_sealed"
	ActionKeyDisclosed       Action = "key_disclosed"
	ActionReleaseCreated     Action = "release_created"
	ActionReleaseStarted     Action = "release_started"
	ActionReleaseApproved    Action = "release_approved"
	ActionReleaseCompleted   Action = "release_completed"
	ActionReleaseCancelled   Action = "release_cancelled"
)

// Details is the closed set of per-action payload variants. All fields are
// structs (no map[string]any) to guarantee deterministic json.Marshal output
// in storage and on the mirror topic.
type Details interface {
	isDetails()
}

// VaultScoped is implemented by every variant attributable to a single vault.
// Entries whose details are not vault-scoped never appear in per-vault views.
type VaultScoped interface {
	Details
	Vault() id.VaultID
}

// VaultDetails accompanies vault_created.
type VaultDetails struct {
	VaultID id.VaultID `json:"vault_id"`
	Title   string     `json:"title,omitempty"`
}

// ParticipantDetails accompanies participant_added and participant_removed.
type ParticipantDetails struct {
	VaultID       id.VaultID `json:"vault_id"`
	ParticipantID id.UserID  `json:"participant_id"`
	Role          id.Role    `json:"role,omitempty"`
}

// EnvelopeDetails accompanies key_sealed.
type EnvelopeDetails struct {
	VaultID       id.VaultID `json:"vault_id"`
	ParticipantID id.UserID  `json:"participant_id"`
}

// DisclosureDetails accompanies key_disclosed. Written before key material is
// returned to the caller, never after.
type DisclosureDetails struct {
	VaultID       id.VaultID `json:"vault_id"`
	ParticipantID id.UserID  `json:"participant_id"`
	Role          id.Role    `json:"role"`
}

// ReleaseDetails accompanies every release_* action. From is empty on
// release_created.
type ReleaseDetails struct {
	VaultID   id.VaultID   `json:"vault_id"`
	ReleaseID id.ReleaseID `json:"release_id"`
	From      string       `json:"from,omitempty"`
	To        string       `json:"to"`
}

func (VaultDetails) isDetails()       {}
func (ParticipantDetails) isDetails() {}
func (EnvelopeDetails) isDetails()    {}
func (DisclosureDetails) isDetails()  {}
func (ReleaseDetails) isDetails()     {}

func (d VaultDetails) Vault() id.VaultID       { return d.VaultID }
func (d ParticipantDetails) Vault() id.VaultID { return d.VaultID }
func (d EnvelopeDetails) Vault() id.VaultID    { return d.VaultID }
func (d DisclosureDetails) Vault() id.VaultID  { return d.VaultID }
func (d ReleaseDetails) Vault() id.VaultID     { return d.VaultID }

// Entry is one immutable link in the chain. Hash covers actor, action,
// timestamp, and PrevHash; it is computed once at append time and never
// recomputed afterward.
type Entry struct {
	ID        uuid.UUID
	Actor     *id.UserID // nil for system-triggered events
	Action    Action
	Details   Details
	Timestamp time.Time
	PrevHash  string // hex digest of the preceding entry, "" for the first
	Hash      string
}

// VaultID returns the vault this entry is scoped to, if any.
func (e *Entry) VaultID() (id.VaultID, bool) {
	if scoped, ok := e.Details.(VaultScoped); ok {
		return scoped.Vault(), true
	}
	return id.VaultID{}, false
}

// ComputeHash derives the digest for an entry from its hashed fields. Used at
// append time and again during verification; both must agree byte for byte,
// so timestamps are normalized to UTC RFC3339Nano.
func ComputeHash(actor *id.UserID, action Action, timestamp time.Time, prevHash string) string {
	var actorStr string
	if actor != nil {
		actorStr = actor.String()
	}
	input := actorStr + "|" + string(action) + "|" + timestamp.UTC().Format(time.RFC3339Nano) + "|" + prevHash
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
