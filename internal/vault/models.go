// Package vault manages vault metadata and participant membership: the narrow
// persistence collaborator the access engine and release machine sit on top
// of. Item bytes live in external object storage; only references appear here.
package vault

import (
	"time"

	id "heirloom/pkg/domain"
)

// Participant is a non-owner user associated with a vault, holding one role.
type Participant struct {
	UserID  id.UserID
	Role    id.Role
	AddedAt time.Time
}

// Item is an opaque reference to an encrypted asset.
type Item struct {
	ID      id.ItemID
	Name    string
	BlobRef string // object-storage key, never dereferenced here
	AddedAt time.Time
}

// Vault is a container of encrypted items owned by one user and shared with
// participants under a release policy. Exactly one owner; the owner is never
// listed among participants.
type Vault struct {
	ID           id.VaultID
	OwnerID      id.UserID
	Title        string
	Description  string
	RuleSetID    string // external release trigger policy reference
	Participants []Participant
	Items        []Item
	CreatedAt    time.Time
}

// IsOwner reports whether userID owns the vault.
func (v *Vault) IsOwner(userID id.UserID) bool {
	return v.OwnerID == userID
}

// Participant returns the membership record for userID, if present.
func (v *Vault) Participant(userID id.UserID) (*Participant, bool) {
	for i := range v.Participants {
		if v.Participants[i].UserID == userID {
			return &v.Participants[i], true
		}
	}
	return nil, false
}
