package audit

import (
	"context"
	"encoding/json"
	"fmt"

	id "heirloom/pkg/domain"
)

// Store persists chain entries. Append-only: the interface exposes no update
// or delete.
type Store interface {
	// Append persists an entry. The recorder has already fixed PrevHash and
	// Hash; the store must write the entry verbatim.
	Append(ctx context.Context, entry *Entry) error
	// TailHash returns the hash of the most recently appended entry, or ""
	// when the chain is empty.
	TailHash(ctx context.Context) (string, error)
	// List returns every entry in global chain order, oldest first.
	List(ctx context.Context) ([]*Entry, error)
	// ListByVault returns vault-scoped entries for one vault, newest first.
	ListByVault(ctx context.Context, vaultID id.VaultID) ([]*Entry, error)
}

// decodeDetails rebuilds the typed Details variant for an action from its
// stored JSON payload. Stores share this so memory and Postgres round-trip
// identically.
func decodeDetails(action Action, payload []byte) (Details, error) {
	switch action {
	case ActionVaultCreated:
		var d VaultDetails
		return d, json.Unmarshal(payload, &d)
	case ActionParticipantAdded, ActionParticipantRemoved:
		var d ParticipantDetails
		return d, json.Unmarshal(payload, &d)
	case ActionKeySealed:
		var d EnvelopeDetails
		return d, json.Unmarshal(payload, &d)
	case ActionKeyDisclosed:
		var d DisclosureDetails
		return d, json.Unmarshal(payload, &d)
	case ActionReleaseCreated, ActionReleaseStarted, ActionReleaseApproved,
		ActionReleaseCompleted, ActionReleaseCancelled:
		var d ReleaseDetails
		return d, json.Unmarshal(payload, &d)
	default:
		return nil, fmt.Errorf("unknown audit action %q", action)
	}
}
