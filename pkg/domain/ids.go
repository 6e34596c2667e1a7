// Package domain provides the typed identifiers and closed role set shared by
// every layer. IDs are distinct UUID wrappers so the compiler rejects
// cross-type mixups; parsing enforces validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "heirloom/pkg/domain-errors"
)

// UserID identifies an account in the external user directory. Owners,
// participants, and audit actors are all UserIDs.
type UserID uuid.UUID

// VaultID identifies a vault.
type VaultID uuid.UUID

// ReleaseID identifies one release lifecycle for a vault.
type ReleaseID uuid.UUID

// ItemID identifies an encrypted item reference. The item bytes live in
// external object storage and are never read here.
type ItemID uuid.UUID

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id VaultID) String() string   { return uuid.UUID(id).String() }
func (id ReleaseID) String() string { return uuid.UUID(id).String() }
func (id ItemID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id VaultID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ReleaseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewVaultID returns a fresh random VaultID.
func NewVaultID() VaultID { return VaultID(uuid.New()) }

// NewReleaseID returns a fresh random ReleaseID.
func NewReleaseID() ReleaseID { return ReleaseID(uuid.New()) }

// NewItemID returns a fresh random ItemID.
func NewItemID() ItemID { return ItemID(uuid.New()) }

// ID wrappers do not inherit uuid.UUID's text marshalling, so each implements
// it explicitly; JSON and SQL layers rely on the canonical string form.
func (id UserID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id VaultID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ReleaseID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ItemID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *VaultID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = VaultID(parsed)
	return nil
}

func (id *ReleaseID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ReleaseID(parsed)
	return nil
}

func (id *ItemID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ItemID(parsed)
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseVaultID validates and returns a VaultID.
func ParseVaultID(s string) (VaultID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return VaultID{}, err
	}
	return VaultID(parsed), nil
}

// ParseReleaseID validates and returns a ReleaseID.
func ParseReleaseID(s string) (ReleaseID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ReleaseID{}, err
	}
	return ReleaseID(parsed), nil
}

// ParseItemID validates and returns an ItemID.
func ParseItemID(s string) (ItemID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ItemID{}, err
	}
	return ItemID(parsed), nil
}
