// Package keystore manages per-participant sealed key envelopes: copies of a
// vault's content key encrypted so only one participant can open them. The
// ciphertext is opaque here; this package never decrypts or validates key
// material.
package keystore

import (
	"time"

	id "heirloom/pkg/domain"
)

// EnvelopeStatus tracks the sealing lifecycle.
type EnvelopeStatus string

const (
	// StatusPending: the participant was added but no key has been sealed for
	// them yet (typically waiting on their public key).
	StatusPending EnvelopeStatus = "pending"
	// StatusSealed: ciphertext is present and may be disclosed once the access
	// engine allows it.
	StatusSealed EnvelopeStatus = "sealed"
)

// Envelope is one sealed key record. Owned by exactly one vault, unique per
// (vault, participant), never shared across vaults.
type Envelope struct {
	VaultID       id.VaultID
	ParticipantID id.UserID
	Ciphertext    []byte
	Status        EnvelopeStatus
	CreatedAt     time.Time
	SealedAt      *time.Time
}

// Sealed reports whether the envelope carries disclosable ciphertext.
func (e *Envelope) Sealed() bool {
	return e.Status == StatusSealed
}
