// Package access implements the release-gated access decision applied at read
// time. The policy is withhold-by-default: a missing fully-released release, a
// role outside the capability table, a missing or unsealed envelope, or an
// unloggable disclosure each independently produce no disclosure.
package access

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"heirloom/internal/audit"
	"heirloom/internal/keystore"
	"heirloom/internal/release"
	"heirloom/internal/vault"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
)

// DenialReason says why a participant was refused files, so the transport can
// explain the refusal without revealing anything about other participants.
type DenialReason string

const (
	// DenialRole: the requester's own role never receives files.
	DenialRole DenialReason = "role"
	// DenialNoRelease: no release has been triggered for the vault.
	DenialNoRelease DenialReason = "no_release"
	// DenialNotReleased: the governing release has not completed.
	DenialNotReleased DenialReason = "not_released"
	// DenialNoEnvelope: the requester has no key envelope.
	DenialNoEnvelope DenialReason = "no_envelope"
	// DenialEnvelopePending: the requester's envelope was never sealed.
	DenialEnvelopePending DenialReason = "envelope_pending"
)

// Decision is the engine's answer for one (vault, requester) pair.
type Decision struct {
	// CanAccessFiles is true only for the owner and for beneficiaries of a
	// fully released vault.
	CanAccessFiles bool
	// Role is the requester's relationship to the vault: a participant role or
	// "owner".
	Role string
	// VisibleItems is every item reference when access is granted, empty
	// otherwise. Items are withheld entirely, never returned redacted.
	VisibleItems []vault.Item
	// SealedKey is the requester's sealed envelope when a disclosure happened,
	// nil otherwise. The owner holds the content key directly and gets none.
	SealedKey *keystore.Envelope
	// Denial is set on every refused participant decision, empty on grants.
	Denial DenialReason
}

// RoleOwner is the pseudo-role reported for the vault owner.
const RoleOwner = "owner"

// Releases resolves the release currently governing a vault.
type Releases interface {
	ActiveRelease(ctx context.Context, vaultID id.VaultID) (*release.Release, error)
}

// Envelopes looks up sealed key envelopes for disclosure.
type Envelopes interface {
	Lookup(ctx context.Context, vaultID id.VaultID, participantID id.UserID) (*keystore.Envelope, error)
}

// AuditLog records disclosures. Appending happens before key material is
// returned; if the append fails, nothing is disclosed.
type AuditLog interface {
	Append(ctx context.Context, actor *id.UserID, action audit.Action, details audit.Details) (*audit.Entry, error)
}

// Metrics abstracts the engine's counters so unit tests run without a
// Prometheus registry.
type Metrics interface {
	ObserveEvaluation(outcome string)
	ObserveDisclosure()
}

// Engine decides, per read request, whether plaintext-adjacent material may be
// shown to a requester.
type Engine struct {
	releases Releases
	keys     Envelopes
	log      AuditLog
	metrics  Metrics // nil disables instrumentation
	tracer   trace.Tracer
}

type Option func(*Engine)

// WithMetrics attaches evaluation counters.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(releases Releases, keys Envelopes, log AuditLog, opts ...Option) *Engine {
	e := &Engine{
		releases: releases,
		keys:     keys,
		log:      log,
		tracer:   otel.Tracer("heirloom/access"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate applies the role-gated, release-gated disclosure policy.
//
// Owners always see their own vault. Non-participants are refused with an
// opaque denial that never confirms whether the vault exists or who belongs to
// it. Participants see items and their sealed key only when all of these hold:
// an active release exists, it is fully released, the role can ever receive
// files, and a sealed envelope is present. Witnesses and shared participants
// are refused items regardless of release state.
func (e *Engine) Evaluate(ctx context.Context, v *vault.Vault, requester id.UserID) (*Decision, error) {
	ctx, span := e.tracer.Start(ctx, "access.Evaluate",
		trace.WithAttributes(attribute.String("vault.id", v.ID.String())))
	defer span.End()

	if v.IsOwner(requester) {
		e.observe("owner")
		return &Decision{
			CanAccessFiles: true,
			Role:           RoleOwner,
			VisibleItems:   append([]vault.Item(nil), v.Items...),
		}, nil
	}

	participant, ok := v.Participant(requester)
	if !ok {
		e.observe("denied_outsider")
		// Outsiders learn nothing about membership or vault existence.
		return nil, dErrors.New(dErrors.CodeForbidden, "not permitted")
	}

	deny := func(reason DenialReason) *Decision {
		return &Decision{CanAccessFiles: false, Role: string(participant.Role), Denial: reason}
	}

	if !participant.Role.CanReceiveFiles() {
		e.observe("denied_role")
		return deny(DenialRole), nil
	}

	active, err := e.releases.ActiveRelease(ctx, v.ID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			e.observe("denied_no_release")
			return deny(DenialNoRelease), nil
		}
		return nil, err
	}
	if !active.FullyReleased() {
		e.observe("denied_not_released")
		return deny(DenialNotReleased), nil
	}

	envelope, err := e.keys.Lookup(ctx, v.ID, requester)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			e.observe("denied_no_envelope")
			return deny(DenialNoEnvelope), nil
		}
		return nil, err
	}
	if !envelope.Sealed() {
		e.observe("denied_envelope_pending")
		return deny(DenialEnvelopePending), nil
	}

	// Log the disclosure before returning key material. A chain that cannot
	// record the hand-off must not allow it.
	if _, err := e.log.Append(ctx, &requester, audit.ActionKeyDisclosed, audit.DisclosureDetails{
		VaultID:       v.ID,
		ParticipantID: requester,
		Role:          participant.Role,
	}); err != nil {
		return nil, err
	}

	e.observe("disclosed")
	if e.metrics != nil {
		e.metrics.ObserveDisclosure()
	}
	return &Decision{
		CanAccessFiles: true,
		Role:           string(participant.Role),
		VisibleItems:   append([]vault.Item(nil), v.Items...),
		SealedKey:      envelope,
	}, nil
}

func (e *Engine) observe(outcome string) {
	if e.metrics != nil {
		e.metrics.ObserveEvaluation(outcome)
	}
}
