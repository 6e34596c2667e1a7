package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"heirloom/internal/access"
	"heirloom/internal/audit"
	"heirloom/internal/keystore"
	"heirloom/internal/platform/metrics"
	"heirloom/internal/release"
	"heirloom/internal/transport/http/shared"
	"heirloom/internal/vault"
	id "heirloom/pkg/domain"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mocks.go -package=mocks VaultService,ReleaseService,KeyService,AccessEngine,AuditReporter

// VaultService defines the vault operations the HTTP layer exposes.
type VaultService interface {
	Create(ctx context.Context, ownerID id.UserID, title, description, ruleSetID string) (*vault.Vault, error)
	Get(ctx context.Context, vaultID id.VaultID) (*vault.Vault, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*vault.Vault, error)
	AddParticipant(ctx context.Context, vaultID id.VaultID, actor, userID id.UserID, role id.Role) (*vault.Participant, error)
	RemoveParticipant(ctx context.Context, vaultID id.VaultID, actor, userID id.UserID) error
	AddItem(ctx context.Context, vaultID id.VaultID, actor id.UserID, name, blobRef string) (*vault.Item, error)
}

// ReleaseService defines the release lifecycle operations.
type ReleaseService interface {
	Create(ctx context.Context, vaultID id.VaultID, actor *id.UserID) (*release.Release, error)
	Transition(ctx context.Context, releaseID id.ReleaseID, target release.Status, actor *id.UserID) (*release.Release, error)
}

// KeyService defines the sealing operation exposed to owners.
type KeyService interface {
	Seal(ctx context.Context, vaultID id.VaultID, participantID id.UserID, ciphertext []byte, actor id.UserID) (*keystore.Envelope, error)
}

// AccessEngine evaluates read requests.
type AccessEngine interface {
	Evaluate(ctx context.Context, v *vault.Vault, requester id.UserID) (*access.Decision, error)
}

// AuditReporter exposes the chain's query and verification surface.
type AuditReporter interface {
	EntriesForVault(ctx context.Context, vaultID id.VaultID) ([]*audit.Entry, error)
	VerifyChain(ctx context.Context) (audit.VerifyResult, error)
}

// Handler bundles the services behind the routes.
type Handler struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	vaults   VaultService
	releases ReleaseService
	keys     KeyService
	engine   AccessEngine
	auditor  AuditReporter
}

func NewHandler(
	logger *slog.Logger,
	m *metrics.Metrics,
	vaults VaultService,
	releases ReleaseService,
	keys KeyService,
	engine AccessEngine,
	auditor AuditReporter,
) *Handler {
	return &Handler{
		logger:   logger,
		metrics:  m,
		vaults:   vaults,
		releases: releases,
		keys:     keys,
		engine:   engine,
		auditor:  auditor,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
