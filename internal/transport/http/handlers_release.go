package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heirloom/internal/release"
	"heirloom/internal/transport/http/shared"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/requestcontext"
)

type releaseResponse struct {
	ID          string    `json:"id"`
	VaultID     string    `json:"vault_id"`
	Status      string    `json:"status"`
	TriggeredAt time.Time `json:"triggered_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toReleaseResponse(r *release.Release) releaseResponse {
	return releaseResponse{
		ID:          r.ID.String(),
		VaultID:     r.VaultID.String(),
		Status:      string(r.Status),
		TriggeredAt: r.TriggeredAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (h *Handler) handleCreateRelease(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaultID, err := id.ParseVaultID(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	actor := requestcontext.UserID(ctx)
	created, err := h.releases.Create(ctx, vaultID, &actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toReleaseResponse(created))
}

type transitionRequest struct {
	Target string `json:"target"`
}

func (h *Handler) handleTransitionRelease(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	releaseID, err := id.ParseReleaseID(chi.URLParam(r, "releaseID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	actor := requestcontext.UserID(ctx)
	updated, err := h.releases.Transition(ctx, releaseID, release.Status(req.Target), &actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveTransition(string(updated.Status))
	}
	shared.WriteJSON(w, http.StatusOK, toReleaseResponse(updated))
}
