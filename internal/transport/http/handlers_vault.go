package httptransport

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heirloom/internal/transport/http/shared"
	"heirloom/internal/vault"
	id "heirloom/pkg/domain"
	dErrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/requestcontext"
)

type createVaultRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RuleSetID   string `json:"rule_set_id"`
}

type vaultResponse struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	RuleSetID    string                `json:"rule_set_id,omitempty"`
	Participants []participantResponse `json:"participants"`
	CreatedAt    time.Time             `json:"created_at"`
}

type participantResponse struct {
	UserID  string    `json:"user_id"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

func toVaultResponse(v *vault.Vault) vaultResponse {
	participants := make([]participantResponse, 0, len(v.Participants))
	for _, p := range v.Participants {
		participants = append(participants, participantResponse{
			UserID:  p.UserID.String(),
			Role:    string(p.Role),
			AddedAt: p.AddedAt,
		})
	}
	return vaultResponse{
		ID:           v.ID.String(),
		OwnerID:      v.OwnerID.String(),
		Title:        v.Title,
		Description:  v.Description,
		RuleSetID:    v.RuleSetID,
		Participants: participants,
		CreatedAt:    v.CreatedAt,
	}
}

func (h *Handler) handleCreateVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := requestcontext.UserID(ctx)

	var req createVaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.vaults.Create(ctx, ownerID, req.Title, req.Description, req.RuleSetID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toVaultResponse(created))
}

func (h *Handler) handleListVaults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaults, err := h.vaults.ListByOwner(ctx, requestcontext.UserID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]vaultResponse, 0, len(vaults))
	for _, v := range vaults {
		out = append(out, toVaultResponse(v))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaultID, err := id.ParseVaultID(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	found, err := h.vaults.Get(ctx, vaultID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	// Vault metadata is only shown to the owner and listed participants.
	requester := requestcontext.UserID(ctx)
	if _, isParticipant := found.Participant(requester); !found.IsOwner(requester) && !isParticipant {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not permitted"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, toVaultResponse(found))
}

type addParticipantRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *Handler) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaultID, err := id.ParseVaultID(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req addParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	role, err := id.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	participant, err := h.vaults.AddParticipant(ctx, vaultID, requestcontext.UserID(ctx), userID, role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, participantResponse{
		UserID:  participant.UserID.String(),
		Role:    string(participant.Role),
		AddedAt: participant.AddedAt,
	})
}

func (h *Handler) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaultID, err := id.ParseVaultID(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.vaults.RemoveParticipant(ctx, vaultID, requestcontext.UserID(ctx), userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sealKeyRequest struct {
	// Ciphertext is the base64-encoded sealed content key. Opaque here.
	Ciphertext string `json:"ciphertext"`
}

func (h *Handler) handleSealKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaultID, err := id.ParseVaultID(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req sealKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "ciphertext must be base64"))
		return
	}

	actor := requestcontext.UserID(ctx)
	// Sealing is an owner operation.
	found, err := h.vaults.Get(ctx, vaultID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !found.IsOwner(actor) {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not permitted"))
		return
	}

	envelope, err := h.keys.Seal(ctx, vaultID, userID, ciphertext, actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"vault_id":       envelope.VaultID.String(),
		"participant_id": envelope.ParticipantID.String(),
		"status":         string(envelope.Status),
	})
}

type addItemRequest struct {
	Name    string `json:"name"`
	BlobRef string `json:"blob_ref"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vaultID, err := id.ParseVaultID(chi.URLParam(r, "vaultID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	item, err := h.vaults.AddItem(ctx, vaultID, requestcontext.UserID(ctx), req.Name, req.BlobRef)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":       item.ID.String(),
		"name":     item.Name,
		"blob_ref": item.BlobRef,
	})
}
