package httptransport

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heirloom/internal/access"
	"heirloom/internal/transport/http/shared"
	id "heirloom/pkg/domain"
	"heirloom/pkg/requestcontext"
)

type itemResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	BlobRef string    `json:"blob_ref"`
	AddedAt time.Time `json:"added_at"`
}

type accessResponse struct {
	CanAccessFiles bool           `json:"can_access_files"`
	Role           string         `json:"role"`
	VisibleItems   []itemResponse `json:"visible_items"`
	// SealedKey is the requester's envelope ciphertext, base64, present only
	// on disclosure.
	SealedKey string `json:"sealed_key,omitempty"`
	// Message explains a denial to a legitimate participant without revealing
	// other participants' roles or key material.
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleEvaluateAccess(w http.ResponseWriter, r *http.Request) {
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

	decision, err := h.engine.Evaluate(ctx, found, requestcontext.UserID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := accessResponse{
		CanAccessFiles: decision.CanAccessFiles,
		Role:           decision.Role,
		VisibleItems:   make([]itemResponse, 0, len(decision.VisibleItems)),
	}
	for _, item := range decision.VisibleItems {
		resp.VisibleItems = append(resp.VisibleItems, itemResponse{
			ID:      item.ID.String(),
			Name:    item.Name,
			BlobRef: item.BlobRef,
			AddedAt: item.AddedAt,
		})
	}
	if decision.SealedKey != nil {
		resp.SealedKey = base64.StdEncoding.EncodeToString(decision.SealedKey.Ciphertext)
	}
	if !decision.CanAccessFiles {
		resp.Message = denialMessage(decision.Denial)
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

// denialMessage explains a refusal in terms of the requester's own situation
// only: their role, the release state, or their own envelope.
func denialMessage(reason access.DenialReason) string {
	switch reason {
	case access.DenialRole:
		return "your role does not receive files"
	case access.DenialNoEnvelope, access.DenialEnvelopePending:
		return "no sealed key is available for you yet"
	default:
		return "vault is not yet released"
	}
}
