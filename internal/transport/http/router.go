// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns stay
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heirloom/internal/platform/metrics"
	"heirloom/internal/platform/middleware"
)

// NewRouter wires all endpoints behind the shared middleware chain. Everything
// under /vaults, /releases, and /audit requires a valid bearer token.
func NewRouter(h *Handler, logger *slog.Logger, m *metrics.Metrics, validator middleware.JWTValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Device)
	r.Use(middleware.Logger(logger))
	r.Use(latency(m))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))

		r.Post("/vaults", h.handleCreateVault)
		r.Get("/vaults", h.handleListVaults)
		r.Get("/vaults/{vaultID}", h.handleGetVault)
		r.Post("/vaults/{vaultID}/items", h.handleAddItem)
		r.Post("/vaults/{vaultID}/participants", h.handleAddParticipant)
		r.Delete("/vaults/{vaultID}/participants/{userID}", h.handleRemoveParticipant)
		r.Post("/vaults/{vaultID}/participants/{userID}/seal", h.handleSealKey)

		r.Post("/vaults/{vaultID}/releases", h.handleCreateRelease)
		r.Post("/releases/{releaseID}/transition", h.handleTransitionRelease)

		r.Get("/vaults/{vaultID}/access", h.handleEvaluateAccess)

		r.Get("/vaults/{vaultID}/audit", h.handleVaultAudit)
		r.Get("/audit/verify", h.handleVerifyChain)
	})

	return r
}

// latency records per-route request duration against the chi route pattern.
func latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)
			if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
				m.ObserveLatency(pattern, time.Since(start))
			}
		})
	}
}
