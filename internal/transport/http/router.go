// Package httptransport is the thin HTTP layer: evidence intake and reads,
// health, metrics, and the admin rescan trigger. It delegates to domain
// services without embedding business logic.
package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"cointribute/internal/platform/metrics"
	"cointribute/internal/platform/middleware"
)

// NewRouter mounts all endpoints.
func NewRouter(h *Handler, validator middleware.TokenValidator, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	r.Route("/api", func(r chi.Router) {
		r.Post("/evidence", h.HandleEvidenceIntake)
		r.Get("/charities/{id}/evidence", h.HandleEvidenceByCharity)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Post("/rescan", h.HandleRescan)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
