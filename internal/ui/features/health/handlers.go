// Package health exposes the dashboard's connectivity probe against the
// scoring backend.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Prober is the slice of the backend client the health feature needs.
type Prober interface {
	Health(ctx context.Context) error
}

// Handlers provides the HTTP handlers for the health feature.
type Handlers struct {
	backend Prober
	logger  *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(backend Prober, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{backend: backend, logger: logger}
}

// response is the health probe payload.
type response struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Detail  string `json:"detail,omitempty"`
}

// Check probes the scoring backend and reports both sides' health.
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) {
	resp := response{Status: "ok", Backend: "ok"}
	code := http.StatusOK

	if err := h.backend.Health(r.Context()); err != nil {
		h.logger.Warn("backend health probe failed", "error", err)
		resp.Backend = "unreachable"
		resp.Detail = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// SetupRoutes registers the health feature routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/api/health", h.Check)
}
