package search

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the search feature routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Route("/api/search", func(r chi.Router) {
		r.Post("/ask", h.Ask)
		r.Post("/reset", h.Reset)
	})
}
