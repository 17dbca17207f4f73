package analysis

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the analysis feature routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/", h.IndexPage)
	router.Get("/updates", h.Updates)

	router.Route("/api/analysis", func(r chi.Router) {
		r.Post("/start", h.Start)
	})
	router.Get("/api/report", h.DownloadReport)
}
