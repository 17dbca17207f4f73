// Package router sets up HTTP routes for the dashboard server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/datacensus/datacensus/internal/ui/features/analysis"
	"github.com/datacensus/datacensus/internal/ui/features/health"
	"github.com/datacensus/datacensus/internal/ui/features/search"
	"github.com/datacensus/datacensus/internal/ui/notifier"
	"github.com/datacensus/datacensus/internal/ui/resources"
)

// Features holds the wired feature handlers.
type Features struct {
	Analysis *analysis.Handlers
	Search   *search.Handlers
	Health   *health.Handlers
}

// SetupRoutes configures all routes for the dashboard server. The reload
// notifier is only consulted in dev mode; the file watcher broadcasts into it.
func SetupRoutes(router chi.Router, f Features, reload *notifier.Notifier, isDev bool) {
	if isDev {
		setupReload(router, reload)
	}

	router.Handle("/static/*", resources.Handler())

	analysis.SetupRoutes(router, f.Analysis)
	search.SetupRoutes(router, f.Search)
	health.SetupRoutes(router, f.Health)
}

// setupReload wires the dev-mode browser reload loop: /reload is the SSE the
// page subscribes to, /hotreload lets a build script force a reload.
func setupReload(router chi.Router, reload *notifier.Notifier) {
	var reloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		doReload := func() { _ = sse.ExecuteScript("window.location.reload()") }

		// First connection after a server restart reloads immediately, so the
		// browser picks up rebuilt templates.
		reloadOnce.Do(doReload)

		pings, cancel := reload.Subscribe()
		defer cancel()
		select {
		case <-pings:
			doReload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		reload.Broadcast()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
