// Package analysis serves the dashboard page, runs analysis attempts and
// streams scorecard updates over SSE.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/datacensus/datacensus/internal/analyzer"
	"github.com/datacensus/datacensus/internal/quality"
	"github.com/datacensus/datacensus/internal/report"
	"github.com/datacensus/datacensus/internal/ui/notifier"
	"github.com/datacensus/datacensus/internal/ui/views"
)

// attemptTimeout bounds one full analysis attempt, completitud included.
const attemptTimeout = 10 * time.Minute

// StartSignals are the frontend signals read by the start handler.
type StartSignals struct {
	DatasetID string `json:"datasetId"`
}

// Handlers provides the HTTP handlers for the analysis feature.
type Handlers struct {
	analyzer *analyzer.Analyzer
	reporter *report.Renderer
	views    *views.Views
	state    *State
	notifier *notifier.Notifier
	logger   *slog.Logger

	defaultDatasetID string
	isDev            bool
	now              func() time.Time
}

// HandlersConfig wires the analysis handlers.
type HandlersConfig struct {
	Analyzer         *analyzer.Analyzer
	Reporter         *report.Renderer
	Views            *views.Views
	State            *State
	Notifier         *notifier.Notifier
	Logger           *slog.Logger
	DefaultDatasetID string
	IsDev            bool
	Now              func() time.Time
}

// NewHandlers creates a Handlers instance.
func NewHandlers(cfg HandlersConfig) *Handlers {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		analyzer:         cfg.Analyzer,
		reporter:         cfg.Reporter,
		views:            cfg.Views,
		state:            cfg.State,
		notifier:         cfg.Notifier,
		logger:           logger,
		defaultDatasetID: cfg.DefaultDatasetID,
		isDev:            cfg.IsDev,
		now:              now,
	}
}

// IndexPage renders the full dashboard with the current analysis state, so a
// reload mid-attempt shows the scores already fetched.
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	data := views.PageData{
		DefaultDatasetID: h.defaultDatasetID,
		Status:           statusData(snap),
		Scoreboard:       views.BuildScoreboard(snap.Result),
		Info:             views.BuildInfo(snap.Info),
		Dev:              h.isDev,
	}
	if err := h.views.WritePage(w, data); err != nil {
		h.logger.Error("index render failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Start begins a new analysis attempt. The attempt runs in the background and
// publishes through the notifier; this handler only acknowledges the start by
// patching the status banner.
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	// Signals must be read before the SSE writer takes over the body.
	var signals StartSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)

	attempt := h.state.Begin()
	go h.runAttempt(attempt, signals.DatasetID)

	h.patchAnalysis(sse)
}

// runAttempt executes one analysis in the background. It deliberately does not
// use the request context: the attempt outlives the start request.
func (h *Handlers) runAttempt(attempt, datasetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
	defer cancel()

	hooks := analyzer.Hooks{
		PhaseChanged: func(p analyzer.Phase) {
			if h.state.SetPhase(attempt, p) {
				h.notifier.Broadcast()
			}
		},
		InfoLoaded: func(info quality.DatasetInfo) {
			if h.state.SetInfo(attempt, &info) {
				h.notifier.Broadcast()
			}
		},
		ResultUpdated: func(result *quality.Result) {
			if h.state.SetResult(attempt, result) {
				h.notifier.Broadcast()
			}
		},
		SlowMetricWarning: func(err error) {
			warning := "No se pudo calcular la completitud: " + err.Error()
			if h.state.SetWarning(attempt, warning) {
				h.notifier.Broadcast()
			}
		},
	}

	if err := h.analyzer.Analyze(ctx, datasetID, hooks); err != nil {
		if h.state.Fail(attempt, err.Error()) {
			h.notifier.Broadcast()
		}
	}
}

// Updates is the long-lived SSE endpoint. It patches the analysis fragments
// on every notifier ping until the client disconnects.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	pings, cancel := h.notifier.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pings:
			h.patchAnalysis(sse)
		}
	}
}

// DownloadReport renders the PDF for the current attempt. With ?narrative=1
// the report includes the AI narrative; without results it refuses.
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	if snap.Result == nil {
		http.Error(w, "No hay resultados de análisis para exportar", http.StatusConflict)
		return
	}

	var (
		pdf []byte
		err error
	)
	if r.URL.Query().Get("narrative") == "1" {
		pdf, err = h.reporter.RenderWithNarrative(r.Context(), snap.Result, snap.Info)
	} else {
		pdf, err = h.reporter.RenderSummary(snap.Result, snap.Info)
	}
	if err != nil {
		h.logger.Error("report render failed", "error", err)
		status := http.StatusInternalServerError
		var unavailable *quality.AnalysisUnavailableError
		if errors.As(err, &unavailable) {
			status = http.StatusBadGateway
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(snap.Info, h.now())+`"`)
	_, _ = w.Write(pdf)
}

// patchAnalysis re-renders and patches the status, info and scoreboard
// fragments from the current state.
func (h *Handlers) patchAnalysis(sse *datastar.ServerSentEventGenerator) {
	snap := h.state.Snapshot()

	fragments := []struct {
		name string
		data any
	}{
		{"status", statusData(snap)},
		{"info", views.BuildInfo(snap.Info)},
		{"scoreboard", views.BuildScoreboard(snap.Result)},
	}
	for _, f := range fragments {
		html, err := h.views.Fragment(f.name, f.data)
		if err != nil {
			_ = sse.ConsoleError(err)
			return
		}
		if err := sse.PatchElements(html); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
}

func statusData(snap Snapshot) views.StatusData {
	busy := snap.Phase != analyzer.PhaseIdle && snap.Phase != analyzer.PhaseComplete
	return views.StatusData{
		Text:    snap.Phase.StatusText(),
		Busy:    busy,
		Error:   snap.Failure,
		Warning: snap.Warning,
	}
}
