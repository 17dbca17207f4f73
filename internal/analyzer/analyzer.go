// Package analyzer drives the staged analysis workflow for one dataset:
// initialize, load records, fetch the fast criteria batch concurrently, then
// fetch the slow completitud criterion without holding back the fast results.
package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/datacensus/datacensus/internal/quality"
)

// Phase is the analysis attempt lifecycle state. Failures are terminal for the
// attempt and are reported through the returned error, not as phases.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseInitializing       Phase = "initializing"
	PhaseRecordsLoading     Phase = "records_loading"
	PhaseFastMetricsLoading Phase = "fast_metrics_loading"
	PhaseFastMetricsReady   Phase = "fast_metrics_ready"
	PhaseComplete           Phase = "complete"
)

// StatusText returns the user-facing status line for a phase.
func (p Phase) StatusText() string {
	switch p {
	case PhaseInitializing:
		return "Inicializando dataset..."
	case PhaseRecordsLoading:
		return "Cargando registros del dataset..."
	case PhaseFastMetricsLoading:
		return "Calculando métricas de calidad..."
	case PhaseFastMetricsReady:
		return "Métricas rápidas cargadas, calculando completitud..."
	case PhaseComplete:
		return "Análisis completado"
	default:
		return ""
	}
}

// Backend is the slice of the scoring client the analyzer needs.
type Backend interface {
	Initialize(ctx context.Context, datasetID string) (quality.DatasetInfo, error)
	LoadData(ctx context.Context, datasetID string) error
	FetchCriterion(ctx context.Context, criterion quality.Criterion, datasetID string) (float64, quality.Details, error)
}

// Hooks receive the attempt's incremental updates. The analyzer owns no
// long-lived state; callers decide where published snapshots land. Nil hooks
// are skipped. Every Result passed out is an independent snapshot.
type Hooks struct {
	PhaseChanged      func(Phase)
	InfoLoaded        func(quality.DatasetInfo)
	ResultUpdated     func(*quality.Result)
	SlowMetricWarning func(error)
}

func (h Hooks) phase(p Phase) {
	if h.PhaseChanged != nil {
		h.PhaseChanged(p)
	}
}

// Analyzer orchestrates analysis attempts against a scoring backend.
type Analyzer struct {
	backend Backend
	logger  *slog.Logger
}

// New creates an Analyzer.
func New(backend Backend, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{backend: backend, logger: logger}
}

// fetchedMetric is one resolved criterion from the fast batch.
type fetchedMetric struct {
	criterion quality.Criterion
	score     float64
	details   quality.Details
}

// Analyze runs one attempt end to end. The fast batch is all-or-nothing: if
// any criterion fails, nothing is published and the MetricFetchError naming
// the criterion is returned. A completitud failure after the fast batch only
// triggers SlowMetricWarning; the published fast results stand and the attempt
// still completes.
func (a *Analyzer) Analyze(ctx context.Context, datasetID string, hooks Hooks) error {
	if strings.TrimSpace(datasetID) == "" {
		return &quality.ValidationError{Msg: "Por favor, ingresa un ID de dataset válido"}
	}

	a.logger.Info("starting analysis", "dataset_id", datasetID)

	hooks.phase(PhaseInitializing)
	info, err := a.backend.Initialize(ctx, datasetID)
	if err != nil {
		a.logger.Error("initialize failed", "dataset_id", datasetID, "error", err)
		return err
	}
	if hooks.InfoLoaded != nil {
		hooks.InfoLoaded(info)
	}

	hooks.phase(PhaseRecordsLoading)
	if err := a.backend.LoadData(ctx, datasetID); err != nil {
		a.logger.Error("load_data failed", "dataset_id", datasetID, "error", err)
		return err
	}

	hooks.phase(PhaseFastMetricsLoading)
	metrics, err := a.fetchFastCriteria(ctx, datasetID)
	if err != nil {
		a.logger.Error("fast batch failed", "dataset_id", datasetID, "error", err)
		return err
	}

	result := quality.NewResult()
	for _, m := range metrics {
		result.SetScore(m.criterion, m.score, m.details)
	}

	// Fast results go out before the slow fetch starts, so the dashboard
	// shows them while completitud is still computing.
	if hooks.ResultUpdated != nil {
		hooks.ResultUpdated(result.Clone())
	}
	hooks.phase(PhaseFastMetricsReady)
	a.logger.Info("fast metrics published", "dataset_id", datasetID, "overall", result.Overall)

	score, details, err := a.backend.FetchCriterion(ctx, quality.Completitud, datasetID)
	if err != nil {
		// Completitud stays pending for the rest of the attempt; the fast
		// results are not rolled back.
		a.logger.Warn("completitud failed", "dataset_id", datasetID, "error", err)
		if hooks.SlowMetricWarning != nil {
			hooks.SlowMetricWarning(err)
		}
		hooks.phase(PhaseComplete)
		return nil
	}

	result.SetScore(quality.Completitud, score, details)
	if hooks.ResultUpdated != nil {
		hooks.ResultUpdated(result.Clone())
	}
	hooks.phase(PhaseComplete)
	a.logger.Info("analysis complete", "dataset_id", datasetID, "overall", result.Overall)
	return nil
}

// fetchFastCriteria issues one request per fast criterion concurrently and
// waits for all of them. First failure cancels the rest and fails the batch;
// there is no partial success path.
func (a *Analyzer) fetchFastCriteria(ctx context.Context, datasetID string) ([]fetchedMetric, error) {
	criteria := quality.FastCriteria()
	metrics := make([]fetchedMetric, len(criteria))

	g, gctx := errgroup.WithContext(ctx)
	for i, criterion := range criteria {
		g.Go(func() error {
			score, details, err := a.backend.FetchCriterion(gctx, criterion, datasetID)
			if err != nil {
				return err
			}
			metrics[i] = fetchedMetric{criterion: criterion, score: score, details: details}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return metrics, nil
}
