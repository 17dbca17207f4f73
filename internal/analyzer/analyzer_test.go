package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacensus/datacensus/internal/backend"
	"github.com/datacensus/datacensus/internal/quality"
	"github.com/datacensus/datacensus/internal/testutil"
)

// fakeBackend serves the scoring API with per-criterion scores and optional
// per-endpoint failures, counting every request it receives.
type fakeBackend struct {
	scores   map[quality.Criterion]float64
	failing  map[string]int // path -> status code
	requests atomic.Int64
}

func (f *fakeBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)

		if code, ok := f.failing[r.URL.Path]; ok {
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "fallo simulado"})
			return
		}

		switch r.URL.Path {
		case "/initialize":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"dataset_id":              "8dbv-wsjq",
				"dataset_name":            "Test",
				"rows":                    100,
				"columns":                 5,
				"records_count":           100,
				"total_records_available": 100,
				"limit_reached":           false,
			})
		case "/load_data":
			w.WriteHeader(http.StatusOK)
		default:
			criterion := quality.Criterion(strings.TrimPrefix(r.URL.Path, "/"))
			score, ok := f.scores[criterion]
			if !ok {
				t.Errorf("unexpected criterion request: %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"score": score})
		}
	})
}

// recorder captures everything the hooks publish, in order.
type recorder struct {
	phases   []Phase
	info     *quality.DatasetInfo
	results  []*quality.Result
	warnings []error
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		PhaseChanged: func(p Phase) { r.phases = append(r.phases, p) },
		InfoLoaded: func(info quality.DatasetInfo) {
			r.info = &info
		},
		ResultUpdated:     func(res *quality.Result) { r.results = append(r.results, res) },
		SlowMetricWarning: func(err error) { r.warnings = append(r.warnings, err) },
	}
}

func uniformScores(fast, slow float64) map[quality.Criterion]float64 {
	scores := make(map[quality.Criterion]float64)
	for _, c := range quality.FastCriteria() {
		scores[c] = fast
	}
	scores[quality.Completitud] = slow
	return scores
}

func newAnalyzer(t *testing.T, fake *fakeBackend) *Analyzer {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client := backend.NewClient(backend.Config{BaseURL: server.URL, Logger: testutil.NewTestLogger(t)})
	return New(client, testutil.NewTestLogger(t))
}

func TestAnalyze_FullFlow(t *testing.T) {
	fake := &fakeBackend{scores: uniformScores(8.0, 6.0)}
	a := newAnalyzer(t, fake)

	rec := &recorder{}
	require.NoError(t, a.Analyze(context.Background(), "8dbv-wsjq", rec.hooks()))

	require.NotNil(t, rec.info)
	assert.Equal(t, "Test", rec.info.Name)
	assert.Equal(t, 100, rec.info.RecordsCount)

	// Two publications: fast batch first, then the merged slow update.
	require.Len(t, rec.results, 2)

	fast := rec.results[0]
	assert.InDelta(t, 8.0, fast.Overall, 1e-9)
	assert.False(t, fast.Score(quality.Completitud).Valid)

	final := rec.results[1]
	assert.InDelta(t, (10*8.0+6.0)/11, final.Overall, 1e-9)
	assert.True(t, final.Score(quality.Completitud).Valid)
	assert.Equal(t, 6.0, final.Score(quality.Completitud).Value)

	assert.Equal(t, []Phase{
		PhaseInitializing,
		PhaseRecordsLoading,
		PhaseFastMetricsLoading,
		PhaseFastMetricsReady,
		PhaseComplete,
	}, rec.phases)
	assert.Empty(t, rec.warnings)
}

func TestAnalyze_FastBatchIsAllOrNothing(t *testing.T) {
	fake := &fakeBackend{
		scores:  uniformScores(8.0, 6.0),
		failing: map[string]int{"/accesibilidad": http.StatusInternalServerError},
	}
	a := newAnalyzer(t, fake)

	rec := &recorder{}
	err := a.Analyze(context.Background(), "8dbv-wsjq", rec.hooks())

	var fetchErr *quality.MetricFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, quality.Accesibilidad, fetchErr.Criterion)

	// No partial scorecard reaches the UI.
	assert.Empty(t, rec.results)
}

func TestAnalyze_EmptyDatasetID(t *testing.T) {
	fake := &fakeBackend{scores: uniformScores(8.0, 6.0)}
	a := newAnalyzer(t, fake)

	rec := &recorder{}
	err := a.Analyze(context.Background(), "   ", rec.hooks())

	var valErr *quality.ValidationError
	require.ErrorAs(t, err, &valErr)

	// Validation happens before any network call.
	assert.Equal(t, int64(0), fake.requests.Load())
	assert.Empty(t, rec.phases)
}

func TestAnalyze_SlowFailureKeepsFastResults(t *testing.T) {
	fake := &fakeBackend{
		scores:  uniformScores(7.0, 0),
		failing: map[string]int{"/completitud": http.StatusInternalServerError},
	}
	a := newAnalyzer(t, fake)

	rec := &recorder{}
	require.NoError(t, a.Analyze(context.Background(), "8dbv-wsjq", rec.hooks()))

	// Only the fast publication happened and it stands untouched.
	require.Len(t, rec.results, 1)
	assert.InDelta(t, 7.0, rec.results[0].Overall, 1e-9)
	assert.False(t, rec.results[0].Score(quality.Completitud).Valid)

	require.Len(t, rec.warnings, 1)
	var fetchErr *quality.MetricFetchError
	require.ErrorAs(t, rec.warnings[0], &fetchErr)
	assert.Equal(t, quality.Completitud, fetchErr.Criterion)

	// The attempt still completes.
	assert.Equal(t, PhaseComplete, rec.phases[len(rec.phases)-1])
}

func TestAnalyze_InitFailureStopsFlow(t *testing.T) {
	fake := &fakeBackend{
		scores:  uniformScores(8.0, 6.0),
		failing: map[string]int{"/initialize": http.StatusNotFound},
	}
	a := newAnalyzer(t, fake)

	rec := &recorder{}
	err := a.Analyze(context.Background(), "nope", rec.hooks())

	var initErr *quality.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "fallo simulado", initErr.Detail)

	// Only the initialize request went out.
	assert.Equal(t, int64(1), fake.requests.Load())
	assert.Nil(t, rec.info)
	assert.Empty(t, rec.results)
}

func TestAnalyze_LoadFailureStopsFlow(t *testing.T) {
	fake := &fakeBackend{
		scores:  uniformScores(8.0, 6.0),
		failing: map[string]int{"/load_data": http.StatusInternalServerError},
	}
	a := newAnalyzer(t, fake)

	rec := &recorder{}
	err := a.Analyze(context.Background(), "8dbv-wsjq", rec.hooks())

	var loadErr *quality.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Empty(t, rec.results)
	assert.Equal(t, int64(2), fake.requests.Load())
}
