package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacensus/datacensus/internal/quality"
	"github.com/datacensus/datacensus/internal/testutil"
)

var testInfo = &quality.DatasetInfo{
	ID:           "8dbv-wsjq",
	Name:         "Test",
	Rows:         100,
	Columns:      5,
	RecordsCount: 100,
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
}

func completeResult() *quality.Result {
	r := quality.NewResult()
	for _, c := range quality.FastCriteria() {
		r.SetScore(c, 8.0, nil)
	}
	r.SetScore(quality.Completitud, 6.0, quality.Details{"porcentaje_nulos": 12.5})
	return r
}

type fakeNarrator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeNarrator) Ask(_ context.Context, msg string) (string, error) {
	f.prompt = msg
	return f.response, f.err
}

func TestRenderSummary_Deterministic(t *testing.T) {
	r := NewRenderer(Config{Now: fixedClock, Logger: testutil.NewTestLogger(t)})

	first, err := r.RenderSummary(completeResult(), testInfo)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := r.RenderSummary(completeResult(), testInfo)
	require.NoError(t, err)

	// Identical inputs and clock produce byte-identical documents.
	assert.Equal(t, first, second)
}

func TestRenderSummary_PartialResult(t *testing.T) {
	r := NewRenderer(Config{Now: fixedClock, Logger: testutil.NewTestLogger(t)})

	partial := quality.NewResult()
	for _, c := range quality.FastCriteria() {
		partial.SetScore(c, 7.0, nil)
	}

	out, err := r.RenderSummary(partial, testInfo)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestCriterionRows_ZeroVersusPending(t *testing.T) {
	result := quality.NewResult()
	result.SetScore(quality.Unicidad, 0, nil)

	byCriterion := make(map[quality.Criterion]criterionRow)
	for _, row := range criterionRows(result) {
		byCriterion[row.Criterion] = row
	}

	// A real zero is "0.0", a pending criterion is "N/A"; they are never
	// rendered the same way.
	assert.Equal(t, "0.0", byCriterion[quality.Unicidad].Display)
	assert.Equal(t, "N/A", byCriterion[quality.Completitud].Display)
}

func TestMetricsPrompt(t *testing.T) {
	prompt := MetricsPrompt(completeResult(), testInfo)

	assert.Contains(t, prompt, "Dataset: Test (8dbv-wsjq)")
	assert.Contains(t, prompt, "Completitud: 6.0")
	assert.Contains(t, prompt, "Actualidad: 8.0")
	assert.Contains(t, prompt, fmt.Sprintf("Promedio general: %.1f", (10*8.0+6.0)/11))
}

func TestRenderWithNarrative(t *testing.T) {
	narrator := &fakeNarrator{response: "**Resumen**: el dataset es confiable.\n- buena completitud"}
	r := NewRenderer(Config{Now: fixedClock, Narrator: narrator, Logger: testutil.NewTestLogger(t)})

	out, err := r.RenderWithNarrative(context.Background(), completeResult(), testInfo)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	// The agent received the serialized metrics, not raw structs.
	assert.Contains(t, narrator.prompt, "Promedio general")
}

func TestRenderWithNarrative_AgentFailure(t *testing.T) {
	narrator := &fakeNarrator{err: fmt.Errorf("webhook caído")}
	r := NewRenderer(Config{Now: fixedClock, Narrator: narrator, Logger: testutil.NewTestLogger(t)})

	out, err := r.RenderWithNarrative(context.Background(), completeResult(), testInfo)
	assert.Nil(t, out)

	var unavailable *quality.AnalysisUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestRenderWithNarrative_NoNarratorConfigured(t *testing.T) {
	r := NewRenderer(Config{Now: fixedClock, Logger: testutil.NewTestLogger(t)})

	_, err := r.RenderWithNarrative(context.Background(), completeResult(), testInfo)
	var unavailable *quality.AnalysisUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestFilename(t *testing.T) {
	now := fixedClock()

	assert.Equal(t, "metrics_8dbv-wsjq_2025-06-01T12-30-00Z.pdf", Filename(testInfo, now))
	assert.Equal(t, "metrics_dataset_2025-06-01T12-30-00Z.pdf", Filename(nil, now))
}
