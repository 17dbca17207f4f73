package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty set", nil, 0},
		{"single value", []float64{7.5}, 7.5},
		{"all equal", []float64{8, 8, 8, 8, 8, 8, 8, 8, 8, 8}, 8},
		{"mixed", []float64{0, 10}, 5},
		{"zeroes count as values", []float64{0, 0, 0}, 0},
		{"eleven values", []float64{8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 6}, 86.0 / 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Average(tt.values), 1e-9)
		})
	}
}

func TestResult_OverallExcludesPending(t *testing.T) {
	r := NewResult()
	assert.Equal(t, 0.0, r.Overall)

	for _, c := range FastCriteria() {
		r.SetScore(c, 8.0, nil)
	}
	// Completitud is still pending: mean over the ten available values only.
	assert.InDelta(t, 8.0, r.Overall, 1e-9)
	assert.False(t, r.Score(Completitud).Valid)
	assert.False(t, r.Complete())

	r.SetScore(Completitud, 6.0, Details{"porcentaje_nulos": 12.5})
	assert.InDelta(t, (10*8.0+6.0)/11, r.Overall, 1e-9)
	assert.True(t, r.Complete())
}

func TestResult_AvailabilityIsMonotonic(t *testing.T) {
	r := NewResult()
	r.SetScore(Unicidad, 0, nil)

	// A zero score is available, never pending.
	s := r.Score(Unicidad)
	require.True(t, s.Valid)
	assert.Equal(t, 0.0, s.Value)

	// Updating keeps it available.
	r.SetScore(Unicidad, 4.2, nil)
	assert.True(t, r.Score(Unicidad).Valid)
}

func TestScore_Display(t *testing.T) {
	assert.Equal(t, "N/A", Score{}.Display())
	assert.Equal(t, "0.0", Available(0).Display())
	assert.Equal(t, "8.0", Available(8).Display())
	assert.Equal(t, "7.8", Available(7.818).Display())
}

func TestResult_CloneIsIndependent(t *testing.T) {
	r := NewResult()
	r.SetScore(Actualidad, 9, Details{"fuente": "metadata"})

	cp := r.Clone()
	r.SetScore(Conformidad, 5, nil)
	r.Details[Actualidad]["fuente"] = "mutated"

	assert.False(t, cp.Score(Conformidad).Valid)
	assert.Equal(t, "metadata", cp.Details[Actualidad]["fuente"])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "Excelente", Classify(7.0))
	assert.Equal(t, "Aceptable", Classify(5.0))
	assert.Equal(t, "Deficiente", Classify(4.9))
}
