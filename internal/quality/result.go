package quality

import (
	"fmt"
	"maps"
)

// Score is an explicit pending-or-available criterion value. A zero score is a
// real measurement and is distinct from a pending one; Valid carries that
// distinction instead of an implicit sentinel.
type Score struct {
	Value float64
	Valid bool
}

// Available constructs an available score.
func Available(v float64) Score {
	return Score{Value: v, Valid: true}
}

// Display renders the score with one decimal digit, or "N/A" while pending.
func (s Score) Display() string {
	if !s.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", s.Value)
}

// Details is the opaque per-criterion payload returned by the backend
// (e.g. null-cell percentages for completitud).
type Details map[string]any

// DatasetInfo is the descriptive metadata returned by the initialize call.
// Immutable after creation.
type DatasetInfo struct {
	ID                    string `json:"dataset_id"`
	Name                  string `json:"dataset_name"`
	Rows                  int    `json:"rows"`
	Columns               int    `json:"columns"`
	RecordsCount          int    `json:"records_count"`
	TotalRecordsAvailable int    `json:"total_records_available"`
	LimitReached          bool   `json:"limit_reached"`
}

// Result is one dataset-analysis snapshot. Scores only ever transition from
// pending to available; nothing reverts them within an attempt. Overall is the
// arithmetic mean of the currently available scores (pending ones are excluded
// from the mean, not counted as zero).
type Result struct {
	Scores  map[Criterion]Score
	Details map[Criterion]Details
	Overall float64
}

// NewResult creates an empty result with every criterion pending.
func NewResult() *Result {
	scores := make(map[Criterion]Score, len(AllCriteria()))
	for _, c := range AllCriteria() {
		scores[c] = Score{}
	}
	return &Result{
		Scores:  scores,
		Details: make(map[Criterion]Details),
	}
}

// SetScore marks a criterion available and recomputes the overall mean.
func (r *Result) SetScore(c Criterion, value float64, details Details) {
	r.Scores[c] = Available(value)
	if details != nil {
		r.Details[c] = details
	}
	r.recalculate()
}

// Score returns the current state of a criterion.
func (r *Result) Score(c Criterion) Score {
	return r.Scores[c]
}

// Complete reports whether every criterion has resolved.
func (r *Result) Complete() bool {
	for _, s := range r.Scores {
		if !s.Valid {
			return false
		}
	}
	return true
}

// Clone returns an independent copy, safe to publish to readers while the
// analyzer keeps mutating the original.
func (r *Result) Clone() *Result {
	cp := &Result{
		Scores:  maps.Clone(r.Scores),
		Details: make(map[Criterion]Details, len(r.Details)),
		Overall: r.Overall,
	}
	for c, d := range r.Details {
		cp.Details[c] = maps.Clone(d)
	}
	return cp
}

func (r *Result) recalculate() {
	var available []float64
	for _, s := range r.Scores {
		if s.Valid {
			available = append(available, s.Value)
		}
	}
	r.Overall = Average(available)
}

// Average returns the arithmetic mean of the given scores, or 0 for an empty
// set. Pure; callers filter out pending criteria before calling.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Classify maps an overall score to its report label.
func Classify(score float64) string {
	switch {
	case score >= 7:
		return "Excelente"
	case score >= 5:
		return "Aceptable"
	default:
		return "Deficiente"
	}
}
