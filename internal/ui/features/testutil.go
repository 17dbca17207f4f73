// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datacensus/datacensus/internal/quality"
)

// StubBackend implements the analyzer's backend interface in-memory. Errors
// and per-criterion scores are injectable; Requests counts every call so tests
// can assert fail-fast behavior.
type StubBackend struct {
	Info     quality.DatasetInfo
	Scores   map[quality.Criterion]float64
	Details  map[quality.Criterion]quality.Details
	InitErr  error
	LoadErr  error
	FailWith map[quality.Criterion]error

	// SlowGate, when set, blocks the completitud fetch for SlowBlockDataset
	// until the channel is closed, simulating the long-running backend
	// computation for that dataset only.
	SlowGate         chan struct{}
	SlowBlockDataset string

	Requests atomic.Int64
}

// NewStubBackend returns a backend where every criterion scores the same.
func NewStubBackend(score float64) *StubBackend {
	scores := make(map[quality.Criterion]float64, len(quality.AllCriteria()))
	for _, c := range quality.AllCriteria() {
		scores[c] = score
	}
	return &StubBackend{
		Info: quality.DatasetInfo{
			ID:                    "8dbv-wsjq",
			Name:                  "Dataset de prueba",
			Rows:                  1000,
			Columns:               12,
			RecordsCount:          1000,
			TotalRecordsAvailable: 5000,
		},
		Scores:   scores,
		FailWith: make(map[quality.Criterion]error),
	}
}

func (b *StubBackend) Initialize(_ context.Context, datasetID string) (quality.DatasetInfo, error) {
	b.Requests.Add(1)
	if b.InitErr != nil {
		return quality.DatasetInfo{}, b.InitErr
	}
	info := b.Info
	info.ID = datasetID
	return info, nil
}

func (b *StubBackend) LoadData(_ context.Context, _ string) error {
	b.Requests.Add(1)
	return b.LoadErr
}

func (b *StubBackend) FetchCriterion(ctx context.Context, criterion quality.Criterion, datasetID string) (float64, quality.Details, error) {
	b.Requests.Add(1)
	if criterion == quality.Completitud && b.SlowGate != nil && datasetID == b.SlowBlockDataset {
		select {
		case <-b.SlowGate:
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	}
	if err := b.FailWith[criterion]; err != nil {
		return 0, nil, err
	}
	score, ok := b.Scores[criterion]
	if !ok {
		return 0, nil, fmt.Errorf("no score configured for %s", criterion)
	}
	return score, b.Details[criterion], nil
}

// WaitFor polls cond until it holds or the deadline passes.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
