package analysis

import (
	"sync"

	"github.com/google/uuid"

	"github.com/datacensus/datacensus/internal/analyzer"
	"github.com/datacensus/datacensus/internal/quality"
)

// State holds the dashboard's current analysis. Every Begin starts a new
// attempt with a fresh id; writers must present that id, so a completitud
// response that arrives after the user has started a new analysis is
// discarded instead of overwriting the newer attempt.
type State struct {
	mu      sync.Mutex
	attempt string
	phase   analyzer.Phase
	info    *quality.DatasetInfo
	result  *quality.Result
	warning string
	failure string
}

// Snapshot is an immutable view of the analysis state.
type Snapshot struct {
	Attempt string
	Phase   analyzer.Phase
	Info    *quality.DatasetInfo
	Result  *quality.Result
	Warning string
	Failure string
}

// NewState creates an idle state.
func NewState() *State {
	return &State{phase: analyzer.PhaseIdle}
}

// Begin starts a new attempt and returns its id. All previous attempt data is
// cleared; in-flight writers for older attempts become no-ops.
func (s *State) Begin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt = uuid.NewString()
	s.phase = analyzer.PhaseInitializing
	s.info = nil
	s.result = nil
	s.warning = ""
	s.failure = ""
	return s.attempt
}

// SetPhase records the phase for an attempt. Returns false for stale attempts.
func (s *State) SetPhase(attempt string, phase analyzer.Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return false
	}
	s.phase = phase
	return true
}

// SetInfo records the dataset metadata for an attempt.
func (s *State) SetInfo(attempt string, info *quality.DatasetInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return false
	}
	s.info = info
	return true
}

// SetResult records a result snapshot for an attempt.
func (s *State) SetResult(attempt string, result *quality.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return false
	}
	s.result = result
	return true
}

// SetWarning records the degraded-completitud notice for an attempt.
func (s *State) SetWarning(attempt, warning string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return false
	}
	s.warning = warning
	return true
}

// Fail marks an attempt as failed with a user-facing message.
func (s *State) Fail(attempt, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt != s.attempt {
		return false
	}
	s.failure = message
	s.phase = analyzer.PhaseIdle
	return true
}

// Snapshot returns a copy of the current state. The result is cloned so the
// reader can render it without racing the analyzer.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Attempt: s.attempt,
		Phase:   s.phase,
		Info:    s.info,
		Warning: s.warning,
		Failure: s.failure,
	}
	if s.result != nil {
		snap.Result = s.result.Clone()
	}
	return snap
}
