// Package progress tracks the advisory status of the active run for pollers.
//
// A process hosts at most one active run: Begin refuses to start a second
// run while the first is still running.
package progress

import (
	"errors"
	"sync"
)

// Status of the tracked run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// ErrRunActive is returned by Begin while another run is still running.
var ErrRunActive = errors.New("a run is already active")

// State is a point-in-time snapshot of run progress.
type State struct {
	Status        Status `json:"status"`
	Iteration     int    `json:"iteration"`
	MaxIterations int    `json:"max_iterations"`
	Output        string `json:"output"`
	Completed     bool   `json:"completed"`
	RunID         string `json:"run_id,omitempty"`
}

// Tracker guards the process-wide progress state.
type Tracker struct {
	mu sync.RWMutex
	s  State
}

// NewTracker returns an idle tracker advertising maxIterations.
func NewTracker(maxIterations int) *Tracker {
	return &Tracker{s: State{Status: StatusIdle, MaxIterations: maxIterations}}
}

// Begin resets the state for a new run.
func (t *Tracker) Begin(runID string, maxIterations int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.s.Status == StatusRunning {
		return ErrRunActive
	}
	t.s = State{Status: StatusRunning, MaxIterations: maxIterations, RunID: runID}
	return nil
}

// SetIteration records the current 1-based pass, clamped to the ceiling.
func (t *Tracker) SetIteration(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > t.s.MaxIterations {
		n = t.s.MaxIterations
	}
	t.s.Iteration = n
}

// SetOutput replaces the cumulative output trace.
func (t *Tracker) SetOutput(out string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Output = out
}

// Complete marks the run finished, whether by signal or by budget.
func (t *Tracker) Complete(out string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Output = out
	t.s.Status = StatusCompleted
	t.s.Completed = true
}

// Fail marks the run as failed: the precheck rejected it or it was
// cancelled. msg replaces the output.
func (t *Tracker) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Output = msg
	t.s.Status = StatusError
	t.s.Completed = true
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.s
}
