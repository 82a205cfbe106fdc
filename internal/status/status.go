// Package status tracks the state of the current and most recent scrape run.
// One run may be active at a time; Begin is the gate that enforces it.
package status

import (
	"errors"
	"sync"
	"time"
)

// ErrRunning is returned by Begin while another run holds the slot.
var ErrRunning = errors.New("a scrape run is already in progress")

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

// Snapshot is a point-in-time copy safe to serialize.
type Snapshot struct {
	State      State      `json:"state"`
	Progress   int        `json:"progress"`
	Stage      string     `json:"stage"`
	Matched    int        `json:"matched"`
	Total      int        `json:"total"`
	ReportPath string     `json:"report_path,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Tracker is the mutex-guarded run state shared by the pipeline and the
// dashboard.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{State: StateIdle}}
}

// Begin claims the run slot. The caller must finish with Done or Fail.
func (t *Tracker) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snap.State == StateRunning {
		return ErrRunning
	}
	now := time.Now()
	t.snap = Snapshot{State: StateRunning, Stage: "starting", StartedAt: &now}
	return nil
}

// Set updates progress within a running run.
func (t *Tracker) Set(progress int, stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snap.State != StateRunning {
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	t.snap.Progress = progress
	t.snap.Stage = stage
}

// Done releases the slot recording the run's outcome.
func (t *Tracker) Done(matched, total int, reportPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.snap.State = StateDone
	t.snap.Progress = 100
	t.snap.Stage = "finished"
	t.snap.Matched = matched
	t.snap.Total = total
	t.snap.ReportPath = reportPath
	t.snap.FinishedAt = &now
}

// Fail releases the slot recording the failure.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.snap.State = StateError
	t.snap.Stage = "failed"
	t.snap.FinishedAt = &now
	if err != nil {
		t.snap.Error = err.Error()
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
