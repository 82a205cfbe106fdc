package status

import (
	"errors"
	"testing"
)

func TestTrackerSingleRun(t *testing.T) {
	tr := NewTracker()

	if err := tr.Begin(); err != nil {
		t.Fatalf("first Begin failed: %v", err)
	}
	if err := tr.Begin(); !errors.Is(err, ErrRunning) {
		t.Fatalf("second Begin = %v, want ErrRunning", err)
	}

	tr.Set(50, "scoring")
	snap := tr.Snapshot()
	if snap.State != StateRunning || snap.Progress != 50 || snap.Stage != "scoring" {
		t.Errorf("snapshot = %+v", snap)
	}

	tr.Done(3, 40, "/out/tenders_2026-08-26.xlsx")
	snap = tr.Snapshot()
	if snap.State != StateDone || snap.Progress != 100 || snap.Matched != 3 || snap.Total != 40 {
		t.Errorf("done snapshot = %+v", snap)
	}

	// The slot is free again once the run finished.
	if err := tr.Begin(); err != nil {
		t.Fatalf("Begin after Done failed: %v", err)
	}
	tr.Fail(errors.New("portal down"))
	snap = tr.Snapshot()
	if snap.State != StateError || snap.Error != "portal down" {
		t.Errorf("fail snapshot = %+v", snap)
	}
}

func TestTrackerSetIgnoredWhenIdle(t *testing.T) {
	tr := NewTracker()
	tr.Set(80, "phantom")
	if snap := tr.Snapshot(); snap.Progress != 0 || snap.Stage != "" {
		t.Errorf("idle tracker mutated: %+v", snap)
	}
}

func TestTrackerProgressClamped(t *testing.T) {
	tr := NewTracker()
	if err := tr.Begin(); err != nil {
		t.Fatal(err)
	}
	tr.Set(150, "over")
	if snap := tr.Snapshot(); snap.Progress != 100 {
		t.Errorf("progress = %d, want 100", snap.Progress)
	}
	tr.Set(-5, "under")
	if snap := tr.Snapshot(); snap.Progress != 0 {
		t.Errorf("progress = %d, want 0", snap.Progress)
	}
}
