package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/tribes/engine"
)

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(3, 10, 0.5)

	if c.ShouldFlush(9) {
		t.Error("ShouldFlush(9) = true before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("ShouldFlush(10) = false at window end")
	}

	c.RecordOutcome(engine.Completed)
	c.RecordOutcome(engine.Blocked)
	c.RecordOutcome(engine.Blocked)
	c.RecordOutcome(engine.Suspended)
	c.RecordDiscard(false)
	c.RecordDiscard(true)
	c.RecordInjections(3)
	c.RecordIdle()
	c.RecordPerception()
	c.RecordBirth()
	c.RecordApplyTime(engine.Completed, 50*time.Microsecond)
	c.RecordApplyTime(engine.Blocked, 10*time.Microsecond)
	c.RecordApplyTime(engine.Blocked, 30*time.Microsecond)

	s := c.Flush(10, Gauges{Members: 5, Pending: 2, Buildings: 1, Depths: []float64{0, 2}})

	if s.Tribe != 3 || s.WindowEndTick != 10 || s.SimTimeSec != 5 {
		t.Errorf("window = tribe %d end %d time %v", s.Tribe, s.WindowEndTick, s.SimTimeSec)
	}
	if s.Applied != 4 || s.Completed != 1 || s.Blocked != 2 || s.Suspended != 1 {
		t.Errorf("outcomes = %+v", s)
	}
	if s.Discarded != 2 || s.CyclesCut != 1 || s.Injections != 3 || s.Idle != 1 {
		t.Errorf("events = %+v", s)
	}
	if s.Completion != 0.25 {
		t.Errorf("Completion = %v, want 0.25", s.Completion)
	}
	if s.Members != 5 || s.DepthMean != 1 || s.DepthMax != 2 {
		t.Errorf("gauges = %+v", s)
	}

	if s.ApplyMeanUS != 30 || s.ApplyPeakUS != 50 {
		t.Errorf("apply mean %v peak %v, want 30 and 50", s.ApplyMeanUS, s.ApplyPeakUS)
	}
	if s.CompletedMeanUS != 50 || s.BlockedMeanUS != 20 || s.SuspendedMeanUS != 0 {
		t.Errorf("per-outcome apply = %v/%v/%v", s.CompletedMeanUS, s.BlockedMeanUS, s.SuspendedMeanUS)
	}

	// Counters reset for the next window.
	next := c.Flush(20, Gauges{})
	if next.WindowStartTick != 10 || next.Applied != 0 || next.Births != 0 || next.Completion != 0 {
		t.Errorf("second window = %+v", next)
	}
	if next.ApplyMeanUS != 0 || next.ApplyPeakUS != 0 {
		t.Errorf("apply timing not reset: %v/%v", next.ApplyMeanUS, next.ApplyPeakUS)
	}
	if c.ShouldFlush(29) || !c.ShouldFlush(30) {
		t.Error("window did not restart at tick 20")
	}
}

func TestNewCollectorClampsWindow(t *testing.T) {
	if got := NewCollector(1, 0, 1).WindowDurationTicks(); got != 1 {
		t.Errorf("WindowDurationTicks() = %d, want 1", got)
	}
}
