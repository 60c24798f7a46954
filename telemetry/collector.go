package telemetry

import (
	"time"

	"github.com/pthm-cable/tribes/engine"
)

// Collector accumulates one tribe's events within time windows and produces WindowStats.
type Collector struct {
	tribe               int
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	applied     int
	completed   int
	blocked     int
	suspended   int
	discarded   int
	cyclesCut   int
	idle        int
	injections  int
	perceptions int
	births      int

	timing ApplyTiming
}

// NewCollector creates a stats collector for a tribe.
// windowTicks: how many ticks each stats window lasts
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(tribe int, windowTicks int32, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		tribe:               tribe,
		windowDurationTicks: windowTicks,
		dt:                  dt,
	}
}

// RecordOutcome records one Apply call.
func (c *Collector) RecordOutcome(o engine.Outcome) {
	c.applied++
	switch o {
	case engine.Completed:
		c.completed++
	case engine.Blocked:
		c.blocked++
	case engine.Suspended:
		c.suspended++
	}
}

// RecordApplyTime records how long one Apply call took.
func (c *Collector) RecordApplyTime(o engine.Outcome, d time.Duration) {
	c.timing.Record(o, d)
}

// RecordDiscard records a node dropped after an error. cycle marks a whole
// tree dropped by the injection depth guard.
func (c *Collector) RecordDiscard(cycle bool) {
	c.discarded++
	if cycle {
		c.cyclesCut++
	}
}

// RecordInjections records prerequisites attached by one Apply call.
func (c *Collector) RecordInjections(n int) {
	c.injections += n
}

// RecordIdle records a tick with no runnable node.
func (c *Collector) RecordIdle() {
	c.idle++
}

// RecordPerception records a perception delivered to members.
func (c *Collector) RecordPerception() {
	c.perceptions++
}

// RecordBirth records a member born to the tribe.
func (c *Collector) RecordBirth() {
	c.births++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Gauges are tribe values sampled when a window is flushed.
type Gauges struct {
	Members   int
	Pending   int
	Cyclic    int
	Buildings int
	Depths    []float64 // depth of every pending node
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, g Gauges) WindowStats {
	var completion float64
	if c.applied > 0 {
		completion = float64(c.completed) / float64(c.applied)
	}

	depthMean, depthStd, depthP50, depthP90, depthMax := ComputeDepthStats(g.Depths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Tribe:           c.tribe,

		Members:   g.Members,
		Pending:   g.Pending,
		Cyclic:    g.Cyclic,
		Buildings: g.Buildings,

		Applied:   c.applied,
		Completed: c.completed,
		Blocked:   c.blocked,
		Suspended: c.suspended,
		Discarded: c.discarded,
		CyclesCut: c.cyclesCut,
		Idle:      c.idle,

		Injections:  c.injections,
		Perceptions: c.perceptions,
		Births:      c.births,
		Completion:  completion,

		DepthMean: depthMean,
		DepthStd:  depthStd,
		DepthP50:  depthP50,
		DepthP90:  depthP90,
		DepthMax:  depthMax,

		ApplyMeanUS:     micros(c.timing.MeanAll()),
		ApplyPeakUS:     micros(c.timing.Peak()),
		CompletedMeanUS: micros(c.timing.Mean(engine.Completed)),
		BlockedMeanUS:   micros(c.timing.Mean(engine.Blocked)),
		SuspendedMeanUS: micros(c.timing.Mean(engine.Suspended)),
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.applied = 0
	c.completed = 0
	c.blocked = 0
	c.suspended = 0
	c.discarded = 0
	c.cyclesCut = 0
	c.idle = 0
	c.injections = 0
	c.perceptions = 0
	c.births = 0
	c.timing.Reset()

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
