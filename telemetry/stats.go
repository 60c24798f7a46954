package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one tribe over a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Tribe           int     `csv:"tribe"`

	// Gauges sampled at window end
	Members   int `csv:"members"`
	Pending   int `csv:"pending"`
	Cyclic    int `csv:"cyclic"`
	Buildings int `csv:"buildings"`

	// Apply calls during window
	Applied   int `csv:"applied"`
	Completed int `csv:"completed"`
	Blocked   int `csv:"blocked"`
	Suspended int `csv:"suspended"`
	Discarded int `csv:"discarded"`
	CyclesCut int `csv:"cycles_cut"`
	Idle      int `csv:"idle"` // ticks with nothing runnable

	Injections  int     `csv:"injections"`
	Perceptions int     `csv:"perceptions"`
	Births      int     `csv:"births"`
	Completion  float64 `csv:"completion_rate"`

	// Pending tree depth distribution (sampled at window end)
	DepthMean float64 `csv:"depth_mean"`
	DepthStd  float64 `csv:"depth_std"`
	DepthP50  float64 `csv:"depth_p50"`
	DepthP90  float64 `csv:"depth_p90"`
	DepthMax  float64 `csv:"depth_max"`

	// Wall time inside Apply, in microseconds
	ApplyMeanUS     float64 `csv:"apply_mean_us"`
	ApplyPeakUS     float64 `csv:"apply_peak_us"`
	CompletedMeanUS float64 `csv:"completed_mean_us"`
	BlockedMeanUS   float64 `csv:"blocked_mean_us"`
	SuspendedMeanUS float64 `csv:"suspended_mean_us"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDepthStats calculates mean, sample standard deviation, median,
// 90th percentile and maximum of pending node depths.
func ComputeDepthStats(values []float64) (mean, std, p50, p90, peak float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	peak = floats.Max(sorted)

	return mean, std, p50, p90, peak
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("tribe", s.Tribe),
		slog.Int("members", s.Members),
		slog.Int("pending", s.Pending),
		slog.Int("applied", s.Applied),
		slog.Int("completed", s.Completed),
		slog.Int("blocked", s.Blocked),
		slog.Int("suspended", s.Suspended),
		slog.Int("discarded", s.Discarded),
		slog.Int("injections", s.Injections),
		slog.Float64("depth_mean", s.DepthMean),
		slog.Float64("depth_max", s.DepthMax),
		slog.Float64("apply_mean_us", s.ApplyMeanUS),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"tribe", s.Tribe,
		"members", s.Members,
		"pending", s.Pending,
		"cyclic", s.Cyclic,
		"buildings", s.Buildings,
		"applied", s.Applied,
		"completed", s.Completed,
		"blocked", s.Blocked,
		"suspended", s.Suspended,
		"discarded", s.Discarded,
		"cycles_cut", s.CyclesCut,
		"idle", s.Idle,
		"injections", s.Injections,
		"perceptions", s.Perceptions,
		"births", s.Births,
		"completion_rate", s.Completion,
		"depth_mean", s.DepthMean,
		"depth_std", s.DepthStd,
		"depth_p50", s.DepthP50,
		"depth_p90", s.DepthP90,
		"depth_max", s.DepthMax,
	)
}
