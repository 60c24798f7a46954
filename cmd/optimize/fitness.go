package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/tribes/config"
	"github.com/pthm-cable/tribes/game"
	"github.com/pthm-cable/tribes/recipe"
	"github.com/pthm-cable/tribes/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	catalog     *recipe.Catalog
	windowTicks int

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. The catalog is shared by
// every run; recipes are never mutated.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, catalog *recipe.Catalog) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		catalog:     catalog,
		windowTicks: 60,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative recipe throughput scaled by run quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(x, s)
			quality := computeQuality(windows)
			results[idx] = seedResult{
				fitness: computeFitness(windows, fe.maxTicks, quality),
				quality: quality,
				windows: windows,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeed := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < results[bestSeed].fitness {
			bestSeed = i
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness && len(results) > 0 {
		fe.bestFitness = avgFitness
		fe.bestWindows = results[bestSeed].windows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// runSimulation executes a single headless run for maxTicks and returns
// every flushed window.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(&cfg, fe.catalog, game.Options{
		Seed:             seed,
		StatsWindowTicks: fe.windowTicks,
		Workers:          1, // seeds already run in parallel
	}, discardLogger)
	if err != nil {
		return nil
	}
	defer g.Unload()
	g.SetStatsCallback(func(stats telemetry.WindowStats) {
		windows = append(windows, stats)
	})

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(completed per 1000 ticks × (1.0 + 0.2 × quality))
func computeFitness(windows []telemetry.WindowStats, ticks int32, quality float64) float64 {
	if ticks <= 0 {
		return 0
	}
	var completed int
	for _, w := range windows {
		completed += w.Completed
	}
	throughput := float64(completed) * 1000 / float64(ticks)
	return -(throughput * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightCompletion = 0.40
	qualityWeightHealth     = 0.35
	qualityWeightBacklog    = 0.25

	qualityWarmupWindows = 2 // skip first N windows (warmup)
)

// computeQuality scores a run ∈ [0, 1] from its window stats: how many
// applications complete, how few are discarded and how steady the pending
// backlog stays.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	completion := make([]float64, 0, len(valid))
	backlog := make([]float64, 0, len(valid))
	var applied, discarded int
	for _, w := range valid {
		applied += w.Applied
		discarded += w.Discarded
		backlog = append(backlog, float64(w.Pending))
		if w.Applied > 0 {
			completion = append(completion, w.Completion)
		}
	}
	if applied == 0 {
		return 0
	}

	completionScore := 0.0
	if len(completion) > 0 {
		completionScore = stat.Mean(completion, nil)
	}
	healthScore := 1 - float64(discarded)/float64(applied)

	backlogScore := 0.0
	if len(backlog) >= 2 {
		c := cv(backlog)
		backlogScore = math.Exp(-c * c)
	}

	quality := qualityWeightCompletion*completionScore +
		qualityWeightHealth*healthScore +
		qualityWeightBacklog*backlogScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
