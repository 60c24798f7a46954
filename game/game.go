// Package game runs tribes headlessly: one recipe engine shared by every
// tribe, a fixed-step tick loop, member reactions to perceptions and
// per-tribe telemetry.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/tribes/config"
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/recipe"
	"github.com/pthm-cable/tribes/telemetry"
	"github.com/pthm-cable/tribes/tribe"
)

// bookmarkHistory is how many stats windows bookmark detection looks back over.
const bookmarkHistory = 10

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	catalog *recipe.Catalog
	engine  *engine.Engine
	logger  *slog.Logger

	tribes []*tribeState

	// State
	rngSeed int64
	tick    int32
	now     float64 // simulated seconds at the current tick
	dt      float64

	parallel *parallelState

	// Telemetry
	windowTicks   int32
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// tribeState is everything the game keeps per tribe. Only the worker that
// owns the tribe for a phase touches it.
type tribeState struct {
	tribe     *tribe.Tribe
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	trace     []telemetry.TraceRecord
	last      tribe.Report // last Advance with a runnable node
}

// NewGameWithOptions founds every configured tribe and prepares output.
func NewGameWithOptions(cfg *config.Config, catalog *recipe.Catalog, opts Options, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}

	windowTicks := cfg.Telemetry.StatsWindowTicks
	if opts.StatsWindowTicks > 0 {
		windowTicks = opts.StatsWindowTicks
	}
	outputDir := cfg.Telemetry.OutputDir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}

	om, err := telemetry.NewOutputManager(outputDir, opts.Trace || cfg.Telemetry.Trace)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	g := &Game{
		cfg:           cfg,
		catalog:       catalog,
		engine:        engine.New(catalog, engineConfig(cfg.Engine), logger),
		logger:        logger,
		rngSeed:       opts.Seed,
		dt:            cfg.Derived.DT,
		windowTicks:   int32(windowTicks),
		perfCollector: telemetry.NewPerfCollector(windowTicks),
		outputManager: om,
		logStats:      opts.LogStats,
	}

	if err := g.foundTribes(); err != nil {
		om.Close()
		return nil, err
	}
	g.parallel = newParallelState(opts.Workers, len(g.tribes))

	logger.Info("world founded",
		"tribes", len(g.tribes),
		"recipes", catalog.Len(),
		"seed", opts.Seed,
		"window_ticks", windowTicks,
		"output_dir", om.Dir(),
	)
	return g, nil
}

// engineConfig converts the loaded engine section.
func engineConfig(c config.EngineConfig) engine.Config {
	return engine.Config{
		BasicRecipeThreshold: c.BasicRecipeThreshold,
		MaxInjectionDepth:    c.MaxInjectionDepth,
		WorkMemoryRadius:     float32(c.WorkMemoryRadius),
		BuildingMemoryRadius: float32(c.BuildingMemoryRadius),
	}
}

// tribeRand derives a tribe's random source from the run seed.
func tribeRand(seed int64, id int) *rand.Rand {
	return rand.New(rand.NewSource(seed*7919 + int64(id)))
}

// UpdateHeadless runs one simulation tick and its telemetry.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.simulationStep()
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.writeTrace()
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// SetStatsCallback registers fn to receive every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Tick returns the number of ticks run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Now returns the simulated time in seconds.
func (g *Game) Now() float64 {
	return g.now
}

// Engine returns the shared recipe engine.
func (g *Game) Engine() *engine.Engine {
	return g.engine
}

// Tribes returns every tribe in configuration order.
func (g *Game) Tribes() []*tribe.Tribe {
	out := make([]*tribe.Tribe, len(g.tribes))
	for i, ts := range g.tribes {
		out[i] = ts.tribe
	}
	return out
}

// Tribe returns a tribe by id.
func (g *Game) Tribe(id int) (*tribe.Tribe, bool) {
	for _, ts := range g.tribes {
		if ts.tribe.ID() == id {
			return ts.tribe, true
		}
	}
	return nil, false
}

// LastReport returns the last Advance of a tribe that ran a node.
func (g *Game) LastReport(id int) (tribe.Report, bool) {
	for _, ts := range g.tribes {
		if ts.tribe.ID() == id {
			return ts.last, ts.last.Node != nil
		}
	}
	return tribe.Report{}, false
}

// Unload stops workers, saves a final snapshot and closes output files.
func (g *Game) Unload() {
	g.parallel.stopWorkers()

	if g.outputManager != nil {
		g.saveSnapshot(nil)
	}
	if err := g.outputManager.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}
