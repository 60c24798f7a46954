package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/pthm-cable/tribes/config"
	"github.com/pthm-cable/tribes/game"
	"github.com/pthm-cable/tribes/recipe"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, traces and snapshots")
	trace := flag.Bool("trace", false, "Write one trace row per applied recipe (needs -output-dir)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = config, then unlimited)")
	workers := flag.Int("workers", 0, "Tribe worker goroutines (0 = GOMAXPROCS)")
	dumpConfig := flag.String("dump-config", "", "Write the effective config to this path and exit")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		return
	}

	logger, closeLog, err := newLogger(cfg.Log, cfg.Derived.LogLevel)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ticks := *maxTicks
	if ticks == 0 {
		ticks = cfg.Simulation.MaxTicks
	}

	data, err := cfg.Recipes()
	if err != nil {
		slog.Error("failed to read recipes", "error", err)
		os.Exit(1)
	}
	catalog, err := recipe.LoadCSV(bytes.NewReader(data))
	if err != nil {
		slog.Error("failed to load recipes", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Seed:             rngSeed,
		LogStats:         *logStats,
		StatsWindowTicks: *statsWindow,
		OutputDir:        *outputDir,
		Trace:            *trace,
		Workers:          *workers,
	}

	g, err := game.NewGameWithOptions(cfg, catalog, opts, logger)
	if err != nil {
		slog.Error("failed to found tribes", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting simulation",
		"options", opts,
		"max_ticks", ticks,
	)

	for {
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", g.Tick())
			return
		}

		g.UpdateHeadless()

		if ticks > 0 && int(g.Tick()) >= ticks {
			slog.Info("max ticks reached", "tick", g.Tick(), "sim_time", g.Now())
			return
		}
	}
}

// newLogger fans out JSON records on stdout and, if configured, text
// records to a log file. Both share one level.
func newLogger(lc config.LogConfig, lvl slog.Level) (*slog.Logger, func(), error) {
	level := new(slog.LevelVar)
	level.Set(lvl)
	opts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{slog.NewJSONHandler(os.Stdout, opts)}
	closeFn := func() {}

	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file %s: %w", lc.File, err)
		}
		handlers = append(handlers, slog.NewTextHandler(f, opts))
		closeFn = func() { f.Close() }
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}
