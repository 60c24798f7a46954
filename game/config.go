package game

// Options holds run-time settings for a game, layered over config.Config.
type Options struct {
	Seed             int64  // RNG seed; each tribe derives its own source from it
	LogStats         bool   // log window stats and bookmarks through slog
	StatsWindowTicks int    // 0 = use config
	OutputDir        string // empty = no CSV output
	Trace            bool   // write trace.csv (needs OutputDir)
	Workers          int    // 0 = GOMAXPROCS
}

// DefaultOptions returns the default game options.
func DefaultOptions() Options {
	return Options{
		Seed: 1,
	}
}
