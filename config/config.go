// Package config provides configuration loading and access for the tribe simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed recipes.csv
var defaultRecipes []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Log        LogConfig        `yaml:"log"`
	Tribes     []TribeConfig    `yaml:"tribes"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// EngineConfig holds recipe engine tunables.
type EngineConfig struct {
	BasicRecipeThreshold int     `yaml:"basic_recipe_threshold"` // Recipe ids below this never inject on missing members
	MaxInjectionDepth    int     `yaml:"max_injection_depth"`    // Deepest prerequisite chain before a cycle is assumed
	WorkMemoryRadius     float64 `yaml:"work_memory_radius"`     // Radius of memories recorded by loadLocation
	BuildingMemoryRadius float64 `yaml:"building_memory_radius"` // Radius of memories built from reserved spots
}

// SimulationConfig holds tick loop parameters.
type SimulationConfig struct {
	TicksPerSecond float64 `yaml:"ticks_per_second"`
	MaxTicks       int     `yaml:"max_ticks"`    // 0 = unlimited
	Seed           int64   `yaml:"seed"`         // 0 = time-based
	RecipesPath    string  `yaml:"recipes_path"` // CSV of recipe rows; empty = embedded table
	ExploreRadius  float64 `yaml:"explore_radius"`
	TaskSeconds    float64 `yaml:"task_seconds"` // How long gather/mine/explore keep a member busy
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks int    `yaml:"stats_window_ticks"`
	OutputDir        string `yaml:"output_dir"` // empty = no CSV output
	Trace            bool   `yaml:"trace"`      // write every Apply call to trace.csv
}

// LogConfig holds logging parameters.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional text log, in addition to JSON on stdout
}

// TribeConfig defines one tribe to found at startup.
type TribeConfig struct {
	ID                   int            `yaml:"id"`
	Name                 string         `yaml:"name"`
	TribalRecipe         string         `yaml:"tribal_recipe"`
	HomeSector           string         `yaml:"home_sector"`
	Home                 [3]float64     `yaml:"home"`
	MaxSize              int            `yaml:"max_size"`
	ReproductionCost     int            `yaml:"reproduction_cost"`
	ReproductionResource string         `yaml:"reproduction_resource"`
	Resources            map[string]int `yaml:"resources"`
	Items                map[string]int `yaml:"items"`
	Knowledge            []string       `yaml:"knowledge"`
	Diggable             []string       `yaml:"diggable"`
	Members              []MemberConfig `yaml:"members"`
}

// MemberConfig is a batch of founding members.
type MemberConfig struct {
	Category string `yaml:"category"`
	Gender   string `yaml:"gender"`
	Count    int    `yaml:"count"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT         float64     // Seconds per tick
	LogLevel   slog.Level  // Parsed Log.Level
	TribeIndex map[int]int // tribe id -> index in Tribes
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// A tribes list in the file replaces the default tribes entirely.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Simulation.TicksPerSecond <= 0 {
		c.Simulation.TicksPerSecond = 1
	}
	c.Derived.DT = 1 / c.Simulation.TicksPerSecond

	if err := c.Derived.LogLevel.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}

	c.Derived.TribeIndex = make(map[int]int, len(c.Tribes))
	for i, t := range c.Tribes {
		if _, dup := c.Derived.TribeIndex[t.ID]; dup {
			return fmt.Errorf("tribe id %d defined twice", t.ID)
		}
		c.Derived.TribeIndex[t.ID] = i
	}
	return nil
}

// Recipes returns the recipe table: the file at Simulation.RecipesPath, or
// the embedded table when no path is set.
func (c *Config) Recipes() ([]byte, error) {
	if c.Simulation.RecipesPath == "" {
		return defaultRecipes, nil
	}
	data, err := os.ReadFile(c.Simulation.RecipesPath)
	if err != nil {
		return nil, fmt.Errorf("reading recipes: %w", err)
	}
	return data, nil
}

// Tribe returns the definition of a tribe by id.
func (c *Config) Tribe(id int) (*TribeConfig, bool) {
	i, ok := c.Derived.TribeIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Tribes[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// String renders the tribe for log lines.
func (t TribeConfig) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%s", t.ID, t.Name)
	if t.TribalRecipe != "" {
		fmt.Fprintf(&sb, " (%s)", t.TribalRecipe)
	}
	return sb.String()
}
