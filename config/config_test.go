package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/tribes/recipe"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.MaxInjectionDepth != 16 || cfg.Engine.BasicRecipeThreshold != 5 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Derived.DT != 1 {
		t.Errorf("DT = %v, want 1", cfg.Derived.DT)
	}
	if cfg.Derived.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.Derived.LogLevel)
	}
	if len(cfg.Tribes) != 2 {
		t.Fatalf("len(Tribes) = %d, want 2", len(cfg.Tribes))
	}
	tr, ok := cfg.Tribe(2)
	if !ok || tr.Name != "Ashclaw" || tr.Home != [3]float64{-120, 0, 45} {
		t.Errorf("Tribe(2) = %+v, %v", tr, ok)
	}
	if _, ok := cfg.Tribe(99); ok {
		t.Error("Tribe(99) should not exist")
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tribes.yaml")
	data := []byte(`
simulation:
  ticks_per_second: 4
log:
  level: debug
tribes:
  - id: 7
    name: Lone
    tribal_recipe: Tribal Builders
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Derived.DT != 0.25 {
		t.Errorf("DT = %v, want 0.25", cfg.Derived.DT)
	}
	if cfg.Derived.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.Derived.LogLevel)
	}
	// Untouched sections keep their defaults.
	if cfg.Telemetry.StatsWindowTicks != 60 {
		t.Errorf("StatsWindowTicks = %d, want default 60", cfg.Telemetry.StatsWindowTicks)
	}
	if len(cfg.Tribes) != 1 || cfg.Tribes[0].ID != 7 {
		t.Errorf("Tribes = %v", cfg.Tribes)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "log:\n  level: chatty\n"},
		{"duplicate tribe", "tribes:\n  - id: 1\n  - id: 1\n"},
		{"bad yaml", "engine: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestEmbeddedRecipesLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	data, err := cfg.Recipes()
	if err != nil {
		t.Fatalf("Recipes() error = %v", err)
	}
	catalog, err := recipe.LoadCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	for _, tr := range cfg.Tribes {
		if _, ok := catalog.FindByName(tr.TribalRecipe); !ok {
			t.Errorf("tribe %s: tribal recipe %q missing", tr, tr.TribalRecipe)
		}
	}
	for _, name := range []string{"Dig Resource", "Gather Resource", "Explore", "mate"} {
		if _, ok := catalog.FindByName(name); !ok {
			t.Errorf("generic recipe %q missing", name)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written) error = %v", err)
	}
	if len(back.Tribes) != len(cfg.Tribes) || back.Engine != cfg.Engine {
		t.Errorf("round trip changed config: %+v", back.Engine)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() did not panic")
		}
	}()
	Cfg()
}
