package game

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/tribes/components"
	"github.com/pthm-cable/tribes/config"
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/recipe"
	"github.com/pthm-cable/tribes/telemetry"
	"github.com/pthm-cable/tribes/tribe"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func testCatalog(t *testing.T, cfg *config.Config) *recipe.Catalog {
	t.Helper()
	data, err := cfg.Recipes()
	if err != nil {
		t.Fatalf("Recipes: %v", err)
	}
	catalog, err := recipe.LoadCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	return catalog
}

// newTestGame builds a game from the embedded defaults. The caller unloads it.
func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	cfg := testConfig(t)
	g, err := NewGameWithOptions(cfg, testCatalog(t, cfg), opts, discardLogger)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	return g
}

func TestNewGameFoundsTribes(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()

	if len(g.Tribes()) != 2 {
		t.Fatalf("tribes = %d, want 2", len(g.Tribes()))
	}
	raiders, ok := g.Tribe(2)
	if !ok {
		t.Fatal("tribe 2 not found")
	}
	if raiders.Name() != "Ashclaw" {
		t.Errorf("name = %q, want Ashclaw", raiders.Name())
	}
	if raiders.MemberCount() != 4 {
		t.Errorf("members = %d, want 4", raiders.MemberCount())
	}
	if raiders.NPCType() == "" {
		t.Error("empty NPC type")
	}
	if _, ok := g.Tribe(99); ok {
		t.Error("found tribe 99")
	}
	if _, ok := g.LastReport(1); ok {
		t.Error("report before the first tick")
	}
}

func TestNewGameUnknownTribalRecipe(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tribes[0].TribalRecipe = "Tribal Nomads"

	_, err := NewGameWithOptions(cfg, testCatalog(t, cfg), DefaultOptions(), discardLogger)
	if !errors.Is(err, tribe.ErrNoTribalRecipe) {
		t.Fatalf("err = %v, want ErrNoTribalRecipe", err)
	}
}

func TestDefinition(t *testing.T) {
	tc := config.TribeConfig{
		ID:                   7,
		Name:                 "Reedfolk",
		TribalRecipe:         "Tribal Builders",
		HomeSector:           "marsh",
		Home:                 [3]float64{1.5, 2, -3},
		MaxSize:              6,
		ReproductionCost:     2,
		ReproductionResource: "fish",
		Resources:            map[string]int{"fish": 4},
		Knowledge:            []string{"fire"},
		Members: []config.MemberConfig{
			{Category: "fisher", Gender: "female", Count: 2},
		},
	}

	def := definition(tc)
	if def.ID != 7 || def.Name != "Reedfolk" || def.HomeSector != "marsh" {
		t.Errorf("identity = %d %q %q", def.ID, def.Name, def.HomeSector)
	}
	want := engine.Position{X: 1.5, Y: 2, Z: -3}
	if def.Home != want {
		t.Errorf("home = %+v, want %+v", def.Home, want)
	}
	if def.ReproductionResource != "fish" || def.Resources["fish"] != 4 {
		t.Errorf("resources = %v %q", def.Resources, def.ReproductionResource)
	}
	if len(def.Members) != 1 || def.Members[0].Category != "fisher" || def.Members[0].Count != 2 {
		t.Errorf("members = %+v", def.Members)
	}
}

func TestReactGatherCreditsResource(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()
	ts := g.tribes[0]
	tr := ts.tribe

	berries := engine.Position{X: 50, Z: 50}
	tr.AddMemory(engine.Memory{Name: "berries", Pos: berries, Sector: tr.HomeSector(), Radius: 10})
	if !tr.LoadMemoryBuffer("berries", []engine.AgentID{1}) {
		t.Fatal("memory not loaded")
	}

	g.react(ts, tribe.Perception{Event: EventGather, Agents: []engine.AgentID{1}, Buffer: "berries"})

	if pos, _ := tr.Position(1); pos != berries {
		t.Errorf("gatherer at %+v, want %+v", pos, berries)
	}
	task, _ := tr.Task(1)
	if task.Kind != components.TaskGather || task.Buffer != "berries" {
		t.Fatalf("task = %+v", task)
	}

	seconds := int(g.cfg.Simulation.TaskSeconds / g.dt)
	for i := 0; i < seconds-1; i++ {
		g.updateTasks(ts)
	}
	if tr.Resource("berries") != 0 {
		t.Fatalf("berries credited early: %d", tr.Resource("berries"))
	}
	g.updateTasks(ts)

	if tr.Resource("berries") != 1 {
		t.Errorf("berries = %d, want 1", tr.Resource("berries"))
	}
	if pos, _ := tr.Position(1); pos != tr.HomePosition() {
		t.Errorf("gatherer at %+v, want home", pos)
	}
}

func TestReactExploreRecordsMemory(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()
	ts := g.tribes[0]
	tr := ts.tribe

	g.react(ts, tribe.Perception{Event: EventExplore, Agents: []engine.AgentID{3}, Buffer: "flint"})

	pos, _ := tr.Position(3)
	home := tr.HomePosition()
	dx, dz := float64(pos.X-home.X), float64(pos.Z-home.Z)
	if r := g.cfg.Simulation.ExploreRadius; dx*dx+dz*dz > r*r+1e-3 {
		t.Errorf("explorer wandered to %+v, beyond radius %v", pos, r)
	}

	for i := 0; i < int(g.cfg.Simulation.TaskSeconds/g.dt); i++ {
		g.updateTasks(ts)
	}
	if !tr.FindMemory("flint") {
		t.Error("explorer left no flint memory")
	}
	if pos, _ := tr.Position(3); pos != home {
		t.Errorf("explorer at %+v, want home", pos)
	}
}

func TestReactWorkUsesAgentBuffer(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()
	ts := g.tribes[0]
	tr := ts.tribe

	tr.SetAgentBuffer([]engine.AgentID{4}, "3")
	g.react(ts, tribe.Perception{Event: EventWork, Agents: []engine.AgentID{4}})

	task, _ := tr.Task(4)
	if task.Kind != components.TaskWork || task.Remaining != 3 {
		t.Fatalf("task = %+v, want work for 3s", task)
	}
	for i := 0; i < 3; i++ {
		g.updateTasks(ts)
	}
	if task, _ := tr.Task(4); task.Kind != components.TaskIdle {
		t.Errorf("task = %v after work ended", task.Kind)
	}
}

func TestReactBreed(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()
	ts := g.tribes[0]
	tr := ts.tribe
	parents := []engine.AgentID{1, 4}

	// Two food against a cost of four.
	g.react(ts, tribe.Perception{Event: EventBreed, Agents: parents, Buffer: "builder"})
	if tr.MemberCount() != 5 {
		t.Fatalf("members = %d, want 5 without resources", tr.MemberCount())
	}

	tr.AddResource("food", 3)
	g.react(ts, tribe.Perception{Event: EventBreed, Agents: parents, Buffer: "builder"})

	if tr.MemberCount() != 6 {
		t.Fatalf("members = %d, want 6", tr.MemberCount())
	}
	if tr.Resource("food") != 1 {
		t.Errorf("food = %d, want 1", tr.Resource("food"))
	}
	if tr.CountMembers("builder") != 3 {
		t.Errorf("builders = %d, want 3", tr.CountMembers("builder"))
	}
	if task, _ := tr.Task(1); task.Kind != components.TaskBreed {
		t.Errorf("parent task = %v, want breed", task.Kind)
	}
	if stats := ts.collector.Flush(0, telemetry.Gauges{}); stats.Births != 1 {
		t.Errorf("births = %d, want 1", stats.Births)
	}
}

func TestReactAttackAndUnknown(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()
	ts := g.tribes[1]
	tr := ts.tribe

	g.react(ts, tribe.Perception{Event: EventAttack, Agents: []engine.AgentID{1, 2}, Buffer: "Stonefolk", Amount: "2"})
	if task, _ := tr.Task(2); task.Kind != components.TaskAttack {
		t.Errorf("task = %v, want attack", task.Kind)
	}

	g.react(ts, tribe.Perception{Event: "tribe:dance", Agents: []engine.AgentID{3}})
	if task, _ := tr.Task(3); task.Kind != components.TaskIdle {
		t.Errorf("unknown event assigned %v", task.Kind)
	}
}

func TestHeadlessRunMakesProgress(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()

	completed := make(map[int]int)
	windows := 0
	g.SetStatsCallback(func(s telemetry.WindowStats) {
		completed[s.Tribe] += s.Completed
		windows++
	})

	for g.Tick() < 300 {
		g.UpdateHeadless()
	}

	if g.Now() != 299 {
		t.Errorf("now = %v, want 299", g.Now())
	}
	if windows != 10 {
		t.Errorf("windows = %d, want 10", windows)
	}
	for _, id := range []int{1, 2} {
		if completed[id] == 0 {
			t.Errorf("tribe %d completed no recipes", id)
		}
		if _, ok := g.LastReport(id); !ok {
			t.Errorf("tribe %d has no report", id)
		}
	}

	builders, _ := g.Tribe(1)
	if !builders.FindMemory("wood") {
		t.Error("builders never found wood")
	}
	raiders, _ := g.Tribe(2)
	if !raiders.FindMemory("work") {
		t.Error("raiders never loaded the quarry site")
	}
}

func TestHeadlessRunIsDeterministic(t *testing.T) {
	run := func(workers int) *telemetry.Snapshot {
		opts := DefaultOptions()
		opts.Seed = 42
		opts.Workers = workers
		g := newTestGame(t, opts)
		defer g.Unload()
		for g.Tick() < 200 {
			g.UpdateHeadless()
		}
		return g.Snapshot(nil)
	}

	serial, pooled := run(1), run(4)
	for i := range serial.Tribes {
		a, b := serial.Tribes[i], pooled.Tribes[i]
		if len(a.Members) != len(b.Members) {
			t.Errorf("tribe %d: members %d vs %d", a.ID, len(a.Members), len(b.Members))
		}
		if len(a.Memories) != len(b.Memories) {
			t.Errorf("tribe %d: memories %d vs %d", a.ID, len(a.Memories), len(b.Memories))
		}
		if len(a.Pending) != len(b.Pending) {
			t.Errorf("tribe %d: pending %d vs %d", a.ID, len(a.Pending), len(b.Pending))
		}
		for name, n := range a.Resources {
			if b.Resources[name] != n {
				t.Errorf("tribe %d: %s %d vs %d", a.ID, name, n, b.Resources[name])
			}
		}
	}
}

func TestHeadlessRunWritesOutput(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Trace = true
	opts.StatsWindowTicks = 10

	g := newTestGame(t, opts)
	for g.Tick() < 50 {
		g.UpdateHeadless()
	}
	g.Unload()

	for _, name := range []string{"config.yaml", "stats.csv", "perf.csv", "trace.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus five windows for each of two tribes.
	if len(lines) != 11 {
		t.Errorf("stats lines = %d, want 11", len(lines))
	}

	trace, err := os.ReadFile(filepath.Join(dir, "trace.csv"))
	if err != nil {
		t.Fatalf("reading trace: %v", err)
	}
	if n := strings.Count(string(trace), "\n"); n < 2 {
		t.Errorf("trace lines = %d, want header and records", n)
	}

	snap, err := telemetry.LoadSnapshot(filepath.Join(dir, "snapshots", "snapshot_50.json"))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Tick != 50 || len(snap.Tribes) != 2 {
		t.Errorf("snapshot tick %d with %d tribes", snap.Tick, len(snap.Tribes))
	}
}
