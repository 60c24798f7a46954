// Package engine interprets tribe recipes: it resolves a recipe's requirements,
// queuing corrective sub-recipes when they are unmet, and executes its
// algorithm one opcode at a time with suspension and resumption across ticks.
//
// The engine holds no tribe state. Each Apply call runs synchronously against
// one TreeNode and reports what the caller must change in the tribe's pending
// recipes. Different tribes may be applied in parallel because the catalog is
// read-only.
package engine

import (
	"log/slog"

	"github.com/pthm-cable/tribes/recipe"
)

// Config holds engine tunables.
type Config struct {
	BasicRecipeThreshold int     // recipe ids below this never inject on missing members
	MaxInjectionDepth    int     // deepest prerequisite chain allowed
	WorkMemoryRadius     float32 // radius of memories recorded by loadLocation
	BuildingMemoryRadius float32 // radius of memories built by locateBuildingSpot
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		BasicRecipeThreshold: 5,
		MaxInjectionDepth:    16,
		WorkMemoryRadius:     10,
		BuildingMemoryRadius: 20,
	}
}

// Engine applies recipes from one catalog.
type Engine struct {
	catalog *recipe.Catalog
	cfg     Config
	ops     *OpcodeRegistry
	logger  *slog.Logger
}

// New creates an engine. A nil logger uses slog.Default().
func New(catalog *recipe.Catalog, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxInjectionDepth <= 0 {
		cfg.MaxInjectionDepth = DefaultConfig().MaxInjectionDepth
	}
	return &Engine{
		catalog: catalog,
		cfg:     cfg,
		ops:     NewOpcodeRegistry(),
		logger:  logger,
	}
}

// Catalog returns the engine's recipe catalog.
func (e *Engine) Catalog() *recipe.Catalog {
	return e.catalog
}

// Opcodes returns the interpreter's dispatch table.
func (e *Engine) Opcodes() *OpcodeRegistry {
	return e.ops
}

// Frame is the state of one Apply call.
type Frame struct {
	Node     *TreeNode
	Tribe    Tribe
	Selected []AgentID // working agents chosen by select()

	step    int
	effects Effects
}

// NewFrame starts a frame for node against tribe.
func NewFrame(node *TreeNode, tribe Tribe) *Frame {
	return &Frame{Node: node, Tribe: tribe}
}

// Effects returns what the frame has asked the caller to do so far.
func (f *Frame) Effects() Effects {
	return f.effects
}

func (f *Frame) fail(err error) {
	if f.effects.Err == nil {
		f.effects.Err = err
	}
}

func (f *Frame) result(o Outcome, next int) Result {
	return Result{Outcome: o, NextStep: next, Effects: f.effects}
}

// Apply drives node one tick: requirements first (from the cursor only in
// distributed mode), then algorithm steps from its resume point.
func (e *Engine) Apply(node *TreeNode, tribe Tribe) Result {
	f := NewFrame(node, tribe)
	r := node.Recipe

	reqs := r.Requirements
	if node.NextRequirement >= len(reqs) {
		node.NextRequirement = 0
	}
	// Concentrated nodes recheck every requirement each tick; only the
	// distributed cursor carries over.
	start := 0
	if node.Mode == Distributed {
		start = node.NextRequirement
	}
	for i := start; i < len(reqs); i++ {
		if e.Resolve(f, i) {
			node.NextRequirement = i + 1
			continue
		}
		if node.Mode == Distributed {
			node.NextRequirement = (i + 1) % len(reqs)
		} else {
			node.NextRequirement = i
		}
		return f.result(Blocked, node.ResumeStep)
	}
	node.NextRequirement = 0

	if f.effects.Err != nil {
		return f.result(Blocked, node.ResumeStep)
	}
	// Prerequisites queued by a passing requirement run before any step.
	if len(f.effects.Injections) > 0 {
		return f.result(Suspended, node.ResumeStep)
	}

	for i := node.ResumeStep; i < len(r.Algorithm); i++ {
		f.step = i
		if e.Step(f, r.Algorithm[i]) {
			continue
		}
		next := i + 1
		if f.effects.Err != nil {
			// Never step past an opcode that could not run.
			next = i
		}
		node.ResumeStep = next
		return f.result(Suspended, next)
	}

	node.reset()
	return f.result(Completed, 0)
}

// lookup finds a recipe by name, logging misses with the closest known name.
func (e *Engine) lookup(f *Frame, name string) (*recipe.Recipe, bool) {
	r, ok := e.catalog.FindByName(name)
	if !ok {
		e.logger.Warn("recipe not found",
			"tribe", f.Tribe.ID(),
			"recipe", name,
			"from", f.Node.Recipe.Name,
			"suggestion", e.catalog.Suggest(name),
		)
	}
	return r, ok
}

// inject queues name as a prerequisite of the frame's node.
func (e *Engine) inject(f *Frame, name string, mode ResolutionMode, reason string) bool {
	r, ok := e.lookup(f, name)
	if !ok {
		return false
	}

	depth := f.Node.Depth + 1
	if depth > e.cfg.MaxInjectionDepth {
		err := &InjectionDepthError{
			Recipe: name,
			From:   f.Node.Recipe.Name,
			Depth:  depth,
			Limit:  e.cfg.MaxInjectionDepth,
		}
		e.logger.Error("injection refused", "tribe", f.Tribe.ID(), "error", err)
		f.fail(err)
		return false
	}

	f.effects.Injections = append(f.effects.Injections, Injection{Recipe: r, Mode: mode, Reason: reason})
	return true
}
