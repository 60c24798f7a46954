package engine

import (
	"strconv"

	"github.com/pthm-cable/tribes/recipe"
)

// Step executes one algorithm entry against the frame's tribe. Placeholders
// are substituted in the whole call before its arguments are split.
// It reports false when execution must stop at this step for this tick.
func (e *Engine) Step(f *Frame, step recipe.Step) bool {
	call := Substitute(step.Text, f.Tribe)
	name, args := recipe.SplitCall(call)

	info, ok := e.ops.Get(step.Op)
	if !ok {
		err := &UnsupportedOpcodeError{
			Recipe:     f.Node.Recipe.Name,
			Step:       f.step,
			Name:       name,
			Suggestion: recipe.Closest(name, e.ops.Names()),
		}
		e.logger.Error("unsupported opcode",
			"tribe", f.Tribe.ID(),
			"recipe", f.Node.Recipe.Name,
			"step", f.step,
			"opcode", name,
			"suggestion", err.Suggestion,
		)
		f.fail(err)
		return false
	}

	if len(args) < info.MinArgs || len(args) > info.MaxArgs {
		err := &ArityError{
			Recipe:   f.Node.Recipe.Name,
			Opcode:   name,
			Expected: info.Arity(),
			Actual:   len(args),
		}
		e.logger.Error("opcode arity mismatch",
			"tribe", f.Tribe.ID(),
			"recipe", err.Recipe,
			"opcode", err.Opcode,
			"expected", err.Expected,
			"actual", err.Actual,
			"error", err,
		)
		return false
	}

	return info.run(e, f, args)
}

// opAlterResource credits the item ledger when a recipe of that name produces
// the thing, and the resource ledger otherwise.
func opAlterResource(e *Engine, f *Frame, args []string) bool {
	name, delta := args[0], Atoi(args[1])
	if _, ok := e.catalog.FindByName(name); ok {
		f.Tribe.AddItem(name, delta)
		return true
	}
	f.Tribe.AddResource(name, delta)
	return true
}

func opAddKnowledge(e *Engine, f *Frame, args []string) bool {
	f.Tribe.AddKnowledge(args[0])
	return true
}

// opLoadLocation always records the location under the name "work";
// the fourth argument is accepted for compatibility and ignored.
func opLoadLocation(e *Engine, f *Frame, args []string) bool {
	f.Tribe.AddMemory(Memory{
		Name:   "work",
		Pos:    Position{X: atof32(args[0]), Y: atof32(args[1]), Z: atof32(args[2])},
		Sector: f.Tribe.HomeSector(),
		Radius: e.cfg.WorkMemoryRadius,
	})
	return true
}

func opLocateMemory(e *Engine, f *Frame, args []string) bool {
	if f.Tribe.LoadMemoryBuffer(args[0], f.Selected) {
		return true
	}
	// No such memory, explore for it.
	f.Tribe.SetBuffer(BufferMain, args[0])
	e.inject(f, RecipeExplore, Concentrated, "locate "+args[0])
	return false
}

func opLocateBuildingSpot(e *Engine, f *Frame, args []string) bool {
	pos, ok := f.Tribe.ClaimBuildingSpot(args[0])
	if !ok {
		return false
	}
	f.Tribe.SetMemoryBuffer(Memory{
		Name:   args[0],
		Pos:    pos,
		Sector: f.Tribe.HomeSector(),
		Radius: e.cfg.BuildingMemoryRadius,
	}, f.Selected)
	return true
}

func opReserveSpot(e *Engine, f *Frame, args []string) bool {
	pos := Position{X: atof32(args[0]), Y: atof32(args[1]), Z: atof32(args[2])}
	f.Tribe.ReserveBuildingSpot(args[3], pos)
	return true
}

func opAddBuilding(e *Engine, f *Frame, args []string) bool {
	f.Tribe.SpawnBuilding(args[0])
	return true
}

func opWait(e *Engine, f *Frame, args []string) bool {
	f.effects.WaitSeconds = Atoi(args[0])
	return false
}

// opLoadRecipe always stops so the loaded recipe runs before the following steps.
func opLoadRecipe(e *Engine, f *Frame, args []string) bool {
	mode := Concentrated
	if len(args) == 2 {
		mode = ParseMode(args[1])
	}
	e.inject(f, args[0], mode, "loadRecipe")
	return false
}

func opLoadCyclicRecipe(e *Engine, f *Frame, args []string) bool {
	r, ok := e.lookup(f, args[0])
	if !ok {
		return true
	}
	f.effects.Cyclic = append(f.effects.Cyclic, CyclicRequest{Recipe: r, PeriodSeconds: Atoi(args[1])})
	return true
}

func opBogus(e *Engine, f *Frame, args []string) bool {
	return true
}

func opSelect(e *Engine, f *Frame, args []string) bool {
	f.Selected = f.Tribe.SelectAgents(args[0], args[1])
	return true
}

func opGoWork(e *Engine, f *Frame, args []string) bool {
	duration := strconv.Itoa(Atoi(args[0]))
	f.Tribe.SetAgentBuffer(f.Selected, duration)
	f.Tribe.SendPerception("tribe:work", f.Selected)
	return true
}

func perceive(event string) opFunc {
	return func(e *Engine, f *Frame, args []string) bool {
		f.Tribe.SendPerception(event, f.Selected)
		return true
	}
}

func setBuffer(buffer string) opFunc {
	return func(e *Engine, f *Frame, args []string) bool {
		f.Tribe.SetBuffer(buffer, args[0])
		return true
	}
}
