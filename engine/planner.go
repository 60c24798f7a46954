package engine

import (
	"github.com/pthm-cable/tribes/recipe"
)

// Names of the generic recipes the planner injects.
const (
	RecipeMate           = "mate"
	RecipeExplore        = "Explore"
	RecipeDigResource    = "Dig Resource"
	RecipeGatherResource = "Gather Resource"

	// Any memory requirement is also met by a known mine.
	fallbackMemory = "mine"
)

// Resolve checks requirement index of the frame's recipe against the tribe.
// It reports true when the requirement is met now. On false, corrective
// recipes may have been queued in the frame's injections.
func (e *Engine) Resolve(f *Frame, index int) bool {
	req := f.Node.Recipe.Requirements[index]
	name := Substitute(req.Name, f.Tribe)
	quantity := Atoi(Substitute(req.Quantity, f.Tribe))

	switch req.Kind {
	case recipe.KindTribesman:
		return e.resolveTribesman(f, name, quantity)

	case recipe.KindResource:
		if f.Tribe.CheckResource(name, quantity) {
			return true
		}
		f.Tribe.SetBuffer(BufferMain, name)
		e.injectCollect(f, name)
		return false

	case recipe.KindItem:
		if f.Tribe.CheckItems(name, quantity) {
			return true
		}
		// quantity production runs, whatever is already held.
		for i := 0; i < quantity; i++ {
			if !e.inject(f, name, Concentrated, "item "+name) {
				break
			}
		}
		return false

	case recipe.KindKnowledge:
		if f.Tribe.CheckKnowledge(name) {
			return true
		}
		e.inject(f, name, Concentrated, "knowledge "+name)
		return false

	case recipe.KindRecipe:
		// Fire-and-continue: the named recipe is queued but never gates this one.
		if !f.Node.fired[index] {
			if e.inject(f, name, Concentrated, "recipe "+name) {
				if f.Node.fired == nil {
					f.Node.fired = make(map[int]bool)
				}
				f.Node.fired[index] = true
			}
		}
		return true

	case recipe.KindMemory:
		if f.Tribe.FindMemory(name) || f.Tribe.FindMemory(fallbackMemory) {
			return true
		}
		e.inject(f, RecipeExplore, Concentrated, "memory "+name)
		return false

	default:
		e.logger.Error("unsupported requirement",
			"tribe", f.Tribe.ID(),
			"recipe", f.Node.Recipe.Name,
			"requirement", req.String(),
		)
		f.fail(ErrUnsupportedRequirement)
		return false
	}
}

func (e *Engine) resolveTribesman(f *Frame, name string, quantity int) bool {
	if f.Tribe.CheckMembers(name, quantity) {
		return true
	}

	// Basic recipes just wait for members to free up.
	if f.Node.Recipe.IsBasic(e.cfg.BasicRecipeThreshold) {
		return false
	}

	switch {
	case f.Tribe.CanGrow() && f.Tribe.ShouldGrow():
		f.Tribe.SetBuffer(BufferMain, name)
		e.inject(f, RecipeMate, Concentrated, "tribesman "+name)
	case f.Tribe.ShouldGrow():
		// Not enough to reproduce yet, collect what reproduction needs.
		needed := f.Tribe.NeededResource()
		f.Tribe.SetBuffer(BufferMain, needed)
		e.injectCollect(f, needed)
	}
	return false
}

func (e *Engine) injectCollect(f *Frame, resource string) {
	if f.Tribe.IsDiggable(resource) {
		e.inject(f, RecipeDigResource, Concentrated, "resource "+resource)
		return
	}
	e.inject(f, RecipeGatherResource, Concentrated, "resource "+resource)
}
