package engine

import (
	"errors"
	"testing"

	"github.com/pthm-cable/tribes/recipe"
)

func TestApplyEmptyRequirementsNeverBlocks(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Idle", Algorithm: "bogus();wait(3);bogus()"})
	node := nodeFor(t, e, "Idle", Concentrated)

	res := e.Apply(node, newFakeTribe())
	if res.Outcome != Suspended || res.NextStep != 2 {
		t.Fatalf("Apply() = %v@%d, want suspended@2", res.Outcome, res.NextStep)
	}
	if res.WaitSeconds != 3 {
		t.Errorf("WaitSeconds = %d, want 3", res.WaitSeconds)
	}

	res = e.Apply(node, newFakeTribe())
	if res.Outcome != Completed {
		t.Fatalf("Apply() = %v, want completed", res.Outcome)
	}
	if node.ResumeStep != 0 || node.NextRequirement != 0 {
		t.Errorf("completed node not reset: %+v", node)
	}
}

func TestApplyAllTrueStepsComplete(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Chores", Algorithm: "alterResource(wood,1);addKnowledge(fire);setBuffer(x);bogus()"})
	tribe := newFakeTribe()

	res := e.Apply(nodeFor(t, e, "Chores", Concentrated), tribe)
	if res.Outcome != Completed {
		t.Fatalf("Apply() = %v, want completed", res.Outcome)
	}
	if tribe.resources["wood"] != 1 || !tribe.knowledge["fire"] || tribe.buffers[BufferMain] != "x" {
		t.Errorf("steps did not all run: %+v", tribe)
	}
}

func TestApplyWaitAlone(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Nap", Algorithm: "wait(10)"})
	node := nodeFor(t, e, "Nap", Concentrated)

	if res := e.Apply(node, newFakeTribe()); res.Outcome != Suspended || res.NextStep != 1 {
		t.Fatalf("first Apply() = %v@%d, want suspended@1", res.Outcome, res.NextStep)
	}
	if res := e.Apply(node, newFakeTribe()); res.Outcome != Completed {
		t.Fatalf("second Apply() = %v, want completed", res.Outcome)
	}
}

func TestApplyCursorModes(t *testing.T) {
	row := recipe.Row{ID: 10, Name: "Village", Algorithm: "bogus()", Requirements: "resource(wood,5);resource(stone,5);resource(clay,5);"}

	tests := []struct {
		mode ResolutionMode
		want []int // cursor after each blocked apply
	}{
		{Concentrated, []int{0, 0, 0, 0}},
		{Distributed, []int{1, 2, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			e := testEngine(t, row)
			node := nodeFor(t, e, "Village", tt.mode)
			tribe := newFakeTribe()

			for i, want := range tt.want {
				res := e.Apply(node, tribe)
				if res.Outcome != Blocked {
					t.Fatalf("apply %d: outcome = %v, want blocked", i, res.Outcome)
				}
				if node.NextRequirement != want {
					t.Errorf("apply %d: cursor = %d, want %d", i, node.NextRequirement, want)
				}
			}
		})
	}
}

func TestApplyDistributedVisitsEveryRequirement(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Village", Algorithm: "bogus()", Requirements: "resource(wood,5);resource(stone,5);"})
	node := nodeFor(t, e, "Village", Distributed)
	tribe := newFakeTribe()

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		e.Apply(node, tribe)
		seen[tribe.buffers[BufferMain]] = true
	}
	if !seen["wood"] || !seen["stone"] {
		t.Errorf("distributed resolution corrected %v, want wood and stone", seen)
	}
}

func TestApplyConcentratedRechecksMetRequirements(t *testing.T) {
	e := testEngine(t, recipe.Row{
		ID:           10,
		Name:         "axe",
		Algorithm:    "alterResource(wood,-1);alterResource(flint,-1);alterResource(axe,1)",
		Requirements: "resource(wood,1);resource(flint,1);",
	})
	node := nodeFor(t, e, "axe", Concentrated)
	tribe := newFakeTribe()
	tribe.resources["wood"] = 1

	if res := e.Apply(node, tribe); res.Outcome != Blocked || node.NextRequirement != 1 {
		t.Fatalf("Apply() = %v cursor %d, want blocked cursor 1", res.Outcome, node.NextRequirement)
	}

	// Wood was spent elsewhere while flint arrived.
	tribe.resources["wood"] = 0
	tribe.resources["flint"] = 1
	res := e.Apply(node, tribe)
	if res.Outcome != Blocked || node.NextRequirement != 0 {
		t.Fatalf("Apply() = %v cursor %d, want blocked cursor 0", res.Outcome, node.NextRequirement)
	}
	if tribe.resources["wood"] != 0 || tribe.items["axe"] != 0 {
		t.Errorf("steps ran on an unmet requirement: wood=%d axe=%d", tribe.resources["wood"], tribe.items["axe"])
	}

	tribe.resources["wood"] = 1
	if res := e.Apply(node, tribe); res.Outcome != Completed {
		t.Fatalf("Apply() = %v, want completed", res.Outcome)
	}
	if tribe.resources["wood"] != 0 || tribe.resources["flint"] != 0 || tribe.items["axe"] != 1 {
		t.Errorf("resources = %v, items = %v", tribe.resources, tribe.items)
	}
}

func TestApplyResourceScenario(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Hut", Algorithm: "alterResource(wood,-5);addBuilding(hut)", Requirements: "resource(wood,5);"})
	node := nodeFor(t, e, "Hut", Concentrated)
	tribe := newFakeTribe()
	tribe.diggable["wood"] = true
	tribe.resources["wood"] = 2

	res := e.Apply(node, tribe)
	if res.Outcome != Blocked {
		t.Fatalf("Apply() = %v, want blocked", res.Outcome)
	}
	if names := injectedNames(res); len(names) != 1 || names[0] != RecipeDigResource {
		t.Fatalf("injections = %v, want [%s]", names, RecipeDigResource)
	}
	if tribe.buffers[BufferMain] != "wood" {
		t.Errorf("Buffer = %q, want wood", tribe.buffers[BufferMain])
	}

	tribe.resources["wood"] = 5
	res = e.Apply(node, tribe)
	if res.Outcome != Completed {
		t.Fatalf("Apply() = %v, want completed", res.Outcome)
	}
	if tribe.resources["wood"] != 0 {
		t.Errorf("wood = %d, want 0", tribe.resources["wood"])
	}
	if len(tribe.buildings) != 1 || tribe.buildings[0] != "hut" {
		t.Errorf("buildings = %v, want [hut]", tribe.buildings)
	}
}

func TestApplyRecipeRequirementDefersSteps(t *testing.T) {
	e := testEngine(t,
		recipe.Row{ID: 10, Name: "Scout", Algorithm: "explore()"},
		recipe.Row{ID: 11, Name: "Settle", Algorithm: "addBuilding(camp)", Requirements: "recipe(Scout,1);"},
	)
	node := nodeFor(t, e, "Settle", Concentrated)
	tribe := newFakeTribe()

	res := e.Apply(node, tribe)
	if res.Outcome != Suspended || res.NextStep != 0 {
		t.Fatalf("Apply() = %v@%d, want suspended@0", res.Outcome, res.NextStep)
	}
	if len(tribe.buildings) != 0 {
		t.Error("steps ran before the injected recipe")
	}

	res = e.Apply(node, tribe)
	if res.Outcome != Completed || len(res.Injections) != 0 {
		t.Fatalf("Apply() = %v with %v, want completed without injections", res.Outcome, injectedNames(res))
	}

	// Completion resets the node, so the next run fires again.
	res = e.Apply(node, tribe)
	if names := injectedNames(res); len(names) != 1 || names[0] != "Scout" {
		t.Errorf("injections after reset = %v, want [Scout]", names)
	}
}

func TestApplyUnknownOpcodeStopsAtStep(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Broken", Algorithm: "bogus();dance();addBuilding(hut)"})
	node := nodeFor(t, e, "Broken", Concentrated)
	tribe := newFakeTribe()

	res := e.Apply(node, tribe)
	if res.Outcome != Suspended || res.NextStep != 1 {
		t.Fatalf("Apply() = %v@%d, want suspended@1", res.Outcome, res.NextStep)
	}
	if !errors.Is(res.Err, ErrUnknownOpcode) {
		t.Errorf("Err = %v, want ErrUnknownOpcode", res.Err)
	}
	if len(tribe.buildings) != 0 {
		t.Error("execution continued past an unknown opcode")
	}
}

func TestApplyArityErrorSkipsStep(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Typo", Algorithm: "select(gender);addBuilding(hut)"})
	node := nodeFor(t, e, "Typo", Concentrated)
	tribe := newFakeTribe()

	res := e.Apply(node, tribe)
	if res.Outcome != Suspended || res.NextStep != 1 || res.Err != nil {
		t.Fatalf("Apply() = %v@%d err %v, want suspended@1 without error", res.Outcome, res.NextStep, res.Err)
	}
	if res = e.Apply(node, tribe); res.Outcome != Completed {
		t.Fatalf("Apply() = %v, want completed", res.Outcome)
	}
}

func TestApplyDepthGuardBlocks(t *testing.T) {
	e := testEngine(t,
		recipe.Row{ID: 10, Name: "Egg", Algorithm: "bogus()", Requirements: "knowledge(Chicken,1);"},
		recipe.Row{ID: 11, Name: "Chicken", Algorithm: "addKnowledge(Chicken)", Requirements: "knowledge(Egg,1);"},
	)
	tribe := newFakeTribe()

	// Walk the cycle, attaching each injection one level deeper.
	node := nodeFor(t, e, "Egg", Concentrated)
	for depth := 0; ; depth++ {
		res := e.Apply(node, tribe)
		if res.Outcome != Blocked {
			t.Fatalf("depth %d: Apply() = %v, want blocked", depth, res.Outcome)
		}
		if res.Err != nil {
			if !errors.Is(res.Err, ErrInjectionDepth) {
				t.Fatalf("Err = %v, want ErrInjectionDepth", res.Err)
			}
			if depth != DefaultConfig().MaxInjectionDepth {
				t.Errorf("cycle refused at depth %d, want %d", depth, DefaultConfig().MaxInjectionDepth)
			}
			return
		}
		if len(res.Injections) != 1 {
			t.Fatalf("depth %d: injections = %v", depth, injectedNames(res))
		}
		node = NewTreeNode(res.Injections[0].Recipe, res.Injections[0].Mode, node.Depth+1)
	}
}

func TestApplyConcurrentTribes(t *testing.T) {
	e := testEngine(t, recipe.Row{ID: 10, Name: "Hut", Algorithm: "alterResource(wood,-5);addBuilding(hut)", Requirements: "resource(wood,5);"})

	done := make(chan *fakeTribe)
	for i := 0; i < 8; i++ {
		go func() {
			tribe := newFakeTribe()
			tribe.resources["wood"] = 5
			r, _ := e.Catalog().FindByName("Hut")
			e.Apply(NewTreeNode(r, Concentrated, 0), tribe)
			done <- tribe
		}()
	}
	for i := 0; i < 8; i++ {
		if tribe := <-done; len(tribe.buildings) != 1 {
			t.Errorf("buildings = %v, want [hut]", tribe.buildings)
		}
	}
}
