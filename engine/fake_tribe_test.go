package engine

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/tribes/recipe"
)

// fakeTribe is an in-memory Tribe that records every effect.
type fakeTribe struct {
	id          int
	home        string
	buffers     map[string]string
	resources   map[string]int
	items       map[string]int
	knowledge   map[string]bool
	members     map[string]int
	memories    []Memory
	spots       map[string]Position
	buildings   []string
	perceptions []string
	agentBuffer map[AgentID]string
	agentMemory map[AgentID]Memory
	agents      map[string][]AgentID // "kind:qualifier" -> agents

	canGrow, shouldGrow bool
	diggable            map[string]bool
	reproductionCost    int
	neededResource      string
}

func newFakeTribe() *fakeTribe {
	return &fakeTribe{
		id:          1,
		home:        "hydlaa",
		buffers:     make(map[string]string),
		resources:   make(map[string]int),
		items:       make(map[string]int),
		knowledge:   make(map[string]bool),
		members:     make(map[string]int),
		spots:       make(map[string]Position),
		agentBuffer: make(map[AgentID]string),
		agentMemory: make(map[AgentID]Memory),
		agents:      make(map[string][]AgentID),
		diggable:    make(map[string]bool),
	}
}

func (t *fakeTribe) ID() int { return t.id }
func (t *fakeTribe) HomeSector() string { return t.home }
func (t *fakeTribe) Buffer(name string) string { return t.buffers[name] }
func (t *fakeTribe) SetBuffer(name, value string) { t.buffers[name] = value }
func (t *fakeTribe) ReproductionCost() int { return t.reproductionCost }
func (t *fakeTribe) NeededResource() string { return t.neededResource }
func (t *fakeTribe) AddResource(name string, d int) { t.resources[name] += d }
func (t *fakeTribe) AddItem(name string, d int)     { t.items[name] += d }
func (t *fakeTribe) IsDiggable(resource string) bool {
	return t.diggable[resource]
}
func (t *fakeTribe) CheckResource(name string, q int) bool { return t.resources[name] >= q }
func (t *fakeTribe) CheckItems(name string, q int) bool { return t.items[name] >= q }
func (t *fakeTribe) CheckKnowledge(name string) bool { return t.knowledge[name] }
func (t *fakeTribe) AddKnowledge(name string) { t.knowledge[name] = true }
func (t *fakeTribe) CheckMembers(c string, q int) bool { return t.members[c] >= q }
func (t *fakeTribe) CanGrow() bool { return t.canGrow }
func (t *fakeTribe) ShouldGrow() bool { return t.shouldGrow }

func (t *fakeTribe) FindMemory(name string) bool {
	for _, m := range t.memories {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (t *fakeTribe) AddMemory(m Memory) { t.memories = append(t.memories, m) }

func (t *fakeTribe) LoadMemoryBuffer(name string, agents []AgentID) bool {
	for _, m := range t.memories {
		if m.Name == name {
			t.SetMemoryBuffer(m, agents)
			return true
		}
	}
	return false
}

func (t *fakeTribe) SetMemoryBuffer(m Memory, agents []AgentID) {
	for _, a := range agents {
		t.agentMemory[a] = m
	}
}

func (t *fakeTribe) ReserveBuildingSpot(name string, pos Position) { t.spots[name] = pos }

func (t *fakeTribe) ClaimBuildingSpot(name string) (Position, bool) {
	pos, ok := t.spots[name]
	delete(t.spots, name)
	return pos, ok
}

func (t *fakeTribe) SpawnBuilding(name string) { t.buildings = append(t.buildings, name) }

func (t *fakeTribe) SelectAgents(kind, qualifier string) []AgentID {
	return t.agents[kind+":"+qualifier]
}

func (t *fakeTribe) SetAgentBuffer(agents []AgentID, value string) {
	for _, a := range agents {
		t.agentBuffer[a] = value
	}
}

func (t *fakeTribe) SendPerception(event string, agents []AgentID) {
	t.perceptions = append(t.perceptions, fmt.Sprintf("%s%v", event, agents))
}

// testCatalog builds a catalog holding the generic recipes the planner
// injects plus any extra rows.
func testCatalog(t *testing.T, extra ...recipe.Row) *recipe.Catalog {
	t.Helper()
	rows := []recipe.Row{
		{ID: 1, Name: RecipeDigResource, Algorithm: "select(any,1);locateResource(BUFFER);mine();wait(5);alterResource(BUFFER,1)"},
		{ID: 2, Name: RecipeGatherResource, Algorithm: "select(any,1);locateResource(BUFFER);gather();wait(5);alterResource(BUFFER,1)"},
		{ID: 3, Name: RecipeExplore, Algorithm: "select(any,1);explore();wait(10)"},
		{ID: 4, Name: RecipeMate, Algorithm: "select(any,2);mate();wait(20)"},
	}
	rows = append(rows, extra...)
	c, err := recipe.NewCatalog(rows)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func testEngine(t *testing.T, extra ...recipe.Row) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testCatalog(t, extra...), DefaultConfig(), logger)
}

func nodeFor(t *testing.T, e *Engine, name string, mode ResolutionMode) *TreeNode {
	t.Helper()
	r, ok := e.Catalog().FindByName(name)
	if !ok {
		t.Fatalf("recipe %q not in catalog", name)
	}
	return NewTreeNode(r, mode, 0)
}

func injectedNames(res Result) []string {
	names := make([]string, len(res.Injections))
	for i, inj := range res.Injections {
		names[i] = inj.Recipe.Name
	}
	return names
}
