// Package tribe is the reference collaborator of the recipe engine: a tribe
// with ledgers, memories, members stored as ECS entities and a tree of
// pending recipes that it feeds to the engine once per tick.
package tribe

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tribes/components"
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/recipe"
)

// ErrNoTribalRecipe is returned when a tribe's tribal recipe is not in the catalog.
var ErrNoTribalRecipe = errors.New("tribal recipe not found")

// Selection kinds with special meaning in select(kind,qualifier).
const (
	SelectAny    = "any"
	SelectGender = "gender"
)

// MemberGroup is a batch of identical founding members.
type MemberGroup struct {
	Category string
	Gender   string
	Count    int
}

// Definition is everything needed to found a tribe.
type Definition struct {
	ID                   int
	Name                 string
	TribalRecipe         string
	HomeSector           string
	Home                 engine.Position
	MaxSize              int
	ReproductionCost     int
	ReproductionResource string
	Resources            map[string]int
	Items                map[string]int
	Knowledge            []string
	Diggable             []string
	Members              []MemberGroup
}

// Perception is an event sent to a set of members, with the tribe buffers
// as they were when it was sent.
type Perception struct {
	Event  string
	Agents []engine.AgentID
	Buffer string
	Amount string
}

// Tribe implements engine.Tribe. It is not safe for concurrent use; distinct
// tribes share nothing and may be advanced in parallel.
type Tribe struct {
	id      int
	name    string
	home    string
	homePos engine.Position
	config  *Configuration
	npcType string
	logger  *slog.Logger
	rng     *rand.Rand

	// Members and buildings
	world       *ecs.World
	memberMap   *ecs.Map3[components.Member, components.Position, components.Task]
	members     *ecs.Map[components.Member]
	positions   *ecs.Map[components.Position]
	tasks       *ecs.Map[components.Task]
	recalls     *ecs.Map[components.Recall]
	busy        *ecs.Map[components.Busy]
	buildingMap *ecs.Map2[components.Building, components.Position]
	memberQuery ecs.Filter1[components.Member]
	taskQuery   ecs.Filter2[components.Member, components.Task]
	agents      map[engine.AgentID]ecs.Entity
	nextAgent   engine.AgentID

	// Ledgers
	resources map[string]int
	items     map[string]int
	knowledge map[string]bool
	memories  []engine.Memory
	spots     map[string]engine.Position
	buffers   map[string]string
	diggable  map[string]bool
	buildings map[string]int

	maxSize              int
	reproductionCost     int
	reproductionResource string

	pending     *Pending
	cyclic      *cyclicSet
	perceptions []Perception
}

// New founds a tribe from def. The tribal recipe is looked up in catalog
// and turned into a Configuration and NPC-type descriptor; every recipe it
// loads is attached as top-level pending work in order.
func New(catalog *recipe.Catalog, def Definition, rng *rand.Rand, logger *slog.Logger) (*Tribe, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("tribe", def.ID)

	tribal, ok := catalog.FindByName(def.TribalRecipe)
	if !ok {
		return nil, fmt.Errorf("tribe %d: %w: %q", def.ID, ErrNoTribalRecipe, def.TribalRecipe)
	}
	cfg, err := ParseConfiguration(def.ID, tribal)
	if err != nil {
		return nil, err
	}
	npcType, err := cfg.Descriptor()
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	t := &Tribe{
		id:          def.ID,
		name:        def.Name,
		home:        def.HomeSector,
		homePos:     def.Home,
		config:      cfg,
		npcType:     npcType,
		logger:      logger,
		rng:         rng,
		world:       world,
		memberMap:   ecs.NewMap3[components.Member, components.Position, components.Task](world),
		members:     ecs.NewMap[components.Member](world),
		positions:   ecs.NewMap[components.Position](world),
		tasks:       ecs.NewMap[components.Task](world),
		recalls:     ecs.NewMap[components.Recall](world),
		busy:        ecs.NewMap[components.Busy](world),
		buildingMap: ecs.NewMap2[components.Building, components.Position](world),
		memberQuery: *ecs.NewFilter1[components.Member](world),
		taskQuery:   *ecs.NewFilter2[components.Member, components.Task](world),
		agents:      make(map[engine.AgentID]ecs.Entity),
		nextAgent:   1,

		resources: copyCounts(def.Resources),
		items:     copyCounts(def.Items),
		knowledge: make(map[string]bool),
		spots:     make(map[string]engine.Position),
		buffers:   make(map[string]string),
		diggable:  make(map[string]bool),
		buildings: make(map[string]int),

		maxSize:              def.MaxSize,
		reproductionCost:     def.ReproductionCost,
		reproductionResource: def.ReproductionResource,

		pending: NewPending(),
		cyclic:  newCyclicSet(),
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(int64(def.ID)))
	}
	for _, k := range def.Knowledge {
		t.knowledge[k] = true
	}
	for _, d := range def.Diggable {
		t.diggable[d] = true
	}
	for _, g := range def.Members {
		for i := 0; i < g.Count; i++ {
			t.SpawnMember(g.Category, components.ParseGender(g.Gender))
		}
	}

	for _, load := range cfg.Recipes {
		r, ok := catalog.FindByName(load.Name)
		if !ok {
			logger.Warn("configured recipe not found",
				"recipe", load.Name,
				"suggestion", catalog.Suggest(load.Name),
			)
			continue
		}
		t.pending.Attach(r, load.Mode)
	}

	logger.Info("tribe registered",
		"name", def.Name,
		"members", t.MemberCount(),
		"recipes", len(cfg.Recipes),
		"aggressivity", cfg.Aggressivity,
		"growth", cfg.Growth,
	)
	return t, nil
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ID returns the tribe id.
func (t *Tribe) ID() int { return t.id }

// Name returns the tribe's display name.
func (t *Tribe) Name() string { return t.name }

// HomeSector returns the sector the tribe lives in.
func (t *Tribe) HomeSector() string { return t.home }

// Configuration returns the tribe policy. Callers may change policy fields with SetPolicy.
func (t *Tribe) Configuration() *Configuration { return t.config }

// NPCType returns the descriptor generated when the tribe was registered.
func (t *Tribe) NPCType() string { return t.npcType }

// Pending returns the tribe's pending recipes.
func (t *Tribe) Pending() *Pending { return t.pending }

// Buffer returns a scratch buffer.
func (t *Tribe) Buffer(name string) string { return t.buffers[name] }

// SetBuffer writes a scratch buffer.
func (t *Tribe) SetBuffer(name, value string) { t.buffers[name] = value }

// ReproductionCost returns how much of the reproduction resource a birth costs.
func (t *Tribe) ReproductionCost() int { return t.reproductionCost }

// NeededResource returns the resource births are paid with.
func (t *Tribe) NeededResource() string { return t.reproductionResource }

// AddResource adjusts the resource ledger.
func (t *Tribe) AddResource(name string, delta int) {
	t.resources[name] += delta
}

// AddItem adjusts the item ledger.
func (t *Tribe) AddItem(name string, delta int) {
	t.items[name] += delta
}

// CheckResource reports whether the tribe holds at least quantity of name.
func (t *Tribe) CheckResource(name string, quantity int) bool {
	return t.resources[name] >= quantity
}

// Resource returns the amount of a resource held.
func (t *Tribe) Resource(name string) int { return t.resources[name] }

// Resources returns a copy of the resource ledger.
func (t *Tribe) Resources() map[string]int { return copyCounts(t.resources) }

// IsDiggable reports whether the resource is mined rather than gathered.
func (t *Tribe) IsDiggable(resource string) bool { return t.diggable[resource] }

// CheckItems reports whether the tribe holds at least quantity of an item.
func (t *Tribe) CheckItems(name string, quantity int) bool {
	return t.items[name] >= quantity
}

// Item returns the count of an item held.
func (t *Tribe) Item(name string) int { return t.items[name] }

// Items returns a copy of the items ledger.
func (t *Tribe) Items() map[string]int { return copyCounts(t.items) }

// CheckKnowledge reports whether the tribe knows name.
func (t *Tribe) CheckKnowledge(name string) bool { return t.knowledge[name] }

// AddKnowledge teaches the tribe name.
func (t *Tribe) AddKnowledge(name string) { t.knowledge[name] = true }

// CheckMembers reports whether at least quantity members belong to category.
// The category "any" matches every member.
func (t *Tribe) CheckMembers(category string, quantity int) bool {
	return t.CountMembers(category) >= quantity
}

// CountMembers counts members of a category, or all members for "any".
func (t *Tribe) CountMembers(category string) int {
	n := 0
	query := t.memberQuery.Query()
	for query.Next() {
		m := query.Get()
		if category == SelectAny || m.Category == category {
			n++
		}
	}
	return n
}

// MemberCount returns the number of members.
func (t *Tribe) MemberCount() int {
	return len(t.agents)
}

// CanGrow reports whether the tribe can pay for a birth.
func (t *Tribe) CanGrow() bool {
	return t.CheckResource(t.reproductionResource, t.reproductionCost)
}

// ShouldGrow reports whether the growth policy wants more members.
func (t *Tribe) ShouldGrow() bool {
	switch t.config.Growth {
	case "none":
		return false
	case "conservative":
		return t.MemberCount() < t.maxSize/2
	default:
		return t.MemberCount() < t.maxSize
	}
}

// FindMemory reports whether the tribe remembers name.
func (t *Tribe) FindMemory(name string) bool {
	_, ok := t.memory(name)
	return ok
}

func (t *Tribe) memory(name string) (engine.Memory, bool) {
	for _, m := range t.memories {
		if m.Name == name {
			return m, true
		}
	}
	return engine.Memory{}, false
}

// AddMemory records a location. A memory with the same name and position is not duplicated.
func (t *Tribe) AddMemory(m engine.Memory) {
	for _, existing := range t.memories {
		if existing.Name == m.Name && existing.Pos == m.Pos {
			return
		}
	}
	t.memories = append(t.memories, m)
}

// Memories returns the tribe's memories.
func (t *Tribe) Memories() []engine.Memory { return t.memories }

// LoadMemoryBuffer loads the named memory into the agents' recall.
func (t *Tribe) LoadMemoryBuffer(name string, agents []engine.AgentID) bool {
	m, ok := t.memory(name)
	if !ok {
		return false
	}
	t.SetMemoryBuffer(m, agents)
	return true
}

// SetMemoryBuffer loads m into the agents' recall.
func (t *Tribe) SetMemoryBuffer(m engine.Memory, agents []engine.AgentID) {
	recall := components.Recall{
		Name:   m.Name,
		Pos:    components.Position{X: m.Pos.X, Y: m.Pos.Y, Z: m.Pos.Z},
		Sector: m.Sector,
		Radius: m.Radius,
		Valid:  true,
	}
	for _, e := range t.entities(agents) {
		if t.recalls.Has(e) {
			*t.recalls.Get(e) = recall
			continue
		}
		t.recalls.Add(e, &recall)
	}
}

// Recall returns the memory loaded into an agent.
func (t *Tribe) Recall(agent engine.AgentID) (components.Recall, bool) {
	e, ok := t.agents[agent]
	if !ok || !t.recalls.Has(e) {
		return components.Recall{}, false
	}
	return *t.recalls.Get(e), true
}

// ReserveBuildingSpot records where a building will go.
func (t *Tribe) ReserveBuildingSpot(name string, pos engine.Position) {
	t.spots[name] = pos
}

// ClaimBuildingSpot consumes a reservation.
func (t *Tribe) ClaimBuildingSpot(name string) (engine.Position, bool) {
	pos, ok := t.spots[name]
	if ok {
		delete(t.spots, name)
	}
	return pos, ok
}

// SpawnBuilding places a structure at the tribe's home.
func (t *Tribe) SpawnBuilding(name string) {
	b := components.Building{Name: name, Tribe: t.id}
	pos := components.Position{X: t.homePos.X, Y: t.homePos.Y, Z: t.homePos.Z}
	t.buildingMap.NewEntity(&b, &pos)
	t.buildings[name]++
	t.logger.Info("building spawned", "building", name, "count", t.buildings[name])
}

// Buildings returns how many of each structure the tribe has.
func (t *Tribe) Buildings() map[string]int { return copyCounts(t.buildings) }

// SpawnMember adds a member at the tribe's home and returns its agent id.
func (t *Tribe) SpawnMember(category string, gender components.Gender) engine.AgentID {
	id := t.nextAgent
	t.nextAgent++

	m := components.Member{Agent: uint64(id), Tribe: t.id, Category: category, Gender: gender}
	pos := components.Position{X: t.homePos.X, Y: t.homePos.Y, Z: t.homePos.Z}
	task := components.Task{Kind: components.TaskIdle}
	t.agents[id] = t.memberMap.NewEntity(&m, &pos, &task)
	return id
}

// Member returns an agent's member component.
func (t *Tribe) Member(agent engine.AgentID) (components.Member, bool) {
	e, ok := t.agents[agent]
	if !ok {
		return components.Member{}, false
	}
	return *t.members.Get(e), true
}

// SelectAgents picks idle members:
//   - select(gender,female) picks every idle member of that gender
//   - select(any,n) picks n idle members of any category
//   - select(category,n) picks n idle members of the category
//
// A count of zero or less picks every match. Agents come back in id order.
func (t *Tribe) SelectAgents(kind, qualifier string) []engine.AgentID {
	limit := -1
	gender := components.GenderNone
	if kind == SelectGender {
		gender = components.ParseGender(qualifier)
	} else if n := engine.Atoi(qualifier); n > 0 {
		limit = n
	}

	var picked []engine.AgentID
	query := t.memberQuery.Query()
	for query.Next() {
		e := query.Entity()
		if t.busy.Has(e) {
			continue
		}
		m := query.Get()
		switch {
		case kind == SelectGender:
			if m.Gender != gender {
				continue
			}
		case kind != SelectAny && m.Category != kind:
			continue
		}
		picked = append(picked, engine.AgentID(m.Agent))
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i] < picked[j] })
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	return picked
}

// SetAgentBuffer writes the agents' task buffer.
func (t *Tribe) SetAgentBuffer(agents []engine.AgentID, value string) {
	for _, e := range t.entities(agents) {
		t.tasks.Get(e).Buffer = value
	}
}

// SendPerception queues an event for the agents. The world drains the queue.
func (t *Tribe) SendPerception(event string, agents []engine.AgentID) {
	t.perceptions = append(t.perceptions, Perception{
		Event:  event,
		Agents: append([]engine.AgentID(nil), agents...),
		Buffer: t.buffers[engine.BufferMain],
		Amount: t.buffers[engine.BufferActiveAmount],
	})
}

// DrainPerceptions returns and clears the queued perceptions.
func (t *Tribe) DrainPerceptions() []Perception {
	out := t.perceptions
	t.perceptions = nil
	return out
}

// AssignTask puts agents on a task for seconds. Busy agents are skipped by selection.
func (t *Tribe) AssignTask(agents []engine.AgentID, kind components.TaskKind, seconds float32) {
	for _, e := range t.entities(agents) {
		task := t.tasks.Get(e)
		task.Kind = kind
		task.Remaining = seconds
		if seconds > 0 && !t.busy.Has(e) {
			t.busy.Add(e, &components.Busy{})
		}
	}
}

// FinishedTask is a task that ran out during UpdateTasks.
type FinishedTask struct {
	Agent  engine.AgentID
	Kind   components.TaskKind
	Buffer string
}

// UpdateTasks counts down running tasks, frees members whose task ended and
// returns those tasks in agent order.
func (t *Tribe) UpdateTasks(dt float32) []FinishedTask {
	var done []ecs.Entity
	var finished []FinishedTask
	query := t.taskQuery.Query()
	for query.Next() {
		m, task := query.Get()
		if task.Remaining <= 0 {
			continue
		}
		task.Remaining -= dt
		if task.Remaining <= 0 {
			finished = append(finished, FinishedTask{Agent: engine.AgentID(m.Agent), Kind: task.Kind, Buffer: task.Buffer})
			task.Remaining = 0
			task.Kind = components.TaskIdle
			done = append(done, query.Entity())
		}
	}
	// Structural changes wait until the query is closed.
	for _, e := range done {
		if t.busy.Has(e) {
			t.busy.Remove(e)
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].Agent < finished[j].Agent })
	return finished
}

// Agents returns every member's agent id in order.
func (t *Tribe) Agents() []engine.AgentID {
	out := make([]engine.AgentID, 0, len(t.agents))
	for id := range t.agents {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Knowledge returns what the tribe knows, sorted.
func (t *Tribe) Knowledge() []string {
	out := make([]string, 0, len(t.knowledge))
	for k := range t.knowledge {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Buffers returns a copy of the tribe scratch buffers.
func (t *Tribe) Buffers() map[string]string {
	out := make(map[string]string, len(t.buffers))
	for k, v := range t.buffers {
		out[k] = v
	}
	return out
}

// Task returns an agent's current task.
func (t *Tribe) Task(agent engine.AgentID) (components.Task, bool) {
	e, ok := t.agents[agent]
	if !ok {
		return components.Task{}, false
	}
	return *t.tasks.Get(e), true
}

// MoveAgents places agents at pos.
func (t *Tribe) MoveAgents(agents []engine.AgentID, pos engine.Position) {
	for _, e := range t.entities(agents) {
		*t.positions.Get(e) = components.Position{X: pos.X, Y: pos.Y, Z: pos.Z}
	}
}

// Position returns where an agent is.
func (t *Tribe) Position(agent engine.AgentID) (engine.Position, bool) {
	e, ok := t.agents[agent]
	if !ok {
		return engine.Position{}, false
	}
	p := t.positions.Get(e)
	return engine.Position{X: p.X, Y: p.Y, Z: p.Z}, true
}

// Rand returns the tribe's random source.
func (t *Tribe) Rand() *rand.Rand { return t.rng }

// HomePosition returns where the tribe lives.
func (t *Tribe) HomePosition() engine.Position { return t.homePos }

func (t *Tribe) entities(agents []engine.AgentID) []ecs.Entity {
	out := make([]ecs.Entity, 0, len(agents))
	for _, a := range agents {
		if e, ok := t.agents[a]; ok && t.world.Alive(e) {
			out = append(out, e)
		}
	}
	return out
}
