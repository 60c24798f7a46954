package engine

import (
	"strconv"

	"github.com/pthm-cable/tribes/recipe"
)

// opFunc applies one opcode. It reports false when execution must stop at this step.
type opFunc func(e *Engine, f *Frame, args []string) bool

// OpcodeInfo describes one interpreter operation.
type OpcodeInfo struct {
	Op          recipe.Opcode
	MinArgs     int
	MaxArgs     int
	Description string
	Category    string // Grouping (e.g., "resources", "control", "perception")

	run opFunc
}

// Name returns the opcode name as written in recipes.
func (i OpcodeInfo) Name() string {
	return i.Op.String()
}

// Arity renders the accepted argument count.
func (i OpcodeInfo) Arity() string {
	if i.MinArgs == i.MaxArgs {
		return strconv.Itoa(i.MinArgs)
	}
	return strconv.Itoa(i.MinArgs) + "-" + strconv.Itoa(i.MaxArgs)
}

// OpcodeRegistry is the interpreter's dispatch table.
type OpcodeRegistry struct {
	infos []OpcodeInfo
	byOp  map[recipe.Opcode]OpcodeInfo
}

// NewOpcodeRegistry creates a registry with all known opcodes.
func NewOpcodeRegistry() *OpcodeRegistry {
	reg := &OpcodeRegistry{
		byOp: make(map[recipe.Opcode]OpcodeInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds every opcode. Update this when adding opcodes to recipe.Opcode.
func (r *OpcodeRegistry) registerDefaults() {
	// Resources and knowledge
	r.Register(OpcodeInfo{Op: recipe.OpAlterResource, MinArgs: 2, MaxArgs: 2, Description: "Adjusts a tribe resource count", Category: "resources", run: opAlterResource})
	r.Register(OpcodeInfo{Op: recipe.OpAddKnowledge, MinArgs: 1, MaxArgs: 1, Description: "Grants knowledge to the tribe", Category: "resources", run: opAddKnowledge})

	// Memories
	r.Register(OpcodeInfo{Op: recipe.OpLoadLocation, MinArgs: 4, MaxArgs: 4, Description: "Records a work memory at a position", Category: "memory", run: opLoadLocation})
	r.Register(OpcodeInfo{Op: recipe.OpLocateMemory, MinArgs: 1, MaxArgs: 1, Description: "Loads a memory into agent buffers or explores for it", Category: "memory", run: opLocateMemory})
	r.Register(OpcodeInfo{Op: recipe.OpLocateResource, MinArgs: 1, MaxArgs: 1, Description: "Loads a resource memory into agent buffers or explores for it", Category: "memory", run: opLocateMemory})
	r.Register(OpcodeInfo{Op: recipe.OpLocateBuildingSpot, MinArgs: 1, MaxArgs: 1, Description: "Turns a reserved building spot into an agent memory", Category: "memory", run: opLocateBuildingSpot})

	// Buildings
	r.Register(OpcodeInfo{Op: recipe.OpReserveSpot, MinArgs: 4, MaxArgs: 4, Description: "Reserves a building location", Category: "building", run: opReserveSpot})
	r.Register(OpcodeInfo{Op: recipe.OpAddBuilding, MinArgs: 1, MaxArgs: 1, Description: "Spawns a structure", Category: "building", run: opAddBuilding})

	// Control flow
	r.Register(OpcodeInfo{Op: recipe.OpWait, MinArgs: 1, MaxArgs: 1, Description: "Suspends the recipe for a number of seconds", Category: "control", run: opWait})
	r.Register(OpcodeInfo{Op: recipe.OpLoadRecipe, MinArgs: 1, MaxArgs: 2, Description: "Pushes a recipe as a prerequisite and defers to it", Category: "control", run: opLoadRecipe})
	r.Register(OpcodeInfo{Op: recipe.OpLoadCyclicRecipe, MinArgs: 2, MaxArgs: 2, Description: "Registers a recipe to recur periodically", Category: "control", run: opLoadCyclicRecipe})
	r.Register(OpcodeInfo{Op: recipe.OpBogus, MinArgs: 0, MaxArgs: 0, Description: "Does nothing", Category: "control", run: opBogus})

	// Agents
	r.Register(OpcodeInfo{Op: recipe.OpSelect, MinArgs: 2, MaxArgs: 2, Description: "Selects the working agents for later steps", Category: "agents", run: opSelect})
	r.Register(OpcodeInfo{Op: recipe.OpGoWork, MinArgs: 1, MaxArgs: 1, Description: "Sends selected agents to work for a duration", Category: "agents", run: opGoWork})
	r.Register(OpcodeInfo{Op: recipe.OpAttack, MinArgs: 0, MaxArgs: 0, Description: "Broadcasts tribe:attack", Category: "perception", run: perceive("tribe:attack")})
	r.Register(OpcodeInfo{Op: recipe.OpGather, MinArgs: 0, MaxArgs: 0, Description: "Broadcasts tribe:gather", Category: "perception", run: perceive("tribe:gather")})
	r.Register(OpcodeInfo{Op: recipe.OpMine, MinArgs: 0, MaxArgs: 0, Description: "Broadcasts tribe:mine", Category: "perception", run: perceive("tribe:mine")})
	r.Register(OpcodeInfo{Op: recipe.OpExplore, MinArgs: 0, MaxArgs: 0, Description: "Broadcasts tribe:explore", Category: "perception", run: perceive("tribe:explore")})
	r.Register(OpcodeInfo{Op: recipe.OpMate, MinArgs: 0, MaxArgs: 0, Description: "Broadcasts tribe:breed", Category: "perception", run: perceive("tribe:breed")})

	// Buffers
	r.Register(OpcodeInfo{Op: recipe.OpSetBuffer, MinArgs: 1, MaxArgs: 1, Description: "Writes the Buffer scratch buffer", Category: "buffers", run: setBuffer(BufferMain)})
	r.Register(OpcodeInfo{Op: recipe.OpSetAmountBuffer, MinArgs: 1, MaxArgs: 1, Description: "Writes the Active Amount scratch buffer", Category: "buffers", run: setBuffer(BufferActiveAmount)})
}

// Register adds an opcode to the registry.
func (r *OpcodeRegistry) Register(info OpcodeInfo) {
	r.infos = append(r.infos, info)
	r.byOp[info.Op] = info
}

// Get returns opcode info.
func (r *OpcodeRegistry) Get(op recipe.Opcode) (OpcodeInfo, bool) {
	info, ok := r.byOp[op]
	return info, ok
}

// All returns all registered opcodes.
func (r *OpcodeRegistry) All() []OpcodeInfo {
	return r.infos
}

// ByCategory returns opcodes filtered by category.
func (r *OpcodeRegistry) ByCategory(category string) []OpcodeInfo {
	var result []OpcodeInfo
	for _, info := range r.infos {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *OpcodeRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.infos {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// Names returns all opcode names in registration order.
func (r *OpcodeRegistry) Names() []string {
	names := make([]string, len(r.infos))
	for i, info := range r.infos {
		names[i] = info.Name()
	}
	return names
}
