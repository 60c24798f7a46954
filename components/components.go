// Package components defines ECS components for tribe members and structures.
package components

// Member identifies an entity as a tribesman.
type Member struct {
	Agent    uint64 // stable id handed to the recipe engine
	Tribe    int
	Category string // e.g. "gatherer", "miner", "warrior"
	Gender   Gender
}

// Task is what a member was last told to do.
type Task struct {
	Kind      TaskKind
	Buffer    string  // agent scratch buffer (goWork duration, resource name)
	Remaining float32 // seconds left on a timed task
}

// Recall is the memory loaded into a member's buffer by locate opcodes.
type Recall struct {
	Name   string
	Pos    Position
	Sector string
	Radius float32
	Valid  bool
}

// Building is a structure spawned by a tribe.
type Building struct {
	Name  string
	Tribe int
}

// Busy tags members that are mid-task and skipped by selection.
type Busy struct{}
