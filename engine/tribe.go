package engine

// AgentID identifies one tribe member to the tribe collaborator.
type AgentID uint64

// Position is a world location.
type Position struct {
	X, Y, Z float32
}

// Memory is a named location a tribe remembers.
type Memory struct {
	Name   string
	Pos    Position
	Sector string
	Radius float32
}

// Scratch buffer names.
const (
	BufferMain         = "Buffer"
	BufferActiveAmount = "Active Amount"
)

// Blackboard is the part of tribe state read by placeholder substitution.
type Blackboard interface {
	Buffer(name string) string
	ReproductionCost() int
	NeededResource() string
}

// Tribe is the collaborator the engine reads and affects. The engine never
// touches a tribe's pending recipes directly; structural changes are returned
// in Result for the caller to apply.
type Tribe interface {
	Blackboard

	ID() int
	HomeSector() string
	SetBuffer(name, value string)

	// Resource and item ledgers.
	AddResource(name string, delta int)
	AddItem(name string, delta int)
	CheckResource(name string, quantity int) bool
	IsDiggable(resource string) bool
	CheckItems(name string, quantity int) bool

	// Knowledge set.
	CheckKnowledge(name string) bool
	AddKnowledge(name string)

	// Membership census and growth policy.
	CheckMembers(category string, quantity int) bool
	CanGrow() bool
	ShouldGrow() bool

	// Memory store.
	FindMemory(name string) bool
	AddMemory(m Memory)
	LoadMemoryBuffer(name string, agents []AgentID) bool
	SetMemoryBuffer(m Memory, agents []AgentID)

	// Building assets.
	ReserveBuildingSpot(name string, pos Position)
	ClaimBuildingSpot(name string) (Position, bool)
	SpawnBuilding(name string)

	// Agents.
	SelectAgents(kind, qualifier string) []AgentID
	SetAgentBuffer(agents []AgentID, value string)
	SendPerception(event string, agents []AgentID)
}
