package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pthm-cable/tribes/recipe"
)

// ResolutionMode selects how unmet requirements move the requirement cursor.
type ResolutionMode uint8

const (
	Concentrated ResolutionMode = iota // Retry the same requirement next time
	Distributed                        // Advance round-robin past an unmet requirement
)

func (m ResolutionMode) String() string {
	if m == Distributed {
		return "distributed"
	}
	return "concentrated"
}

// ParseMode reads the optional mode argument of loadRecipe. Anything that
// starts with "distributed" selects Distributed.
func ParseMode(arg string) ResolutionMode {
	if strings.HasPrefix(arg, "distributed") {
		return Distributed
	}
	return Concentrated
}

// TreeNode is a live execution cursor over one recipe for one tribe.
// It is owned by the tribe's pending-recipe structure and holds no external
// resources, so discarding it at any time cancels the work.
type TreeNode struct {
	ID     uuid.UUID
	Recipe *recipe.Recipe
	Mode   ResolutionMode

	NextRequirement int // index into Recipe.Requirements
	ResumeStep      int // index into Recipe.Algorithm
	Depth           int // 0 for top-level nodes, parent depth + 1 for injected ones

	// recipe-kind requirements already injected for this attachment
	fired map[int]bool
}

// NewTreeNode attaches a recipe at the given depth.
func NewTreeNode(r *recipe.Recipe, mode ResolutionMode, depth int) *TreeNode {
	return &TreeNode{
		ID:     uuid.New(),
		Recipe: r,
		Mode:   mode,
		Depth:  depth,
	}
}

func (n *TreeNode) reset() {
	n.NextRequirement = 0
	n.ResumeStep = 0
	n.fired = nil
}
