package recipe

import (
	"fmt"
	"io"
)

// Recipe is an immutable, loaded-once unit of goal and procedure.
// Recipes are owned by a Catalog; everything else refers to them by pointer
// or by name and must not mutate them.
type Recipe struct {
	ID           int
	Name         string
	Algorithm    []Step
	Requirements []Requirement
	Persistent   bool // survives restarts in the persistence layer
	Unique       bool // at most one outstanding instance per tribe
}

// IsBasic reports whether the recipe id is below the basic threshold.
// Basic recipes wait for resources instead of triggering production recipes.
func (r *Recipe) IsBasic(threshold int) bool {
	return r.ID < threshold
}

// Dump writes a human-readable description of the recipe.
func (r *Recipe) Dump(w io.Writer) {
	fmt.Fprintf(w, "Recipe %d: %s\n", r.ID, r.Name)
	r.DumpAlgorithm(w)
	r.DumpRequirements(w)
	fmt.Fprintf(w, "Persistent: %t\n", r.Persistent)
	fmt.Fprintf(w, "Unique: %t\n", r.Unique)
}

// DumpAlgorithm writes the numbered algorithm steps.
func (r *Recipe) DumpAlgorithm(w io.Writer) {
	fmt.Fprintf(w, "Algorithm (%d steps)\n", len(r.Algorithm))
	for i, step := range r.Algorithm {
		marker := ""
		if step.Op == OpUnknown {
			marker = "  [unknown opcode]"
		}
		fmt.Fprintf(w, "%d) %s%s\n", i+1, step.Text, marker)
	}
}

// DumpRequirements writes the numbered requirements.
func (r *Recipe) DumpRequirements(w io.Writer) {
	fmt.Fprintf(w, "Requirements (%d)\n", len(r.Requirements))
	for i, req := range r.Requirements {
		fmt.Fprintf(w, "%d) %s\n", i+1, req)
	}
}
