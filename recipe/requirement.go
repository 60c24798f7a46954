// Package recipe defines the tribe recipe data model and the catalog that holds it.
package recipe

import (
	"fmt"
	"strings"
)

// RequirementKind is the closed vocabulary of requirement types.
type RequirementKind uint8

const (
	KindTribesman RequirementKind = iota // Members of a category
	KindResource                         // Quantity of a resource
	KindItem                             // Quantity of a crafted item
	KindKnowledge                        // A piece of tribe knowledge
	KindRecipe                           // Another recipe, fire-and-continue
	KindTrader                           // Reserved, no runtime semantics
	KindMemory                           // A remembered location
)

var kindNames = [...]string{
	KindTribesman: "tribesman",
	KindResource:  "resource",
	KindItem:      "item",
	KindKnowledge: "knowledge",
	KindRecipe:    "recipe",
	KindTrader:    "trader",
	KindMemory:    "memory",
}

// String returns the keyword used in stored requirement strings.
func (k RequirementKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("RequirementKind(%d)", k)
}

// ParseRequirementKind maps a stored keyword to its kind.
func ParseRequirementKind(s string) (RequirementKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return RequirementKind(i), true
		}
	}
	return 0, false
}

// Requirement is a typed precondition checked before a recipe's steps run.
// Name and Quantity may hold placeholders and are resolved at evaluation time.
type Requirement struct {
	Kind     RequirementKind
	Name     string
	Quantity string
}

// String renders the requirement in its stored form.
func (r Requirement) String() string {
	return fmt.Sprintf("%s(%s,%s)", r.Kind, r.Name, r.Quantity)
}

// parseRequirement parses a stored `kind(name,quantity)` string.
func parseRequirement(text string) (Requirement, error) {
	parts := splitAny(text, "(,)")
	if len(parts) == 0 {
		return Requirement{}, fmt.Errorf("%w: empty requirement", ErrUnknownRequirement)
	}
	kind, ok := ParseRequirementKind(strings.TrimSpace(parts[0]))
	if !ok {
		return Requirement{}, fmt.Errorf("%w: %q", ErrUnknownRequirement, parts[0])
	}
	if kind == KindTrader {
		return Requirement{}, fmt.Errorf("%w: %q", ErrUnsupportedRequirement, text)
	}

	req := Requirement{Kind: kind}
	if len(parts) > 1 {
		req.Name = parts[1]
	}
	if len(parts) > 2 {
		req.Quantity = parts[2]
	}
	return req, nil
}

// splitAny splits s on any of the separator runes and drops empty fields.
func splitAny(s, seps string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
}
