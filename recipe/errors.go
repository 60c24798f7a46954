package recipe

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRequirement is returned when a requirement keyword is not in the vocabulary.
	ErrUnknownRequirement = errors.New("unknown requirement kind")
	// ErrUnsupportedRequirement is returned for kinds with no runtime semantics (trader).
	ErrUnsupportedRequirement = errors.New("unsupported requirement kind")
	// ErrDuplicateRecipe is returned when two rows share an id or a name.
	ErrDuplicateRecipe = errors.New("duplicate recipe")
	// ErrEmptyName is returned when a row has no name.
	ErrEmptyName = errors.New("recipe name is required")
)

// LoadError describes a row that could not be turned into a Recipe.
// Any LoadError aborts the whole catalog load.
type LoadError struct {
	ID    int
	Name  string
	Field string
	Index int // position within Field, -1 when not applicable
	Err   error
}

func (e *LoadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("recipe %d (%s) %s[%d]: %v", e.ID, e.Name, e.Field, e.Index, e.Err)
	}
	return fmt.Sprintf("recipe %d (%s) %s: %v", e.ID, e.Name, e.Field, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
