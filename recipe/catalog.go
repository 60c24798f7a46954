package recipe

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Catalog holds every loaded recipe, indexed by id and by name.
// It is built once and never mutated afterwards, so concurrent readers
// need no locking. A reload builds a new Catalog and swaps the pointer.
type Catalog struct {
	recipes []*Recipe
	byID    map[int]*Recipe
	byName  map[string]*Recipe
}

// NewCatalog parses every row. The first LoadError aborts the load.
func NewCatalog(rows []Row) (*Catalog, error) {
	c := &Catalog{
		recipes: make([]*Recipe, 0, len(rows)),
		byID:    make(map[int]*Recipe, len(rows)),
		byName:  make(map[string]*Recipe, len(rows)),
	}

	for _, row := range rows {
		r, err := row.Parse()
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, &LoadError{ID: r.ID, Name: r.Name, Field: "id", Index: -1, Err: ErrDuplicateRecipe}
		}
		if _, dup := c.byName[r.Name]; dup {
			return nil, &LoadError{ID: r.ID, Name: r.Name, Field: "name", Index: -1, Err: ErrDuplicateRecipe}
		}
		c.recipes = append(c.recipes, r)
		c.byID[r.ID] = r
		c.byName[r.Name] = r
	}

	return c, nil
}

// LoadCSV reads rows from CSV and builds a catalog from them.
func LoadCSV(r io.Reader) (*Catalog, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	c, err := NewCatalog(rows)
	if err != nil {
		return nil, fmt.Errorf("loading recipes: %w", err)
	}
	return c, nil
}

// Find returns the recipe with the given id.
func (c *Catalog) Find(id int) (*Recipe, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// FindByName returns the recipe with the given name.
func (c *Catalog) FindByName(name string) (*Recipe, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// All returns the recipes in load order. The slice must not be modified.
func (c *Catalog) All() []*Recipe {
	return c.recipes
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Suggest returns the closest known recipe name to a missed lookup,
// or "" when nothing is close enough.
func (c *Catalog) Suggest(name string) string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return Closest(name, names)
}

// Closest returns the candidate with the smallest edit distance to s,
// compared case-insensitively, within a limit that grows with the candidate length.
func Closest(s string, candidates []string) string {
	in := strings.ToLower(s)
	best, bestDist := "", -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(in, strings.ToLower(cand))
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
