package tribe

import (
	"sort"

	"github.com/pthm-cable/tribes/recipe"
)

// cyclicRecipe is a recipe re-attached to the tribe every period seconds.
type cyclicRecipe struct {
	recipe *recipe.Recipe
	period float64
	next   float64
}

// cyclicSet holds a tribe's recurring recipes, at most one per recipe name.
type cyclicSet struct {
	byName map[string]*cyclicRecipe
}

func newCyclicSet() *cyclicSet {
	return &cyclicSet{byName: make(map[string]*cyclicRecipe)}
}

// register schedules r every period seconds from now. Registering a recipe
// again replaces its period and keeps its next due time.
func (s *cyclicSet) register(r *recipe.Recipe, periodSec int, now float64) {
	period := float64(periodSec)
	if period <= 0 {
		period = 1
	}
	if c, ok := s.byName[r.Name]; ok {
		c.period = period
		return
	}
	s.byName[r.Name] = &cyclicRecipe{recipe: r, period: period, next: now + period}
}

// due returns the recipes whose time has come, advancing each to its next slot.
func (s *cyclicSet) due(now float64) []*recipe.Recipe {
	var out []*recipe.Recipe
	for _, c := range s.byName {
		if now < c.next {
			continue
		}
		out = append(out, c.recipe)
		for c.next <= now {
			c.next += c.period
		}
	}
	// Map order is random; attach in a stable order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *cyclicSet) len() int {
	return len(s.byName)
}
