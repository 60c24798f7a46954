package game

import (
	"github.com/pthm-cable/tribes/components"
	"github.com/pthm-cable/tribes/config"
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/telemetry"
	"github.com/pthm-cable/tribes/tribe"
)

// foundTribes creates every configured tribe with its own random source.
func (g *Game) foundTribes() error {
	for _, tc := range g.cfg.Tribes {
		t, err := tribe.New(g.catalog, definition(tc), tribeRand(g.rngSeed, tc.ID), g.logger)
		if err != nil {
			return err
		}
		g.tribes = append(g.tribes, &tribeState{
			tribe:     t,
			collector: telemetry.NewCollector(tc.ID, g.windowTicks, g.dt),
			bookmarks: telemetry.NewBookmarkDetector(bookmarkHistory),
		})
	}
	return nil
}

// definition converts a configured tribe.
func definition(tc config.TribeConfig) tribe.Definition {
	def := tribe.Definition{
		ID:                   tc.ID,
		Name:                 tc.Name,
		TribalRecipe:         tc.TribalRecipe,
		HomeSector:           tc.HomeSector,
		Home:                 engine.Position{X: float32(tc.Home[0]), Y: float32(tc.Home[1]), Z: float32(tc.Home[2])},
		MaxSize:              tc.MaxSize,
		ReproductionCost:     tc.ReproductionCost,
		ReproductionResource: tc.ReproductionResource,
		Resources:            tc.Resources,
		Items:                tc.Items,
		Knowledge:            tc.Knowledge,
		Diggable:             tc.Diggable,
	}
	for _, m := range tc.Members {
		def.Members = append(def.Members, tribe.MemberGroup{Category: m.Category, Gender: m.Gender, Count: m.Count})
	}
	return def
}

// breed answers tribe:breed. The mate recipe leaves the category it is
// growing for in the main buffer; the tribe pays the reproduction cost.
func (g *Game) breed(ts *tribeState, p tribe.Perception) {
	t := ts.tribe
	if len(p.Agents) == 0 {
		return
	}
	if !t.CanGrow() {
		g.logger.Debug("breeding without resources",
			"tribe", t.ID(),
			"resource", t.NeededResource(),
			"have", t.Resource(t.NeededResource()),
			"cost", t.ReproductionCost(),
		)
		return
	}

	category := p.Buffer
	if category == "" {
		category = tribe.SelectAny
	}
	gender := components.GenderFemale
	if t.Rand().Intn(2) == 0 {
		gender = components.GenderMale
	}

	t.AddResource(t.NeededResource(), -t.ReproductionCost())
	agent := t.SpawnMember(category, gender)
	t.AssignTask(p.Agents, components.TaskBreed, float32(g.cfg.Simulation.TaskSeconds))
	ts.collector.RecordBirth()

	g.logger.Info("member born",
		"tribe", t.ID(),
		"agent", agent,
		"category", category,
		"gender", gender.String(),
		"members", t.MemberCount(),
	)
}
