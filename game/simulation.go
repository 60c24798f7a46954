package game

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/pthm-cable/tribes/components"
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/telemetry"
	"github.com/pthm-cable/tribes/tribe"
)

// Perception events sent by recipe opcodes.
const (
	EventWork    = "tribe:work"
	EventGather  = "tribe:gather"
	EventMine    = "tribe:mine"
	EventExplore = "tribe:explore"
	EventBreed   = "tribe:breed"
	EventAttack  = "tribe:attack"
)

// Memory names recorded by explorers. Any memory requirement is met by a mine.
const memoryMine = "mine"

// simulationStep advances every tribe one tick: one recipe node each, then
// member reactions to what the recipes asked for, then task timers.
func (g *Game) simulationStep() {
	g.now = float64(g.tick) * g.dt

	g.perfCollector.StartPhase(telemetry.PhaseAdvance)
	g.forEachTribe(g.advanceTribe)

	g.perfCollector.StartPhase(telemetry.PhaseReactions)
	g.forEachTribe(g.reactTribe)

	g.perfCollector.StartPhase(telemetry.PhaseTasks)
	g.forEachTribe(g.updateTasks)

	g.tick++
}

// advanceTribe applies the tribe's best pending node.
func (g *Game) advanceTribe(ts *tribeState) {
	start := time.Now()
	rep, ok := ts.tribe.Advance(g.engine, g.now)
	if !ok {
		ts.collector.RecordIdle()
		return
	}
	ts.last = rep

	ts.collector.RecordOutcome(rep.Result.Outcome)
	ts.collector.RecordApplyTime(rep.Result.Outcome, time.Since(start))
	ts.collector.RecordInjections(rep.Attached)
	if rep.Discarded {
		ts.collector.RecordDiscard(errors.Is(rep.Result.Err, engine.ErrInjectionDepth))
	}

	if g.outputManager.Tracing() {
		ts.trace = append(ts.trace, telemetry.NewTraceRecord(g.tick, ts.tribe.ID(), rep.Node.TreeNode, rep.Result, rep.Attached))
	}
}

// reactTribe turns queued perceptions into member tasks.
func (g *Game) reactTribe(ts *tribeState) {
	for _, p := range ts.tribe.DrainPerceptions() {
		ts.collector.RecordPerception()
		g.react(ts, p)
	}
}

func (g *Game) react(ts *tribeState, p tribe.Perception) {
	t := ts.tribe
	seconds := float32(g.cfg.Simulation.TaskSeconds)

	switch p.Event {
	case EventGather, EventMine:
		kind := components.TaskGather
		if p.Event == EventMine {
			kind = components.TaskMine
		}
		// Members go to the memory a locate step loaded for them.
		for _, a := range p.Agents {
			if r, ok := t.Recall(a); ok && r.Valid {
				t.MoveAgents([]engine.AgentID{a}, engine.Position{X: r.Pos.X, Y: r.Pos.Y, Z: r.Pos.Z})
			}
		}
		t.SetAgentBuffer(p.Agents, p.Buffer)
		t.AssignTask(p.Agents, kind, seconds)

	case EventExplore:
		for _, a := range p.Agents {
			t.MoveAgents([]engine.AgentID{a}, g.wander(t))
		}
		t.SetAgentBuffer(p.Agents, p.Buffer)
		t.AssignTask(p.Agents, components.TaskExplore, seconds)

	case EventWork:
		// goWork left the duration in each member's buffer.
		for _, a := range p.Agents {
			task, _ := t.Task(a)
			d, _ := strconv.Atoi(task.Buffer)
			t.AssignTask([]engine.AgentID{a}, components.TaskWork, float32(d))
		}

	case EventBreed:
		g.breed(ts, p)

	case EventAttack:
		t.AssignTask(p.Agents, components.TaskAttack, seconds)
		g.logger.Info("tribe attacking",
			"tribe", t.ID(),
			"warriors", len(p.Agents),
			"target", p.Buffer,
			"amount", p.Amount,
		)

	default:
		g.logger.Warn("unhandled perception", "tribe", t.ID(), "event", p.Event)
	}
}

// updateTasks counts down member tasks and credits the ones that finished.
func (g *Game) updateTasks(ts *tribeState) {
	t := ts.tribe
	for _, f := range t.UpdateTasks(float32(g.dt)) {
		switch f.Kind {
		case components.TaskGather, components.TaskMine:
			if f.Buffer != "" {
				t.AddResource(f.Buffer, 1)
			}
			t.MoveAgents([]engine.AgentID{f.Agent}, t.HomePosition())

		case components.TaskExplore:
			pos, _ := t.Position(f.Agent)
			radius := float32(g.cfg.Engine.WorkMemoryRadius)
			if f.Buffer != "" {
				t.AddMemory(engine.Memory{Name: f.Buffer, Pos: pos, Sector: t.HomeSector(), Radius: radius})
			}
			if t.Rand().Intn(2) == 0 {
				t.AddMemory(engine.Memory{Name: memoryMine, Pos: pos, Sector: t.HomeSector(), Radius: radius})
			}
			t.MoveAgents([]engine.AgentID{f.Agent}, t.HomePosition())
		}
	}
}

// wander picks a point within the explore radius of the tribe's home.
func (g *Game) wander(t *tribe.Tribe) engine.Position {
	home := t.HomePosition()
	rng := t.Rand()
	angle := rng.Float64() * 2 * math.Pi
	dist := math.Sqrt(rng.Float64()) * g.cfg.Simulation.ExploreRadius
	return engine.Position{
		X: home.X + float32(dist*math.Cos(angle)),
		Y: home.Y,
		Z: home.Z + float32(dist*math.Sin(angle)),
	}
}
