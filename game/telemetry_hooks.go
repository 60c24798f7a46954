package game

import (
	"github.com/pthm-cable/tribes/telemetry"
	"github.com/pthm-cable/tribes/tribe"
)

// writeTrace writes the Apply records gathered this tick, tribe by tribe.
func (g *Game) writeTrace() {
	if !g.outputManager.Tracing() {
		return
	}
	for _, ts := range g.tribes {
		if err := g.outputManager.WriteTrace(ts.trace); err != nil {
			g.logger.Error("failed to write trace", "error", err)
		}
		ts.trace = ts.trace[:0]
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if len(g.tribes) == 0 || !g.tribes[0].collector.ShouldFlush(g.tick) {
		return
	}

	perfStats := g.perfCollector.Stats()
	if g.logStats {
		perfStats.LogStats()
	}
	if err := g.outputManager.WritePerf(perfStats, g.tick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	for _, ts := range g.tribes {
		stats := ts.collector.Flush(g.tick, g.sampleGauges(ts))

		if g.statsCallback != nil {
			g.statsCallback(stats)
		}
		if g.logStats {
			stats.LogStats()
		}
		if err := g.outputManager.WriteStats(stats); err != nil {
			g.logger.Error("failed to write stats", "error", err)
		}

		for _, bm := range ts.bookmarks.Check(stats) {
			if g.logStats {
				bm.LogBookmark()
			}
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				g.logger.Error("failed to write bookmark", "error", err)
			}
			// Save snapshot on bookmark
			if g.outputManager != nil {
				g.saveSnapshot(&bm)
			}
		}
	}

	if g.logStats {
		g.logWorldState()
	}
}

// sampleGauges reads the tribe values a window reports at its end.
func (g *Game) sampleGauges(ts *tribeState) telemetry.Gauges {
	t := ts.tribe
	var buildings int
	for _, n := range t.Buildings() {
		buildings += n
	}
	return telemetry.Gauges{
		Members:   t.MemberCount(),
		Pending:   t.Pending().Len(),
		Cyclic:    t.CyclicCount(),
		Buildings: buildings,
		Depths:    t.Pending().Depths(),
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := g.outputManager.WriteSnapshot(g.Snapshot(bookmark))
	if err != nil {
		g.logger.Error("failed to save snapshot", "error", err)
		return
	}
	g.logger.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot builds a snapshot of every tribe at the current tick.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RNGSeed:  g.rngSeed,
		Tick:     g.tick,
		Bookmark: bookmark,
	}
	for _, ts := range g.tribes {
		snapshot.Tribes = append(snapshot.Tribes, snapshotTribe(ts.tribe))
	}
	return snapshot
}

func snapshotTribe(t *tribe.Tribe) telemetry.TribeState {
	state := telemetry.TribeState{
		ID:        t.ID(),
		Name:      t.Name(),
		Sector:    t.HomeSector(),
		NPCType:   t.NPCType(),
		Resources: t.Resources(),
		Items:     t.Items(),
		Buildings: t.Buildings(),
		Buffers:   t.Buffers(),
		Knowledge: t.Knowledge(),
		Cyclic:    t.CyclicCount(),
	}

	for _, m := range t.Memories() {
		state.Memories = append(state.Memories, telemetry.MemoryState{
			Name:   m.Name,
			Sector: m.Sector,
			Pos:    [3]float32{m.Pos.X, m.Pos.Y, m.Pos.Z},
			Radius: m.Radius,
		})
	}

	for _, a := range t.Agents() {
		m, _ := t.Member(a)
		task, _ := t.Task(a)
		pos, _ := t.Position(a)
		state.Members = append(state.Members, telemetry.MemberState{
			Agent:         m.Agent,
			Category:      m.Category,
			Gender:        m.Gender.String(),
			Pos:           [3]float32{pos.X, pos.Y, pos.Z},
			Task:          task.Kind.String(),
			TaskBuffer:    task.Buffer,
			TaskRemaining: task.Remaining,
		})
	}

	t.Pending().Walk(func(n *tribe.Node) {
		ns := telemetry.NodeState{
			ID:              n.ID.String(),
			Recipe:          n.Recipe.Name,
			Depth:           n.Depth,
			Mode:            n.Mode.String(),
			NextRequirement: n.NextRequirement,
			ResumeStep:      n.ResumeStep,
			WaitUntil:       n.WaitUntil(),
		}
		if parent := n.Parent(); parent != nil {
			ns.Parent = parent.ID.String()
		}
		state.Pending = append(state.Pending, ns)
	})

	return state
}
