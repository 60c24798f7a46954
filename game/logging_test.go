package game

import (
	"testing"

	"github.com/pthm-cable/tribes/components"
	"github.com/pthm-cable/tribes/engine"
)

func TestFormatCounts(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]int
		want string
	}{
		{"empty", nil, ""},
		{"single", map[string]int{"wood": 3}, "wood=3"},
		{"sorted", map[string]int{"wood": 3, "flint": 1, "food": -2}, "flint=1 food=-2 wood=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCounts(tt.in); got != tt.want {
				t.Errorf("formatCounts = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskCounts(t *testing.T) {
	g := newTestGame(t, DefaultOptions())
	defer g.Unload()
	ts := g.tribes[0]

	ts.tribe.AssignTask([]engine.AgentID{1, 2}, components.TaskGather, 5)
	got := formatCounts(taskCounts(ts))
	if got != "Gather=2 Idle=3" {
		t.Errorf("task counts = %q", got)
	}
}

func TestLogStatsRun(t *testing.T) {
	opts := DefaultOptions()
	opts.LogStats = true
	opts.StatsWindowTicks = 5
	g := newTestGame(t, opts)
	defer g.Unload()

	for g.Tick() < 20 {
		g.UpdateHeadless()
	}
	if g.Tick() != 20 {
		t.Errorf("tick = %d", g.Tick())
	}
}
