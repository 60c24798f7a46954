package game

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/pthm-cable/tribes/components"
)

// logWorldState logs one summary line per tribe.
func (g *Game) logWorldState() {
	for _, ts := range g.tribes {
		t := ts.tribe
		attrs := []any{
			"tick", g.tick,
			"sim_time", g.now,
			"tribe", t.ID(),
			"name", t.Name(),
			"members", t.MemberCount(),
			"pending", t.Pending().Len(),
			"resources", formatCounts(t.Resources()),
			"buildings", formatCounts(t.Buildings()),
			"memories", len(t.Memories()),
			"tasks", formatCounts(taskCounts(ts)),
		}
		if ts.last.Node != nil {
			attrs = append(attrs,
				"last_recipe", ts.last.Node.Recipe.Name,
				"last_outcome", ts.last.Result.Outcome.String(),
			)
		}
		g.logger.Info("tribe state", attrs...)
	}
}

// taskCounts counts members by current task.
func taskCounts(ts *tribeState) map[string]int {
	byKind := make([]int, components.TaskKindCount())
	for _, a := range ts.tribe.Agents() {
		task, _ := ts.tribe.Task(a)
		byKind[task.Kind]++
	}
	counts := make(map[string]int)
	for k, n := range byKind {
		if n > 0 {
			counts[components.TaskKind(k).String()] = n
		}
	}
	return counts
}

// formatCounts renders a ledger as "a=1 b=2" in key order.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strconv.Itoa(m[k]))
	}
	return sb.String()
}

// LogValue implements slog.LogValuer so options show up grouped in logs.
func (o Options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("seed", o.Seed),
		slog.Bool("log_stats", o.LogStats),
		slog.Int("stats_window_ticks", o.StatsWindowTicks),
		slog.String("output_dir", o.OutputDir),
		slog.Bool("trace", o.Trace),
		slog.Int("workers", o.Workers),
	)
}
