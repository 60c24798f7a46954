package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstBuilding BookmarkType = "first_building"
	BookmarkGrowthSpurt   BookmarkType = "growth_spurt"
	BookmarkCycleCut      BookmarkType = "cycle_cut"
	BookmarkBacklog       BookmarkType = "backlog"
	BookmarkStalled       BookmarkType = "stalled"
)

// stalledWindows is how many windows without a completion count as a stall.
const stalledWindows = 5

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Tribe       int          `csv:"tribe"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"tribe", b.Tribe,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in one tribe's history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	builtAnything bool
	idleWithWork  int // consecutive windows with pending work and no completion
	stallReported bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstBuilding(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCycleCut(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStalled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkGrowthSpurt(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkBacklog(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) bookmark(t BookmarkType, stats WindowStats, format string, args ...any) *Bookmark {
	return &Bookmark{
		Type:        t,
		Tick:        stats.WindowEndTick,
		Tribe:       stats.Tribe,
		Description: fmt.Sprintf(format, args...),
	}
}

func (bd *BookmarkDetector) checkFirstBuilding(stats WindowStats) *Bookmark {
	if bd.builtAnything || stats.Buildings == 0 {
		return nil
	}
	bd.builtAnything = true
	return bd.bookmark(BookmarkFirstBuilding, stats, "First structure raised at %.0fs", stats.SimTimeSec)
}

func (bd *BookmarkDetector) checkCycleCut(stats WindowStats) *Bookmark {
	if stats.CyclesCut == 0 {
		return nil
	}
	return bd.bookmark(BookmarkCycleCut, stats, "%d prerequisite cycle(s) dropped", stats.CyclesCut)
}

func (bd *BookmarkDetector) checkStalled(stats WindowStats) *Bookmark {
	if stats.Pending == 0 || stats.Completed > 0 {
		bd.idleWithWork = 0
		bd.stallReported = false
		return nil
	}
	bd.idleWithWork++
	if bd.idleWithWork < stalledWindows || bd.stallReported {
		return nil
	}
	// Trigger once per stall.
	bd.stallReported = true
	return bd.bookmark(BookmarkStalled, stats, "%d pending recipes, none completed in %d windows", stats.Pending, bd.idleWithWork)
}

func (bd *BookmarkDetector) checkGrowthSpurt(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Births < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Births
	}
	avg := float64(total) / float64(len(history))
	if avg > 0 && float64(stats.Births) <= avg*2.0 {
		return nil
	}
	return bd.bookmark(BookmarkGrowthSpurt, stats, "%d births against a rolling average of %.1f", stats.Births, avg)
}

func (bd *BookmarkDetector) checkBacklog(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Pending < 10 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Pending
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 || float64(stats.Pending) <= avg*2.0 {
		return nil
	}
	return bd.bookmark(BookmarkBacklog, stats, "Pending tree grew to %d nodes, %.1fx average (%.1f)", stats.Pending, float64(stats.Pending)/avg, avg)
}
