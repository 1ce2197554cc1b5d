package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEnergySpike     BookmarkType = "energy_spike"
	BookmarkDivergenceSpike BookmarkType = "divergence_spike"
	BookmarkSaturated       BookmarkType = "velocity_saturated"
	BookmarkQuiescent       BookmarkType = "quiescent"
)

// Detection thresholds.
const (
	spikeMultiplier    = 3.0
	saturationSpeed    = 990 // vorticity pass clamps at 1000
	quiescentEnergy    = 1e-6
	minSpikeHistoryLen = 3
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector flags notable windows: sudden energy or divergence
// growth, velocities pinned at the clamp, and the flow coming to rest.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	wasActive bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < minSpikeHistoryLen {
		historySize = minSpikeHistoryLen
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	f := stats.FieldStats

	if avg, ok := bd.average(func(s WindowStats) float64 { return s.KineticEnergy }); ok {
		if avg > 0 && f.KineticEnergy > spikeMultiplier*avg {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkEnergySpike,
				Tick:        stats.WindowEndTick,
				Description: fmt.Sprintf("kinetic energy %.3g vs rolling average %.3g", f.KineticEnergy, avg),
			})
		}
	}
	if avg, ok := bd.average(func(s WindowStats) float64 { return s.DivergenceRMS }); ok {
		if avg > 0 && f.DivergenceRMS > spikeMultiplier*avg {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkDivergenceSpike,
				Tick:        stats.WindowEndTick,
				Description: fmt.Sprintf("divergence rms %.3g vs rolling average %.3g", f.DivergenceRMS, avg),
			})
		}
	}
	if f.MaxSpeed >= saturationSpeed {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkSaturated,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("max speed %.1f at clamp", f.MaxSpeed),
		})
	}

	active := f.KineticEnergy > quiescentEnergy
	if bd.wasActive && !active {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkQuiescent,
			Tick:        stats.WindowEndTick,
			Description: "flow came to rest",
		})
	}
	bd.wasActive = active

	bd.addToHistory(stats)
	return bookmarks
}

// average returns the mean of metric over history, or false when the
// history is too short to compare against.
func (bd *BookmarkDetector) average(metric func(WindowStats) float64) (float64, bool) {
	history := bd.getHistory()
	if len(history) < minSpikeHistoryLen {
		return 0, false
	}
	var sum float64
	for _, h := range history {
		sum += metric(h)
	}
	return sum / float64(len(history)), true
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
