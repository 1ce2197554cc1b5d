package game

import (
	"log/slog"

	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	fields := g.sampleFields()
	g.lastFields = fields

	stats := g.collector.Flush(g.tick, fields)
	stats.SimTimeSec = g.simTime
	perfStats := g.perfCollector.Stats()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// sampleFields reads the velocity, dye and divergence fields back and
// summarizes them. Fields that fail to read back are left out.
func (g *Game) sampleFields() telemetry.FieldStats {
	velocity, err := g.sim.Snapshot(solver.QuantityVelocity)
	if err != nil {
		slog.Warn("velocity readback failed", "error", err)
	}
	dye, err := g.sim.Snapshot(solver.QuantityDye)
	if err != nil {
		slog.Warn("dye readback failed", "error", err)
	}
	divergence, err := g.sim.Snapshot(solver.QuantityDivergence)
	if err != nil {
		slog.Warn("divergence readback failed", "error", err)
	}
	return telemetry.ComputeFieldStats(velocity, dye, divergence)
}
