package game

import "log/slog"

// flushTelemetry writes the window stats once per stats window.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.grid, g.arena.Slots())
	perf := g.perf.Stats()

	if g.onStats != nil {
		g.onStats(stats)
	}
	if g.logStats {
		stats.LogStats()
		perf.LogStats()
	}

	if err := g.output.WriteField(stats); err != nil {
		slog.Error("failed to write field stats", "error", err)
	}
	if err := g.output.WritePerf(perf, g.tick); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
}
