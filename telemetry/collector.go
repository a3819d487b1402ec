package telemetry

import (
	"math"

	"github.com/pthm-cable/miasma/systems"
)

// CoverageThreshold is the pressure above which a cell counts as covered.
const CoverageThreshold = 0.05

// Collector accumulates events within time windows and produces FieldStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	spawned   int
	expired   int
	despawned int
	inflow    float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventSpawn:
		c.spawned++
	case EventExpire:
		c.expired++
	case EventDespawn:
		c.despawned++
	case EventInflow:
		c.inflow += float64(ev.Amount)
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush summarizes the grid and live wisps, then resets counters for the
// next window. grid may be nil when no level is loaded.
func (c *Collector) Flush(currentTick int32, grid *systems.FieldGrid, wisps []systems.MiasmaSprite) FieldStats {
	stats := FieldStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		LiveWisps:       len(wisps),
		Spawned:         c.spawned,
		Expired:         c.expired,
		Despawned:       c.despawned,
		Inflow:          c.inflow,
	}

	if grid != nil {
		stats.TotalPressure, stats.PressureMean, stats.PressureP50, stats.PressureP90,
			stats.PressureMax, stats.CoverageFrac = PressureSummary(grid.Pressure, CoverageThreshold)

		var sum float64
		for _, v := range grid.Velocity {
			speed := float64(v.Len())
			sum += speed
			stats.MaxSpeed = math.Max(stats.MaxSpeed, speed)
		}
		if len(grid.Velocity) > 0 {
			stats.MeanSpeed = sum / float64(len(grid.Velocity))
		}
	}

	if len(wisps) > 0 {
		var vis float64
		for i := range wisps {
			vis += float64(wisps[i].Visibility)
		}
		stats.MeanVisibility = vis / float64(len(wisps))
	}

	c.windowStartTick = currentTick
	c.spawned = 0
	c.expired = 0
	c.despawned = 0
	c.inflow = 0

	return stats
}

// Reset restarts the window at tick, dropping counted events.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.spawned, c.expired, c.despawned = 0, 0, 0
	c.inflow = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
