package telemetry

// Collector accumulates solver activity within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Counters for current window
	steps          int
	skippedSteps   int
	velocitySplats int
	dyeSplats      int
	resizes        int
	clears         int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: nominal seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(windowDurationSec / float64(dt))
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStep records a step; skipped marks a step dropped for an invalid dt.
func (c *Collector) RecordStep(skipped bool) {
	if skipped {
		c.skippedSteps++
		return
	}
	c.steps++
}

// RecordVelocitySplat records a velocity impulse.
func (c *Collector) RecordVelocitySplat() { c.velocitySplats++ }

// RecordDyeSplat records a dye impulse.
func (c *Collector) RecordDyeSplat() { c.dyeSplats++ }

// RecordResize records a field reallocation.
func (c *Collector) RecordResize() { c.resizes++ }

// RecordClear records a full clear.
func (c *Collector) RecordClear() { c.clears++ }

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, fields FieldStats) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Steps:          c.steps,
		SkippedSteps:   c.skippedSteps,
		VelocitySplats: c.velocitySplats,
		DyeSplats:      c.dyeSplats,
		Resizes:        c.resizes,
		Clears:         c.clears,

		FieldStats: fields,
	}

	c.windowStartTick = currentTick
	c.steps = 0
	c.skippedSteps = 0
	c.velocitySplats = 0
	c.dyeSplats = 0
	c.resizes = 0
	c.clears = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
