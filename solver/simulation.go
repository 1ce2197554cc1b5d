package solver

import (
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/telemetry"
)

// Simulation is the backend-independent surface of a Solver, for drivers that
// do not care which buffer type the fields live in.
type Simulation interface {
	Step(dt float32)
	AddVelocitySplat(x, y, fx, fy float32)
	AddDyeSplat(x, y, r, g, b float32)
	Resize(scale float32) error
	SetAspect(aspect float32)
	Clear()
	SetParams(p config.FluidConfig)
	Params() config.FluidConfig
	SetPerf(p *telemetry.PerfCollector)
	SimSize() (int, int)
	DyeSize() (int, int)
	Snapshot(q Quantity) (*field.Grid, error)
	Close() error
}

var _ Simulation = (*Solver[*field.Grid])(nil)
