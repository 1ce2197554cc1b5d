package solver

import (
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/kernel"
)

// Impulse is a Gaussian splat request in normalized coordinates.
type Impulse struct {
	X, Y   float32
	Value  [4]float32 // force (x, y) for velocity, colour (r, g, b) for dye
	Radius float32
	Aspect float32 // width / height of the display
}

// Backend executes pass programs on buffers of type T. Every pass writes dst
// and reads only its other arguments; dst never aliases a source. A pass has
// completed when the call returns, as far as later passes are concerned.
type Backend[T field.Buffer] interface {
	Name() string

	// NewBuffer allocates a zero-filled buffer for the role.
	NewBuffer(role field.Role, w, h int) (T, error)
	Release(buf T)

	Advect(dst, velocity, source T, dt, dissipation float32)
	Divergence(dst, velocity T)
	Curl(dst, velocity T)
	Vorticity(dst, velocity, curl T, strength, dt float32)
	Pressure(dst, pressure, divergence T)
	GradientSubtract(dst, pressure, velocity T)
	Splat(dst, target T, imp Impulse)
	Clear(dst, target T, value float32)

	// ReadBack copies a buffer into CPU memory.
	ReadBack(buf T) (*field.Grid, error)
	Close() error
}

// CPUBackend runs the pass programs in Go over *field.Grid buffers.
type CPUBackend struct {
	pool *kernel.Pool
}

// NewCPUBackend creates a CPU backend with the given worker count
// (0 = GOMAXPROCS, 1 = single-threaded).
func NewCPUBackend(workers int) *CPUBackend {
	var pool *kernel.Pool
	if workers != 1 {
		pool = kernel.NewPool(workers)
	}
	return &CPUBackend{pool: pool}
}

func (c *CPUBackend) Name() string { return "cpu" }

func (c *CPUBackend) NewBuffer(role field.Role, w, h int) (*field.Grid, error) {
	return field.NewGrid(role, w, h)
}

func (c *CPUBackend) Release(*field.Grid) {}

func (c *CPUBackend) Advect(dst, velocity, source *field.Grid, dt, dissipation float32) {
	kernel.Advect(c.pool, dst, velocity, source, dt, dissipation)
}

func (c *CPUBackend) Divergence(dst, velocity *field.Grid) {
	kernel.Divergence(c.pool, dst, velocity)
}

func (c *CPUBackend) Curl(dst, velocity *field.Grid) {
	kernel.Curl(c.pool, dst, velocity)
}

func (c *CPUBackend) Vorticity(dst, velocity, curl *field.Grid, strength, dt float32) {
	kernel.Vorticity(c.pool, dst, velocity, curl, strength, dt)
}

func (c *CPUBackend) Pressure(dst, pressure, divergence *field.Grid) {
	kernel.Pressure(c.pool, dst, pressure, divergence)
}

func (c *CPUBackend) GradientSubtract(dst, pressure, velocity *field.Grid) {
	kernel.GradientSubtract(c.pool, dst, pressure, velocity)
}

func (c *CPUBackend) Splat(dst, target *field.Grid, imp Impulse) {
	kernel.Splat(c.pool, dst, target, imp.X, imp.Y, imp.Value, imp.Radius, imp.Aspect)
}

func (c *CPUBackend) Clear(dst, target *field.Grid, value float32) {
	kernel.Clear(dst, target, value)
}

func (c *CPUBackend) ReadBack(buf *field.Grid) (*field.Grid, error) {
	return buf.Clone(), nil
}

// Close stops the worker pool.
func (c *CPUBackend) Close() error {
	c.pool.Close()
	return nil
}
