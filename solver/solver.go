// Package solver owns the simulation fields and runs the stable-fluids step.
package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/telemetry"
)

// ErrInvalidScale is returned by Resize for a non-positive or non-finite scale.
var ErrInvalidScale = errors.New("solver: invalid resize scale")

// Quantity names a field owned by the solver.
type Quantity uint8

const (
	QuantityVelocity Quantity = iota
	QuantityDye
	QuantityPressure
	QuantityDivergence
	QuantityCurl
)

// Options configures a solver.
type Options struct {
	Fluid          config.FluidConfig
	Aspect         float32 // display width / height
	Scale          float32 // device pixel ratio; 0 means 1
	MaxTextureSize int
}

// OptionsFromConfig builds solver options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Fluid:          cfg.Fluid,
		Aspect:         cfg.Derived.Aspect,
		Scale:          1,
		MaxTextureSize: cfg.GPU.MaxTextureSize,
	}
}

// fields groups every buffer that is reallocated together.
type fields[T field.Buffer] struct {
	velocity   *field.DoubleBuffer[T]
	dye        *field.DoubleBuffer[T]
	pressure   *field.DoubleBuffer[T]
	divergence T
	curl       T
}

// Solver runs the simulation on a Backend. It is not safe for concurrent use:
// Step, the splat methods and Resize must be called from one goroutine.
type Solver[T field.Buffer] struct {
	backend Backend[T]
	opts    Options
	f       fields[T]

	perf *telemetry.PerfCollector
	log  *slog.Logger
}

// New allocates all fields zero-filled at the resolution implied by opts.
func New[T field.Buffer](b Backend[T], opts Options) (*Solver[T], error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	s := &Solver[T]{
		backend: b,
		opts:    opts,
		log:     slog.Default().With("backend", b.Name()),
	}
	f, err := s.allocate(opts.Scale)
	if err != nil {
		return nil, err
	}
	s.f = f
	s.log.Debug("fluid initialized", "sim", sizeAttr(f.velocity), "dye", sizeAttr(f.dye))
	return s, nil
}

// Step advances the simulation by dt seconds. A non-positive or non-finite
// dt is a caller error; the step is skipped and no field changes.
func (s *Solver[T]) Step(dt float32) {
	if !(dt > 0) || math.IsInf(float64(dt), 1) {
		s.log.Debug("step skipped", "dt", dt)
		return
	}

	b := s.backend
	p := s.opts.Fluid
	f := &s.f

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseAdvectVelocity)
	b.Advect(f.velocity.Write(), f.velocity.Read(), f.velocity.Read(), dt, float32(p.VelocityDissipation))
	f.velocity.Swap()

	s.perf.StartPhase(telemetry.PhaseAdvectDye)
	b.Advect(f.dye.Write(), f.velocity.Read(), f.dye.Read(), dt, float32(p.DensityDissipation))
	f.dye.Swap()

	s.perf.StartPhase(telemetry.PhaseCurl)
	b.Curl(f.curl, f.velocity.Read())

	s.perf.StartPhase(telemetry.PhaseVorticity)
	b.Vorticity(f.velocity.Write(), f.velocity.Read(), f.curl, float32(p.Vorticity), dt)
	f.velocity.Swap()

	s.perf.StartPhase(telemetry.PhaseDivergence)
	b.Divergence(f.divergence, f.velocity.Read())

	s.perf.StartPhase(telemetry.PhasePressure)
	if p.PressureRetain != 1 {
		b.Clear(f.pressure.Write(), f.pressure.Read(), float32(p.PressureRetain))
		f.pressure.Swap()
	}
	for i := 0; i < p.PressureIterations; i++ {
		b.Pressure(f.pressure.Write(), f.pressure.Read(), f.divergence)
		f.pressure.Swap()
	}

	s.perf.StartPhase(telemetry.PhaseGradientSubtract)
	b.GradientSubtract(f.velocity.Write(), f.pressure.Read(), f.velocity.Read())
	f.velocity.Swap()

	s.perf.EndTick()
}

// AddVelocitySplat adds force (fx, fy) around the normalized point (x, y).
func (s *Solver[T]) AddVelocitySplat(x, y, fx, fy float32) {
	s.splat(s.f.velocity, x, y, [4]float32{fx, fy})
}

// AddDyeSplat adds colour (r, g, b) and density around the normalized point (x, y).
func (s *Solver[T]) AddDyeSplat(x, y, r, g, b float32) {
	s.splat(s.f.dye, x, y, [4]float32{r, g, b})
}

func (s *Solver[T]) splat(d *field.DoubleBuffer[T], x, y float32, v [4]float32) {
	s.backend.Splat(d.Write(), d.Read(), Impulse{
		X:      x,
		Y:      y,
		Value:  v,
		Radius: s.splatRadius(),
		Aspect: s.opts.Aspect,
	})
	d.Swap()
}

// splatRadius widens the falloff on landscape displays so splats stay round
// on screen.
func (s *Solver[T]) splatRadius() float32 {
	r := float32(s.opts.Fluid.SplatRadius)
	if s.opts.Aspect > 1 {
		r *= s.opts.Aspect
	}
	return r
}

// Resize reallocates every field for the given device scale, zero-filled.
// On any error the previous fields are kept unchanged.
func (s *Solver[T]) Resize(scale float32) error {
	if !(scale > 0) || math.IsInf(float64(scale), 1) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	f, err := s.allocate(scale)
	if err != nil {
		return err
	}

	old := s.f
	s.f = f
	s.opts.Scale = scale
	s.release(old)

	s.log.Info("fluid resized", "scale", scale, "sim", sizeAttr(f.velocity), "dye", sizeAttr(f.dye))
	return nil
}

// SetAspect records the display aspect ratio. Splats use it immediately;
// grid dimensions follow on the next Resize.
func (s *Solver[T]) SetAspect(aspect float32) {
	if aspect > 0 && !math.IsInf(float64(aspect), 1) {
		s.opts.Aspect = aspect
	}
}

// Clear zeroes velocity, dye and pressure.
func (s *Solver[T]) Clear() {
	for _, d := range []*field.DoubleBuffer[T]{s.f.velocity, s.f.dye, s.f.pressure} {
		s.backend.Clear(d.Write(), d.Read(), 0)
		d.Swap()
	}
}

// SetParams replaces the tunables. Sizes take effect on the next Resize.
func (s *Solver[T]) SetParams(p config.FluidConfig) {
	s.opts.Fluid = p
}

// Params returns the current tunables.
func (s *Solver[T]) Params() config.FluidConfig {
	return s.opts.Fluid
}

// SetPerf attaches a collector that receives per-pass timings. nil detaches.
func (s *Solver[T]) SetPerf(p *telemetry.PerfCollector) {
	s.perf = p
}

func (s *Solver[T]) Velocity() T   { return s.f.velocity.Read() }
func (s *Solver[T]) Dye() T        { return s.f.dye.Read() }
func (s *Solver[T]) Pressure() T   { return s.f.pressure.Read() }
func (s *Solver[T]) Divergence() T { return s.f.divergence }
func (s *Solver[T]) Curl() T       { return s.f.curl }

// SimSize returns the velocity grid dimensions.
func (s *Solver[T]) SimSize() (int, int) { return s.f.velocity.Size() }

// DyeSize returns the dye grid dimensions.
func (s *Solver[T]) DyeSize() (int, int) { return s.f.dye.Size() }

// Backend returns the backend the solver runs on.
func (s *Solver[T]) Backend() Backend[T] { return s.backend }

// Snapshot copies a field into CPU memory.
func (s *Solver[T]) Snapshot(q Quantity) (*field.Grid, error) {
	var buf T
	switch q {
	case QuantityVelocity:
		buf = s.Velocity()
	case QuantityDye:
		buf = s.Dye()
	case QuantityPressure:
		buf = s.Pressure()
	case QuantityDivergence:
		buf = s.Divergence()
	case QuantityCurl:
		buf = s.Curl()
	default:
		return nil, fmt.Errorf("solver: unknown quantity %d", q)
	}
	return s.backend.ReadBack(buf)
}

// Close releases all fields. The backend stays open.
func (s *Solver[T]) Close() error {
	s.release(s.f)
	s.f = fields[T]{}
	return nil
}

// allocate creates a complete set of fields for scale. Partially created
// sets are released on failure.
func (s *Solver[T]) allocate(scale float32) (fields[T], error) {
	var (
		f     fields[T]
		owned []T
	)
	fail := func(err error) (fields[T], error) {
		for _, buf := range owned {
			s.backend.Release(buf)
		}
		return fields[T]{}, fmt.Errorf("allocating fields: %w", err)
	}
	alloc := func(role field.Role, w, h int) (T, error) {
		buf, err := s.backend.NewBuffer(role, w, h)
		if err == nil {
			owned = append(owned, buf)
		}
		return buf, err
	}
	pair := func(role field.Role, w, h int) (*field.DoubleBuffer[T], error) {
		a, err := alloc(role, w, h)
		if err != nil {
			return nil, err
		}
		b, err := alloc(role, w, h)
		if err != nil {
			return nil, err
		}
		return field.NewDoubleBuffer(a, b), nil
	}

	simW, simH := config.Resolution(s.opts.Fluid.SimSize, s.opts.Aspect, scale, s.opts.MaxTextureSize)
	dyeW, dyeH := config.Resolution(s.opts.Fluid.DyeSize, s.opts.Aspect, scale, s.opts.MaxTextureSize)

	var err error
	if f.velocity, err = pair(field.Velocity, simW, simH); err != nil {
		return fail(err)
	}
	if f.dye, err = pair(field.Dye, dyeW, dyeH); err != nil {
		return fail(err)
	}
	if f.pressure, err = pair(field.Scalar, simW, simH); err != nil {
		return fail(err)
	}
	if f.divergence, err = alloc(field.Scalar, simW, simH); err != nil {
		return fail(err)
	}
	if f.curl, err = alloc(field.Scalar, simW, simH); err != nil {
		return fail(err)
	}
	return f, nil
}

func (s *Solver[T]) release(f fields[T]) {
	if f.velocity == nil {
		return
	}
	for _, d := range []*field.DoubleBuffer[T]{f.velocity, f.dye, f.pressure} {
		s.backend.Release(d.Read())
		s.backend.Release(d.Write())
	}
	s.backend.Release(f.divergence)
	s.backend.Release(f.curl)
}

func sizeAttr(b field.Buffer) string {
	w, h := b.Size()
	return fmt.Sprintf("%dx%d", w, h)
}
