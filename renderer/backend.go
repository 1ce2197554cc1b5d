package renderer

import (
	"embed"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
)

//go:embed shaders/*.fs
var shaderFS embed.FS

// programSpec names a pass shader and the uniforms it reads.
type programSpec struct {
	name     string
	file     string
	uniforms []string
}

var passSpecs = []programSpec{
	{"advect", "advect.fs", []string{"uVelocity", "uSource", "velocityTexelSize", "dt", "dissipation"}},
	{"divergence", "divergence.fs", []string{"uVelocity"}},
	{"curl", "curl.fs", []string{"uVelocity"}},
	{"vorticity", "vorticity.fs", []string{"uVelocity", "uCurl", "curl", "dt"}},
	{"pressure", "pressure.fs", []string{"uPressure", "uDivergence"}},
	{"gradient_subtract", "gradient.fs", []string{"uPressure", "uVelocity"}},
	{"splat", "splat.fs", []string{"uTarget", "point", "value", "radius", "aspectRatio", "density"}},
	{"clear", "clear.fs", []string{"uTarget", "value"}},
}

// shaderSource returns an embedded shader by file name.
func shaderSource(file string) (string, error) {
	b, err := shaderFS.ReadFile("shaders/" + file)
	if err != nil {
		return "", fmt.Errorf("reading shader %s: %w", file, err)
	}
	return string(b), nil
}

// Backend runs the pass programs on float render targets. It needs a live
// raylib window and must be used from the thread that created it.
type Backend struct {
	programs map[string]*PassProgram
}

var _ solver.Backend[*Target] = (*Backend)(nil)

// NewBackend compiles every pass program. On failure nothing stays loaded.
func NewBackend() (*Backend, error) {
	b := &Backend{programs: make(map[string]*PassProgram, len(passSpecs))}
	for _, spec := range passSpecs {
		src, err := shaderSource(spec.file)
		if err != nil {
			b.Close()
			return nil, err
		}
		p, err := LoadPassProgram(spec.name, src, spec.uniforms...)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.programs[spec.name] = p
	}
	slog.Debug("pass programs compiled", "count", len(b.programs))
	return b, nil
}

func (b *Backend) Name() string { return "gpu" }

func (b *Backend) NewBuffer(role field.Role, w, h int) (*Target, error) {
	return NewTarget(role, w, h)
}

func (b *Backend) Release(t *Target) { t.Unload() }

func (b *Backend) Advect(dst, velocity, source *Target, dt, dissipation float32) {
	p := b.programs["advect"]
	p.setVec2("velocityTexelSize", 1/float32(velocity.w), 1/float32(velocity.h))
	p.setFloat("dt", dt)
	p.setFloat("dissipation", dissipation)
	p.Run(dst, sampler{"uVelocity", velocity}, sampler{"uSource", source})
}

func (b *Backend) Divergence(dst, velocity *Target) {
	b.programs["divergence"].Run(dst, sampler{"uVelocity", velocity})
}

func (b *Backend) Curl(dst, velocity *Target) {
	b.programs["curl"].Run(dst, sampler{"uVelocity", velocity})
}

func (b *Backend) Vorticity(dst, velocity, curl *Target, strength, dt float32) {
	p := b.programs["vorticity"]
	p.setFloat("curl", strength)
	p.setFloat("dt", dt)
	p.Run(dst, sampler{"uVelocity", velocity}, sampler{"uCurl", curl})
}

func (b *Backend) Pressure(dst, pressure, divergence *Target) {
	b.programs["pressure"].Run(dst, sampler{"uPressure", pressure}, sampler{"uDivergence", divergence})
}

func (b *Backend) GradientSubtract(dst, pressure, velocity *Target) {
	b.programs["gradient_subtract"].Run(dst, sampler{"uPressure", pressure}, sampler{"uVelocity", velocity})
}

func (b *Backend) Splat(dst, target *Target, imp solver.Impulse) {
	p := b.programs["splat"]
	p.setVec2("point", clampUnit(imp.X), clampUnit(imp.Y))
	p.setVec4("value", imp.Value)
	p.setFloat("radius", imp.Radius)
	p.setFloat("aspectRatio", imp.Aspect)
	density := float32(0)
	if target.role == field.Dye {
		density = 1
	}
	p.setFloat("density", density)
	p.Run(dst, sampler{"uTarget", target})
}

func (b *Backend) Clear(dst, target *Target, value float32) {
	if value == 0 {
		rl.BeginTextureMode(dst.rt)
		rl.ClearBackground(rl.Blank)
		rl.EndTextureMode()
		return
	}
	p := b.programs["clear"]
	p.setFloat("value", value)
	p.Run(dst, sampler{"uTarget", target})
}

func (b *Backend) ReadBack(t *Target) (*field.Grid, error) {
	return t.ReadBack()
}

// Close unloads all pass programs.
func (b *Backend) Close() error {
	for name, p := range b.programs {
		p.Unload()
		delete(b.programs, name)
	}
	return nil
}

// clampUnit clamps a splat coordinate into [0, 1]; NaN maps to 0.
func clampUnit(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
