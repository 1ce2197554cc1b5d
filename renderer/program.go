package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PassProgram is a compiled fragment shader that fills a whole target.
type PassProgram struct {
	name   string
	shader rl.Shader
	locs   map[string]int32
}

// sampler binds a source target to a sampler uniform for one run.
type sampler struct {
	name   string
	target *Target
}

// LoadPassProgram compiles a fragment shader against raylib's default vertex
// shader and caches the locations of the named uniforms.
func LoadPassProgram(name, source string, uniforms ...string) (*PassProgram, error) {
	shader := rl.LoadShaderFromMemory("", source)
	// raylib falls back to the default shader when compilation fails.
	if !rl.IsShaderValid(shader) || shader.ID == rl.GetShaderIdDefault() {
		return nil, fmt.Errorf("%w: %s", ErrShaderCompile, name)
	}

	p := &PassProgram{
		name:   name,
		shader: shader,
		locs:   make(map[string]int32, len(uniforms)+1),
	}
	for _, u := range append([]string{"texelSize"}, uniforms...) {
		p.locs[u] = rl.GetShaderLocation(shader, u)
	}
	return p, nil
}

// Name returns the program name.
func (p *PassProgram) Name() string { return p.name }

func (p *PassProgram) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := rl.GetShaderLocation(p.shader, name)
	p.locs[name] = l
	return l
}

func (p *PassProgram) setFloat(name string, v float32) {
	rl.SetShaderValue(p.shader, p.loc(name), []float32{v}, rl.ShaderUniformFloat)
}

func (p *PassProgram) setVec2(name string, x, y float32) {
	rl.SetShaderValue(p.shader, p.loc(name), []float32{x, y}, rl.ShaderUniformVec2)
}

func (p *PassProgram) setVec4(name string, v [4]float32) {
	rl.SetShaderValue(p.shader, p.loc(name), v[:], rl.ShaderUniformVec4)
}

// Run draws a full-target quad into dst with blending off. Samplers are
// bound after the shader is active so raylib assigns them texture units.
// The batch is flushed before returning, so the pass has completed for any
// later pass that samples dst.
func (p *PassProgram) Run(dst *Target, samplers ...sampler) {
	p.setVec2("texelSize", 1/float32(dst.w), 1/float32(dst.h))

	rl.BeginTextureMode(dst.rt)
	rl.DisableColorBlend()
	rl.BeginShaderMode(p.shader)
	for _, s := range samplers {
		rl.SetShaderValueTexture(p.shader, p.loc(s.name), s.target.rt.Texture)
	}
	rl.DrawRectangle(0, 0, int32(dst.w), int32(dst.h), rl.White)
	rl.EndShaderMode()
	rl.DrawRenderBatchActive()
	rl.EnableColorBlend()
	rl.EndTextureMode()
}

// Unload frees the shader.
func (p *PassProgram) Unload() {
	if p == nil {
		return
	}
	rl.UnloadShader(p.shader)
}
