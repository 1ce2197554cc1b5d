package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
)

// Display draws the dye field over the current framebuffer. Colour channels
// are shown as-is with alpha taken from the brightest channel.
type Display struct {
	shader rl.Shader
}

// NewDisplay compiles the display shader.
func NewDisplay() (*Display, error) {
	src, err := shaderSource("display.fs")
	if err != nil {
		return nil, err
	}
	p, err := LoadPassProgram("display", src)
	if err != nil {
		return nil, err
	}
	return &Display{shader: p.shader}, nil
}

// Draw stretches the visible region of dye across a screen of the given
// size. Targets store row 0 at the bottom, so the source rectangle is flipped.
func (d *Display) Draw(dye *Target, visible camera.Rect, screenW, screenH int32) {
	w, h := float32(dye.w), float32(dye.h)
	src := rl.Rectangle{
		X:      visible.U0 * w,
		Y:      visible.V0 * h,
		Width:  (visible.U1 - visible.U0) * w,
		Height: -(visible.V1 - visible.V0) * h,
	}
	dst := rl.Rectangle{Width: float32(screenW), Height: float32(screenH)}

	rl.BeginShaderMode(d.shader)
	rl.BeginBlendMode(rl.BlendAlpha)
	rl.DrawTexturePro(dye.rt.Texture, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
	rl.EndShaderMode()
}

// Unload frees the shader.
func (d *Display) Unload() {
	rl.UnloadShader(d.shader)
}
