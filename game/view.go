package game

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/solver"
)

// view draws the visible part of the dye field to the window.
type view interface {
	Draw(visible camera.Rect, screenW, screenH int32)
	Unload()
}

// gpuView draws the dye target directly.
type gpuView struct {
	sim     *solver.Solver[*renderer.Target]
	display *renderer.Display
}

func (v *gpuView) Draw(visible camera.Rect, screenW, screenH int32) {
	v.display.Draw(v.sim.Dye(), visible, screenW, screenH)
}

func (v *gpuView) Unload() {
	v.display.Unload()
}

// cpuView uploads the CPU dye grid into an RGBA8 texture every frame.
type cpuView struct {
	sim    *solver.Solver[*field.Grid]
	tex    rl.Texture2D
	w, h   int
	pixels []color.RGBA
}

func (v *cpuView) Draw(visible camera.Rect, screenW, screenH int32) {
	dye := v.sim.Dye()
	if dye.W != v.w || dye.H != v.h {
		v.reload(dye.W, dye.H)
	}

	img := field.DyeImage(dye, v.w, v.h)
	for i := range v.pixels {
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		v.pixels[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	rl.UpdateTexture(v.tex, v.pixels)

	// The uploaded image has row 0 at the top.
	w, h := float32(v.w), float32(v.h)
	src := rl.Rectangle{
		X:      visible.U0 * w,
		Y:      (1 - visible.V1) * h,
		Width:  (visible.U1 - visible.U0) * w,
		Height: (visible.V1 - visible.V0) * h,
	}
	dst := rl.Rectangle{Width: float32(screenW), Height: float32(screenH)}
	rl.DrawTexturePro(v.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// reload recreates the texture after a resize.
func (v *cpuView) reload(w, h int) {
	v.Unload()
	img := rl.GenImageColor(w, h, rl.Black)
	v.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(v.tex, rl.FilterBilinear)
	v.w, v.h = w, h
	v.pixels = make([]color.RGBA, w*h)
}

func (v *cpuView) Unload() {
	if v.tex.ID != 0 {
		rl.UnloadTexture(v.tex)
		v.tex = rl.Texture2D{}
	}
}
