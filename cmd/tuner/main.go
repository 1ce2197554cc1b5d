// Fluid tuner - interactive CPU solver preview with sliders for the solver
// parameters. Drag in the preview to stir; the panel shows the matching
// fluid: block for config.yaml.
//
// Usage: go run ./cmd/tuner
package main

import (
	"fmt"
	"math/rand"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/splat"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	sliderWidth  = panelWidth - 80
)

// panel lays out slider rows top to bottom.
type panel struct {
	x, y float32
}

// slider draws a labelled slider and returns the new value.
func (p *panel) slider(label, format string, value, min, max float32) float32 {
	rl.DrawText(label, int32(p.x), int32(p.y), 14, rl.Gray)
	p.y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: p.x, Y: p.y, Width: sliderWidth, Height: 20},
		fmt.Sprintf(format, min), fmt.Sprintf(format, max),
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(p.x+float32(panelWidth-70)), int32(p.y+2), 16, rl.DarkGray)
	p.y += 35
	return v
}

func main() {
	cfg, err := config.Defaults()
	if err != nil {
		panic(err)
	}
	defaults := cfg.Fluid
	params := defaults
	params.SimSize = 64
	params.DyeSize = 128
	force := float32(cfg.Splat.Force)

	rl.InitWindow(windowWidth, windowHeight, "Fluid Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	backend := solver.NewCPUBackend(0)
	defer backend.Close()
	sim, err := solver.New[*field.Grid](backend, solver.Options{Fluid: params, Aspect: 1, Scale: 1})
	if err != nil {
		panic(err)
	}
	defer sim.Close()

	rng := rand.New(rand.NewSource(1))
	palette, err := splat.NewPalette(cfg.Splat.Palette, cfg.Splat.ColorIntensity)
	if err != nil {
		panic(err)
	}
	splat.Random(sim, rng, palette, 10)

	dw, dh := sim.DyeSize()
	img := rl.GenImageColor(dw, dh, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	pixels := make([]rl.Color, dw*dh)

	var pointer splat.Pointer
	paused := false

	for !rl.WindowShouldClose() {
		// Stir inside the preview
		mouse := rl.GetMousePosition()
		x, y := splat.Normalize(mouse.X-10, mouse.Y-10, previewSize, previewSize)
		inPreview := x >= 0 && x <= 1 && y >= 0 && y <= 1
		switch {
		case inPreview && rl.IsMouseButtonPressed(rl.MouseButtonLeft):
			pointer.Press(x, y, palette.Pick(rng))
		case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
			pointer.Release()
		case inPreview && rl.IsMouseButtonDown(rl.MouseButtonLeft):
			pointer.Move(x, y, 1)
		}
		pointer.Apply(sim, force)

		if !paused {
			sim.Step(1.0 / 30)
		}
		updateTexture(texture, sim.Dye(), pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(dw), Height: float32(dh)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		vel := sim.Velocity()
		rl.DrawText(fmt.Sprintf("Sim: %dx%d  Dye: %dx%d", vel.W, vel.H, dw, dh), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Drag in the preview to stir", 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		p := panel{x: float32(previewSize + 20), y: 10}
		rl.DrawText("Fluid Parameters", int32(p.x), int32(p.y), 20, rl.DarkGray)
		p.y += 35

		next := params
		next.DensityDissipation = float64(p.slider("Density dissipation", "%.3f", float32(params.DensityDissipation), 0.9, 1))
		next.VelocityDissipation = float64(p.slider("Velocity dissipation", "%.3f", float32(params.VelocityDissipation), 0.9, 1))
		next.PressureIterations = int(p.slider("Pressure iterations", "%.0f", float32(params.PressureIterations), 0, 80))
		next.PressureRetain = float64(p.slider("Pressure retain", "%.2f", float32(params.PressureRetain), 0, 1))
		next.Vorticity = float64(p.slider("Vorticity", "%.1f", float32(params.Vorticity), 0, 60))
		next.SplatRadius = float64(p.slider("Splat radius", "%.4f", float32(params.SplatRadius), 0.0005, 0.01))
		force = p.slider("Splat force", "%.0f", force, 500, 12000)
		if next != params {
			params = next
			sim.SetParams(params)
		}

		p.y += 10
		if gui.Button(rl.Rectangle{X: p.x, Y: p.y, Width: 120, Height: 30}, "Burst") {
			splat.Random(sim, rng, palette, splat.BurstSize(rng, cfg.Splat.RandomCountMin, cfg.Splat.RandomCountMax))
		}
		if gui.Button(rl.Rectangle{X: p.x + 130, Y: p.y, Width: 120, Height: 30}, "Clear") {
			sim.Clear()
		}
		if gui.Button(rl.Rectangle{X: p.x + 260, Y: p.y, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		p.y += 40
		if gui.Button(rl.Rectangle{X: p.x, Y: p.y, Width: 120, Height: 30}, "Reset All") {
			params.DensityDissipation = defaults.DensityDissipation
			params.VelocityDissipation = defaults.VelocityDissipation
			params.PressureIterations = defaults.PressureIterations
			params.PressureRetain = defaults.PressureRetain
			params.Vorticity = defaults.Vorticity
			params.SplatRadius = defaults.SplatRadius
			force = float32(cfg.Splat.Force)
			sim.SetParams(params)
		}
		p.y += 50

		// Output YAML
		block := fluidYAML(params, defaults)
		rl.DrawText("YAML Config:", int32(p.x), int32(p.y), 16, rl.DarkGray)
		p.y += 25
		for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
			rl.DrawText(line, int32(p.x), int32(p.y), 14, rl.Gray)
			p.y += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(p.x), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(block)
		}

		rl.EndDrawing()
	}
}

// fluidYAML renders the tuned parameters as a fluid: block. Grid sizes keep
// their configured values since the preview runs smaller grids.
func fluidYAML(params, defaults config.FluidConfig) string {
	params.SimSize = defaults.SimSize
	params.DyeSize = defaults.DyeSize
	out, err := yaml.Marshal(map[string]config.FluidConfig{"fluid": params})
	if err != nil {
		return err.Error()
	}
	return string(out)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// updateTexture uploads the dye grid, flipped so row 0 is drawn at the bottom.
func updateTexture(texture rl.Texture2D, dye *field.Grid, pixels []rl.Color) {
	img := field.DyeImage(dye, dye.W, dye.H)
	for i := range pixels {
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		pixels[i] = rl.Color{R: p[0], G: p[1], B: p[2], A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
