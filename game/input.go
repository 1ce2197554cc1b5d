package game

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// controlsLegend is shown at the bottom of the window, followed by the
// overlay keys.
const controlsLegend = "Drag: stir | Wheel/right drag: zoom/pan | R: reset view | Middle click: probe | Space: burst | P: pause | C: clear | F12: capture | "

// zoomStep is the zoom factor per mouse wheel notch.
const zoomStep = 1.1

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.ClearFields()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.cam.Reset()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.queueBurst()
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		if path, err := g.Capture(); err != nil {
			slog.Error("capture failed", "error", err)
		} else {
			slog.Info("captured", "path", path)
		}
	}

	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			on := g.overlays.Toggle(desc.ID)
			slog.Debug("overlay toggled", "overlay", desc.ID, "enabled", on)
		}
	}

	g.handleCamera()
	pos := rl.GetMousePosition()
	g.inspector.HandleInput(pos.X, pos.Y, g.cam)
	g.handlePointer()
}

// handleCamera zooms around the cursor with the wheel and pans with the
// right mouse button.
func (g *Game) handleCamera() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		pos := rl.GetMousePosition()
		g.cam.ZoomAt(pos.X, pos.Y, float32(math.Pow(zoomStep, float64(wheel))))
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.cam.Pan(-d.X, -d.Y)
	}
}

// handlePointer maps the mouse onto the gesture pointer.
func (g *Game) handlePointer() {
	pos := rl.GetMousePosition()
	x, y := g.cam.Normalized(pos.X, pos.Y)

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		g.pointer.Press(x, y, g.palette.Pick(g.rng))
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		g.pointer.Release()
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		g.pointer.Move(x, y, g.screenWidth/g.screenHeight)
	}
}

// handleResize checks for window resize and reallocates the fields at the
// new aspect and device scale.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	if w <= 0 || h <= 0 {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.cam.Resize(w, h)
	g.inspector.Resize(int32(w))

	g.sim.SetAspect(w / h)
	if err := g.sim.Resize(rl.GetWindowScaleDPI().X); err != nil {
		slog.Error("resize failed", "error", err)
		return
	}
	g.collector.RecordResize()
}
