package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/ui"
)

// velocityStep is the screen spacing of velocity overlay arrows in pixels.
const velocityStep = 24

// Draw renders the dye field and enabled overlays.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	sw, sh := int32(g.screenWidth), int32(g.screenHeight)
	g.view.Draw(g.cam.Visible(), sw, sh)

	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.drawVelocity()
	}
	if g.overlays.IsEnabled(ui.OverlayTracers) {
		g.drawTracers()
	}
	g.inspector.Draw(g.cam)
	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders HUD elements.
func (g *Game) drawUI() {
	sh := int32(g.screenHeight)

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		w, h := g.sim.SimSize()
		dw, dh := g.sim.DyeSize()
		backend := "cpu"
		if _, ok := g.view.(*gpuView); ok {
			backend = "gpu"
		}
		g.hud.Draw(ui.HUDData{
			Title:   "Fluid",
			Backend: backend,
			SimW:    w,
			SimH:    h,
			DyeW:    dw,
			DyeH:    dh,
			Tick:    g.tick,
			FPS:     rl.GetFPS(),
			Paused:  g.paused,
			Palette: g.palette.Name(),
		})
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}
	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.statsPanel.Draw(g.lastFields)
	}
	if g.overlays.IsEnabled(ui.OverlayControls) {
		g.hud.DrawControls(sh, controlsLegend+g.overlays.KeyLabels()+": overlays")
	}
}

// drawVelocity draws velocity vectors sampled on a coarse screen grid.
func (g *Game) drawVelocity() {
	velocity, err := g.sim.Snapshot(solver.QuantityVelocity)
	if err != nil {
		return
	}

	// One sim cell in screen pixels; arrows show 50ms of travel.
	cellPx := g.screenWidth * g.cam.Zoom / float32(velocity.W)
	scale := cellPx * 0.05
	col := rl.Color{R: 255, G: 255, B: 255, A: 140}

	for sy := float32(velocityStep / 2); sy < g.screenHeight; sy += velocityStep {
		for sx := float32(velocityStep / 2); sx < g.screenWidth; sx += velocityStep {
			v := velocity.Sample(g.cam.Normalized(sx, sy))
			ex := sx + v[0]*scale
			ey := sy - v[1]*scale
			rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, col)
			rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, 1.5, col)
		}
	}
}

// drawTracers draws each tracer particle with its fading trail.
func (g *Game) drawTracers() {
	toScreen := func(u, v float32) rl.Vector2 {
		x, y := g.cam.WorldToScreen(u*g.screenWidth, (1-v)*g.screenHeight)
		return rl.Vector2{X: x, Y: y}
	}

	for i := range g.tracers.Particles {
		p := &g.tracers.Particles[i]
		alpha := p.Alpha()
		if alpha <= 0 {
			continue
		}
		head := toScreen(p.X, p.Y)
		prev := head
		for j := 0; j < int(p.TrailLen); j++ {
			pt := toScreen(p.TrailX[j], p.TrailY[j])
			fade := alpha * (1 - float32(j)/float32(len(p.TrailX)))
			rl.DrawLineV(prev, pt, rl.Color{R: 255, G: 255, B: 255, A: uint8(fade * 160)})
			prev = pt
		}
		rl.DrawPixelV(head, rl.Color{R: 255, G: 255, B: 255, A: uint8(alpha * 255)})
	}
}
