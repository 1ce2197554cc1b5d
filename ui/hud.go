package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Backend    string
	SimW, SimH int
	DyeW, DyeH int
	Tick       int32
	FPS        int32
	Paused     bool
	Palette    string
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Backend: %s | Sim: %dx%d | Dye: %dx%d", data.Backend, data.SimW, data.SimH, data.DyeW, data.DyeH),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Palette: %s", data.Tick, data.FPS, data.Palette),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel shows how step time splits across the passes.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	height := pad*2 + r.Theme.LineHeight*2 + int32(len(telemetry.Phases))*(r.Theme.LineHeight+2) + 4
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Step Performance")
	y = r.DrawLabelValue(x, y, "avg step", stats.AvgTickDuration.Round(time.Microsecond).String())
	for _, phase := range telemetry.Phases {
		pct := float32(stats.PhasePct[phase])
		y = r.DrawBar(x, y, phase.String(), pct, 100, 40, p.width-pad*2)
	}
}

// StatsPanel shows the latest field statistics.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new field statistics panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the statistics panel.
func (s *StatsPanel) Draw(f telemetry.FieldStats) {
	r := s.renderer
	pad := r.Theme.Padding
	height := pad*2 + r.Theme.LineHeight + 2 + 6*(r.Theme.LineHeight+2)
	r.DrawPanel(s.x, s.y, s.width, height)

	x := s.x + pad
	w := s.width - pad*2
	y := r.DrawSectionHeader(x, s.y+pad, "Fields")
	y = r.DrawBar(x, y, "dye mass", float32(f.DyeMass), 1, 0.9, w)
	y = r.DrawBar(x, y, "kinetic energy", float32(f.KineticEnergy), 1000, 0, w)
	y = r.DrawBar(x, y, "divergence rms", float32(f.DivergenceRMS), 10, 5, w)
	y = r.DrawBar(x, y, "speed p50", float32(f.SpeedP50), 1000, 0, w)
	y = r.DrawBar(x, y, "speed p90", float32(f.SpeedP90), 1000, 0, w)
	r.DrawBar(x, y, "max speed", float32(f.MaxSpeed), 1000, 990, w)
}
