// Package inspector shows the field values under a pinned point of the fluid.
package inspector

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/solver"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// refreshEvery is the number of frames between probes. Probing reads back
// every field, which stalls the GPU pipeline.
const refreshEvery = 10

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorMarker      = rl.Color{R: 255, G: 255, B: 255, A: 200}
)

// Inspector pins a point of the fluid and displays its probe.
type Inspector struct {
	pinned bool
	u, v   float32
	probe  CellProbe
	frames int

	panelX, panelY int32
}

// NewInspector creates an inspector with its panel at the top right.
func NewInspector(screenWidth int32) *Inspector {
	return &Inspector{
		panelX: screenWidth - PanelWidth - 10,
		panelY: 10,
	}
}

// Resize moves the panel to follow the window's right edge.
func (ins *Inspector) Resize(screenWidth int32) {
	ins.panelX = screenWidth - PanelWidth - 10
}

// Pin selects the normalized point (u, v) and forces a probe next Refresh.
func (ins *Inspector) Pin(u, v float32) {
	ins.pinned = true
	ins.u, ins.v = u, v
	ins.frames = 0
}

// Unpin clears the selection.
func (ins *Inspector) Unpin() {
	ins.pinned = false
}

// Pinned returns the selected point.
func (ins *Inspector) Pinned() (u, v float32, ok bool) {
	return ins.u, ins.v, ins.pinned
}

// Probe returns the most recent probe.
func (ins *Inspector) Probe() CellProbe { return ins.probe }

// HandleInput pins the point under a middle click and unpins on Backspace or
// the close button.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, cam *camera.Camera) {
	if rl.IsKeyPressed(rl.KeyBackspace) {
		ins.Unpin()
		return
	}
	if ins.pinned && rl.IsMouseButtonPressed(rl.MouseButtonLeft) && ins.overClose(mouseX, mouseY) {
		ins.Unpin()
		return
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) {
		ins.Pin(cam.Normalized(mouseX, mouseY))
	}
}

func (ins *Inspector) overClose(mouseX, mouseY float32) bool {
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	return int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
		int32(mouseY) >= closeY && int32(mouseY) <= closeY+20
}

// Refresh re-probes the pinned point every few frames.
func (ins *Inspector) Refresh(sim solver.Simulation) {
	if !ins.pinned {
		return
	}
	if ins.frames%refreshEvery == 0 {
		p, err := Probe(sim, ins.u, ins.v)
		if err != nil {
			slog.Warn("probe failed", "error", err)
		} else {
			ins.probe = p
		}
	}
	ins.frames++
}

// Draw renders the marker and panel when a point is pinned.
func (ins *Inspector) Draw(cam *camera.Camera) {
	if !ins.pinned {
		return
	}

	// Marker at the pinned point
	sx, sy := cam.WorldToScreen(ins.u*cam.ViewportW, (1-ins.v)*cam.ViewportH)
	rl.DrawCircleLines(int32(sx), int32(sy), 6, ColorMarker)
	rl.DrawLine(int32(sx)-10, int32(sy), int32(sx)+10, int32(sy), ColorMarker)
	rl.DrawLine(int32(sx), int32(sy)-10, int32(sx), int32(sy)+10, ColorMarker)

	fields := ExtractFields(ins.probe)
	height := int32(HeaderHeight + 2*PanelPadding)
	for _, f := range fields {
		height += FieldHeight(f)
	}

	x, y := ins.panelX, ins.panelY
	rl.DrawRectangle(x, y, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLines(x, y, PanelWidth, height, ColorPanelBorder)
	rl.DrawRectangle(x, y, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("Cell probe", x+PanelPadding, y+8, 16, ColorHeaderText)

	closeX := x + PanelWidth - 25
	rl.DrawRectangle(closeX, y+5, 20, 20, ColorCloseBtn)
	rl.DrawText("x", closeX+6, y+7, 16, ColorHeaderText)

	cy := y + HeaderHeight + PanelPadding
	for _, f := range fields {
		cy += DrawField(x+PanelPadding, cy, f)
	}
}
