package ui

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Overlays of the fluid viewer.
const (
	OverlayHUD      OverlayID = "hud"
	OverlayPerf     OverlayID = "perf"
	OverlayStats    OverlayID = "stats"
	OverlayVelocity OverlayID = "velocity"
	OverlayControls OverlayID = "controls"
	OverlayTracers  OverlayID = "tracers"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string // shown in the legend
	Category    string // "info" or "debug"
	On          bool   // enabled at startup
	Exclusive   []OverlayID
}

// defaultOverlays lists the viewer overlays in legend order. Perf and field
// stats share the same corner, so only one of them is shown at a time.
var defaultOverlays = []OverlayDescriptor{
	{ID: OverlayHUD, Name: "HUD", Description: "Backend, resolution and frame rate",
		Key: rl.KeyH, KeyLabel: "H", Category: "info", On: true},
	{ID: OverlayControls, Name: "Controls", Description: "Key legend",
		Key: rl.KeyF1, KeyLabel: "F1", Category: "info", On: true},
	{ID: OverlayPerf, Name: "Performance", Description: "Per-pass share of step time",
		Key: rl.KeyF3, KeyLabel: "F3", Category: "debug", Exclusive: []OverlayID{OverlayStats}},
	{ID: OverlayStats, Name: "Field Stats", Description: "Dye mass, energy and divergence",
		Key: rl.KeyT, KeyLabel: "T", Category: "debug", Exclusive: []OverlayID{OverlayPerf}},
	{ID: OverlayVelocity, Name: "Velocity", Description: "Velocity vectors on a coarse grid",
		Key: rl.KeyV, KeyLabel: "V", Category: "debug"},
	{ID: OverlayTracers, Name: "Tracers", Description: "Particles carried by the flow",
		Key: rl.KeyG, KeyLabel: "G", Category: "debug"},
}

// OverlayRegistry tracks which overlays are enabled.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry holding the viewer overlays.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	for _, d := range defaultOverlays {
		r.Register(d)
	}
	return r
}

// Register adds an overlay, enabled if d.On is set.
func (r *OverlayRegistry) Register(d OverlayDescriptor) {
	r.descriptors = append(r.descriptors, d)
	r.enabled[d.ID] = d.On
}

// Toggle flips an overlay and returns its new state. Enabling an overlay
// disables the overlays it excludes.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	for _, d := range r.descriptors {
		if d.ID != id {
			continue
		}
		on := !r.enabled[id]
		r.enabled[id] = on
		if on {
			for _, ex := range d.Exclusive {
				r.enabled[ex] = false
			}
		}
		return on
	}
	return false
}

// IsEnabled reports whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns the overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress toggles the overlay bound to key. ok is false when no
// overlay uses the key.
func (r *OverlayRegistry) HandleKeyPress(key int32) (id OverlayID, on, ok bool) {
	for _, d := range r.descriptors {
		if d.Key != 0 && d.Key == key {
			return d.ID, r.Toggle(d.ID), true
		}
	}
	return "", false, false
}

// KeyLabels joins the overlay key labels for the controls legend, e.g. "H/F1".
func (r *OverlayRegistry) KeyLabels() string {
	labels := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.KeyLabel != "" {
			labels = append(labels, d.KeyLabel)
		}
	}
	return strings.Join(labels, "/")
}

// Enabled returns the active overlay IDs in registration order.
func (r *OverlayRegistry) Enabled() []OverlayID {
	var ids []OverlayID
	for _, d := range r.descriptors {
		if r.enabled[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
