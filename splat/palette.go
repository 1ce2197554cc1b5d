// Package splat turns pointer gestures and random bursts into solver impulses.
package splat

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"
)

// ErrUnknownPalette is returned for a palette name NewPalette does not know.
var ErrUnknownPalette = errors.New("splat: unknown palette")

// paletteSteps is how finely gradient palettes are sampled.
const paletteSteps = 256

// Palette picks splat colours. "rainbow" draws a random fully saturated hue;
// the other palettes sample a colorgrad preset.
type Palette struct {
	name      string
	colors    []color.Color
	intensity float32
}

// PaletteNames lists the accepted palette names.
var PaletteNames = []string{"rainbow", "viridis", "plasma", "inferno", "turbo", "sinebow"}

// NewPalette builds a palette scaled by intensity.
func NewPalette(name string, intensity float64) (*Palette, error) {
	p := &Palette{name: name, intensity: float32(intensity)}

	var grad colorgrad.Gradient
	switch name {
	case "rainbow":
		return p, nil
	case "viridis":
		grad = colorgrad.Viridis()
	case "plasma":
		grad = colorgrad.Plasma()
	case "inferno":
		grad = colorgrad.Inferno()
	case "turbo":
		grad = colorgrad.Turbo()
	case "sinebow":
		grad = colorgrad.Sinebow()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	p.colors = grad.Colors(paletteSteps)
	return p, nil
}

// Name returns the palette name.
func (p *Palette) Name() string { return p.name }

// Pick returns a random colour scaled by the palette intensity.
func (p *Palette) Pick(rng *rand.Rand) [3]float32 {
	var c colorful.Color
	if len(p.colors) == 0 {
		c = colorful.Hsv(rng.Float64()*360, 1, 1)
	} else {
		c, _ = colorful.MakeColor(p.colors[rng.Intn(len(p.colors))])
	}
	return [3]float32{
		float32(c.R) * p.intensity,
		float32(c.G) * p.intensity,
		float32(c.B) * p.intensity,
	}
}
