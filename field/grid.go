// Package field holds the CPU representation of simulation fields and the
// double-buffer used by every backend.
package field

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a grid is requested with a side below 1.
var ErrInvalidDimensions = errors.New("field: invalid dimensions")

// Role identifies what a field stores and therefore its channel layout.
type Role uint8

const (
	Velocity Role = iota // vx, vy
	Dye                  // r, g, b, density
	Scalar               // divergence, curl, pressure
)

// Channels returns the number of components stored per cell for the role.
func (r Role) Channels() int {
	switch r {
	case Velocity:
		return 2
	case Dye:
		return 4
	default:
		return 1
	}
}

func (r Role) String() string {
	switch r {
	case Velocity:
		return "velocity"
	case Dye:
		return "dye"
	case Scalar:
		return "scalar"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Buffer is anything with grid dimensions.
type Buffer interface {
	Size() (w, h int)
}

// Grid is a row-major float32 field. Row 0 is the bottom row so that
// normalized coordinates have their origin at the bottom-left.
type Grid struct {
	W, H int
	C    int
	Role Role
	Data []float32 // (y*W + x)*C + c
}

// NewGrid allocates a zero-filled grid for the role.
func NewGrid(role Role, w, h int) (*Grid, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	c := role.Channels()
	return &Grid{
		W:    w,
		H:    h,
		C:    c,
		Role: role,
		Data: make([]float32, w*h*c),
	}, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (int, int) {
	return g.W, g.H
}

// Texel returns the size of one cell in normalized coordinates.
func (g *Grid) Texel() (float32, float32) {
	return 1 / float32(g.W), 1 / float32(g.H)
}

// At returns channel c at (x, y), clamping coordinates to the edge.
func (g *Grid) At(x, y, c int) float32 {
	x = clampInt(x, 0, g.W-1)
	y = clampInt(y, 0, g.H-1)
	return g.Data[(y*g.W+x)*g.C+c]
}

// Set stores v in channel c at (x, y). Out of range writes are ignored.
func (g *Grid) Set(x, y, c int, v float32) {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return
	}
	g.Data[(y*g.W+x)*g.C+c] = v
}

// Cell returns the slice of channels for cell (x, y).
func (g *Grid) Cell(x, y int) []float32 {
	i := (y*g.W + x) * g.C
	return g.Data[i : i+g.C]
}

// Sample bilinearly interpolates all channels at normalized (u, v), sampling
// at cell centres with clamp-to-edge addressing. Unused channels are zero.
func (g *Grid) Sample(u, v float32) [4]float32 {
	return g.SampleTexel(u*float32(g.W)-0.5, v*float32(g.H)-0.5)
}

// SampleTexel is Sample in cell units, where integer coordinates hit cell centres.
func (g *Grid) SampleTexel(fx, fy float32) [4]float32 {
	var out [4]float32

	x0 := floor(fx)
	y0 := floor(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	xa := clampInt(x0, 0, g.W-1)
	xb := clampInt(x0+1, 0, g.W-1)
	ya := clampInt(y0, 0, g.H-1)
	yb := clampInt(y0+1, 0, g.H-1)

	i00 := (ya*g.W + xa) * g.C
	i10 := (ya*g.W + xb) * g.C
	i01 := (yb*g.W + xa) * g.C
	i11 := (yb*g.W + xb) * g.C

	for c := 0; c < g.C; c++ {
		a := g.Data[i00+c]*(1-tx) + g.Data[i10+c]*tx
		b := g.Data[i01+c]*(1-tx) + g.Data[i11+c]*tx
		out[c] = a*(1-ty) + b*ty
	}
	return out
}

// Fill sets every channel of every cell to v.
func (g *Grid) Fill(v float32) {
	if v == 0 {
		clear(g.Data)
		return
	}
	for i := range g.Data {
		g.Data[i] = v
	}
}

// CopyFrom copies src into g. Dimensions and channel counts must match.
func (g *Grid) CopyFrom(src *Grid) error {
	if src.W != g.W || src.H != g.H || src.C != g.C {
		return fmt.Errorf("%w: copy %dx%dx%d into %dx%dx%d",
			ErrInvalidDimensions, src.W, src.H, src.C, g.W, g.H, g.C)
	}
	copy(g.Data, src.Data)
	return nil
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := *g
	out.Data = append([]float32(nil), g.Data...)
	return &out
}

// Channel extracts channel c into a new contiguous slice.
func (g *Grid) Channel(c int) []float32 {
	out := make([]float32, g.W*g.H)
	for i := range out {
		out[i] = g.Data[i*g.C+c]
	}
	return out
}

func floor(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
