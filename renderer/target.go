// Package renderer runs the fluid pass programs on the GPU through raylib
// and draws the dye field to the screen.
package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/field"
)

var (
	// ErrShaderCompile is returned when a pass program fails to compile or link.
	ErrShaderCompile = errors.New("renderer: shader compile failed")
	// ErrFloatTargetUnsupported is returned when the driver cannot render
	// into 32-bit float textures.
	ErrFloatTargetUnsupported = errors.New("renderer: float render targets unsupported")
)

// Target is an RGBA32F texture attached to its own framebuffer. Every role
// uses four channels on the GPU; ReadBack keeps only the role's channels.
type Target struct {
	rt   rl.RenderTexture2D
	role field.Role
	w, h int
}

// NewTarget allocates a zero-filled float render target with bilinear
// filtering and clamp-to-edge wrapping.
func NewTarget(role field.Role, w, h int) (*Target, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", field.ErrInvalidDimensions, w, h)
	}

	img := rl.GenImageColor(w, h, color.RGBA{})
	rl.ImageFormat(img, rl.UncompressedR32g32b32a32)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if tex.ID == 0 || tex.Format != rl.UncompressedR32g32b32a32 {
		rl.UnloadTexture(tex)
		return nil, ErrFloatTargetUnsupported
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)

	fbo := rl.LoadFramebuffer()
	if fbo == 0 {
		rl.UnloadTexture(tex)
		return nil, ErrFloatTargetUnsupported
	}
	rl.FramebufferAttach(fbo, tex.ID, rl.AttachmentColorChannel0, rl.AttachmentTexture2d, 0)
	if !rl.FramebufferComplete(fbo) {
		rl.UnloadFramebuffer(fbo)
		rl.UnloadTexture(tex)
		return nil, fmt.Errorf("%w: framebuffer incomplete for %s %dx%d", ErrFloatTargetUnsupported, role, w, h)
	}

	return &Target{
		rt:   rl.NewRenderTexture2D(fbo, tex, rl.Texture2D{}),
		role: role,
		w:    w,
		h:    h,
	}, nil
}

// Size returns the target dimensions in texels.
func (t *Target) Size() (int, int) { return t.w, t.h }

// Role returns the quantity the target holds.
func (t *Target) Role() field.Role { return t.role }

// Texture returns the colour attachment for drawing.
func (t *Target) Texture() rl.Texture2D { return t.rt.Texture }

// Unload frees the texture and framebuffer.
func (t *Target) Unload() {
	if t == nil || t.rt.ID == 0 {
		return
	}
	rl.UnloadRenderTexture(t.rt)
	t.rt = rl.RenderTexture2D{}
}

// ReadBack copies the texture into a CPU grid. Row 0 is the bottom row on
// both sides.
func (t *Target) ReadBack() (*field.Grid, error) {
	img := rl.LoadImageFromTexture(t.rt.Texture)
	defer rl.UnloadImage(img)
	if img.Data == nil || img.Format != rl.UncompressedR32g32b32a32 {
		return nil, fmt.Errorf("%w: readback format %d", ErrFloatTargetUnsupported, img.Format)
	}
	data := unsafe.Slice((*float32)(img.Data), t.w*t.h*4)
	return gridFromRGBA(t.role, t.w, t.h, data)
}

// gridFromRGBA packs interleaved RGBA samples into a grid with the role's
// channel count.
func gridFromRGBA(role field.Role, w, h int, rgba []float32) (*field.Grid, error) {
	g, err := field.NewGrid(role, w, h)
	if err != nil {
		return nil, err
	}
	if len(rgba) < w*h*4 {
		return nil, fmt.Errorf("renderer: readback has %d samples, want %d", len(rgba), w*h*4)
	}
	c := g.C
	for i := 0; i < w*h; i++ {
		copy(g.Data[i*c:i*c+c], rgba[i*4:i*4+c])
	}
	return g, nil
}
