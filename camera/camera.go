// Package camera provides a zoom and pan viewport over the fluid.
//
// World coordinates are screen pixels at zoom 1, so the whole field fills
// the window when the camera is reset. The field has solid walls, so the
// camera is clamped to keep the view inside it.
package camera

// Camera controls the viewport into the simulation world.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = whole field, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size), which are also the world size
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// Rect is a region of the unit square, origin bottom-left.
type Rect struct {
	U0, V0, U1, V1 float32
}

// New creates a camera showing the whole field.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		X:         viewportW / 2,
		Y:         viewportH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Normalized maps a screen position (origin top-left, y down) to the
// solver's unit square (origin bottom-left).
func (c *Camera) Normalized(sx, sy float32) (u, v float32) {
	if c.ViewportW <= 0 || c.ViewportH <= 0 {
		return 0, 0
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	return wx / c.ViewportW, 1 - wy/c.ViewportH
}

// Visible returns the part of the field on screen.
func (c *Camera) Visible() Rect {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return Rect{
		U0: minX / c.ViewportW,
		V0: 1 - maxY/c.ViewportH,
		U1: maxX / c.ViewportW,
		V1: 1 - minY/c.ViewportH,
	}
}

// Resize updates the viewport, keeping the same part of the field centred.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	if c.ViewportW > 0 && c.ViewportH > 0 {
		c.X *= viewportW / c.ViewportW
		c.Y *= viewportH / c.ViewportH
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	c.X = wx - (sx-c.ViewportW/2)/c.Zoom
	c.Y = wy - (sy-c.ViewportH/2)/c.Zoom
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.ViewportW / 2
	c.Y = c.ViewportH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// clampCenter keeps the visible area inside the field.
func (c *Camera) clampCenter() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clamp(c.X, halfW, c.ViewportW-halfW)
	c.Y = clamp(c.Y, halfH, c.ViewportH-halfH)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
