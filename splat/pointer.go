package splat

import "math/rand"

// Target receives impulses. solver.Simulation satisfies it.
type Target interface {
	AddVelocitySplat(x, y, fx, fy float32)
	AddDyeSplat(x, y, r, g, b float32)
}

// Normalize maps a screen position (origin top-left, y down) onto the
// solver's unit square (origin bottom-left).
func Normalize(px, py, width, height float32) (x, y float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return px / width, 1 - py/height
}

// Pointer tracks one drag gesture in normalized coordinates.
type Pointer struct {
	X, Y   float32
	DX, DY float32
	Down   bool
	Moved  bool
	Color  [3]float32
}

// Press starts a gesture at (x, y) with colour c.
func (p *Pointer) Press(x, y float32, c [3]float32) {
	p.X, p.Y = x, y
	p.DX, p.DY = 0, 0
	p.Down = true
	p.Moved = false
	p.Color = c
}

// Move records a new position. Deltas are corrected so a stroke of the same
// screen length produces the same force along either axis.
func (p *Pointer) Move(x, y, aspect float32) {
	if !p.Down {
		return
	}
	dx, dy := x-p.X, y-p.Y
	if aspect < 1 {
		dx *= aspect
	}
	if aspect > 1 {
		dy /= aspect
	}
	p.X, p.Y = x, y
	p.DX, p.DY = dx, dy
	p.Moved = dx != 0 || dy != 0
}

// Release ends the gesture.
func (p *Pointer) Release() {
	p.Down = false
}

// Apply splats the pending motion into t and clears it. It reports whether
// anything was applied.
func (p *Pointer) Apply(t Target, force float32) bool {
	if !p.Moved {
		return false
	}
	p.Moved = false
	t.AddVelocitySplat(p.X, p.Y, p.DX*force, p.DY*force)
	t.AddDyeSplat(p.X, p.Y, p.Color[0], p.Color[1], p.Color[2])
	return true
}

// ColorCycler signals when gesture colours should be refreshed.
type ColorCycler struct {
	Interval float32
	elapsed  float32
}

// Tick advances the timer by dt and reports whether the interval elapsed.
func (c *ColorCycler) Tick(dt float32) bool {
	if c.Interval <= 0 || !(dt > 0) {
		return false
	}
	c.elapsed += dt
	if c.elapsed < c.Interval {
		return false
	}
	for c.elapsed >= c.Interval {
		c.elapsed -= c.Interval
	}
	return true
}

// Random splat tuning: velocity in [-randomForce/2, randomForce/2] per axis
// and colours boosted so bursts read clearly.
const (
	randomForce     = 1000
	randomColorGain = 10
)

// Random applies count splats at random positions with random directions.
func Random(t Target, rng *rand.Rand, pal *Palette, count int) {
	for i := 0; i < count; i++ {
		c := pal.Pick(rng)
		x, y := rng.Float32(), rng.Float32()
		dx := randomForce * (rng.Float32() - 0.5)
		dy := randomForce * (rng.Float32() - 0.5)
		t.AddVelocitySplat(x, y, dx, dy)
		t.AddDyeSplat(x, y, c[0]*randomColorGain, c[1]*randomColorGain, c[2]*randomColorGain)
	}
}

// BurstSize picks a burst length in [lo, hi].
func BurstSize(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
