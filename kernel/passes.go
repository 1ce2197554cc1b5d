// Package kernel implements the fluid pass programs on the CPU.
//
// Every pass reads one or more source grids and writes a separate destination
// grid; sources are sampled at cell centres with bilinear filtering and
// clamp-to-edge addressing. Derivatives are central differences over direct
// neighbours, so a pass gives the same result in normalized coordinates at any
// resolution. Passes never allocate. Stencil passes must not read their own
// destination; Splat and Clear read and write each cell independently, so
// they also accept dst == target.
package kernel

import (
	"math"

	"github.com/pthm-cable/fluid/field"
)

const (
	// vorticityEpsilon keeps the confinement direction finite where |curl| is flat.
	vorticityEpsilon = 1e-4
	// maxVelocity bounds velocity after confinement.
	maxVelocity = 1000
	// minRadius keeps the splat falloff finite.
	minRadius = 1e-7
	// splatCutoff is the exponent beyond which the falloff underflows float32.
	splatCutoff = 88
)

// Advect moves source through velocity by one semi-Lagrangian step and scales
// the result by dissipation: dst(uv) = dissipation * source(uv - dt*v(uv)*texel).
// velocity is expressed in velocity-grid cells per second; source and dst share
// dimensions and may differ from the velocity grid.
func Advect(p *Pool, dst, velocity, source *field.Grid, dt, dissipation float32) {
	sx := float32(dst.W) / float32(velocity.W)
	sy := float32(dst.H) / float32(velocity.H)
	same := dst.W == velocity.W && dst.H == velocity.H
	invW := 1 / float32(dst.W)
	invH := 1 / float32(dst.H)

	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				var vx, vy float32
				if same {
					c := velocity.Cell(x, y)
					vx, vy = c[0], c[1]
				} else {
					s := velocity.Sample((float32(x)+0.5)*invW, (float32(y)+0.5)*invH)
					vx, vy = s[0], s[1]
				}

				s := source.SampleTexel(float32(x)-dt*vx*sx, float32(y)-dt*vy*sy)
				out := dst.Cell(x, y)
				for c := range out {
					out[c] = dissipation * s[c]
				}
			}
		}
	})
}

// Divergence writes 0.5*((R.x-L.x) + (T.y-B.y)) of velocity into dst. A
// neighbour beyond the grid edge is treated as a solid wall and mirrors the
// centre component with opposite sign.
func Divergence(p *Pool, dst, velocity *field.Grid) {
	w, h := velocity.W, velocity.H

	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				c := velocity.Cell(x, y)

				var l, r, b, t float32
				if x > 0 {
					l = velocity.At(x-1, y, 0)
				} else {
					l = -c[0]
				}
				if x < w-1 {
					r = velocity.At(x+1, y, 0)
				} else {
					r = -c[0]
				}
				if y > 0 {
					b = velocity.At(x, y-1, 1)
				} else {
					b = -c[1]
				}
				if y < h-1 {
					t = velocity.At(x, y+1, 1)
				} else {
					t = -c[1]
				}

				dst.Data[y*w+x] = 0.5 * (r - l + t - b)
			}
		}
	})
}

// Curl writes the scalar vorticity 0.5*((R.y-L.y) - (T.x-B.x)) into dst.
func Curl(p *Pool, dst, velocity *field.Grid) {
	w, h := velocity.W, velocity.H

	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				l := velocity.At(x-1, y, 1)
				r := velocity.At(x+1, y, 1)
				b := velocity.At(x, y-1, 0)
				t := velocity.At(x, y+1, 0)
				dst.Data[y*w+x] = 0.5 * ((r - l) - (t - b))
			}
		}
	})
}

// Vorticity applies vorticity confinement: velocity is pushed along the
// normalized gradient of |curl|, scaled by strength and the local curl, and
// clamped to ±maxVelocity.
func Vorticity(p *Pool, dst, velocity, curl *field.Grid, strength, dt float32) {
	w, h := velocity.W, velocity.H

	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				l := curl.At(x-1, y, 0)
				r := curl.At(x+1, y, 0)
				b := curl.At(x, y-1, 0)
				t := curl.At(x, y+1, 0)
				c := curl.Data[y*w+x]

				fx := 0.5 * (abs(t) - abs(b))
				fy := 0.5 * (abs(r) - abs(l))
				n := float32(math.Sqrt(float64(fx*fx+fy*fy))) + vorticityEpsilon
				fx = fx / n * strength * c
				fy = -fy / n * strength * c

				v := velocity.Cell(x, y)
				out := dst.Cell(x, y)
				out[0] = clamp(v[0]+fx*dt, -maxVelocity, maxVelocity)
				out[1] = clamp(v[1]+fy*dt, -maxVelocity, maxVelocity)
			}
		}
	})
}

// Pressure runs one Jacobi iteration: dst = (L + R + B + T - div) / 4.
func Pressure(p *Pool, dst, pressure, divergence *field.Grid) {
	w, h := pressure.W, pressure.H

	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				l := pressure.At(x-1, y, 0)
				r := pressure.At(x+1, y, 0)
				b := pressure.At(x, y-1, 0)
				t := pressure.At(x, y+1, 0)
				d := divergence.Data[y*w+x]
				dst.Data[y*w+x] = (l + r + b + t - d) * 0.25
			}
		}
	})
}

// GradientSubtract projects velocity by removing the central-difference
// pressure gradient 0.5*(R-L, T-B).
func GradientSubtract(p *Pool, dst, pressure, velocity *field.Grid) {
	w, h := velocity.W, velocity.H

	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				l := pressure.At(x-1, y, 0)
				r := pressure.At(x+1, y, 0)
				b := pressure.At(x, y-1, 0)
				t := pressure.At(x, y+1, 0)

				v := velocity.Cell(x, y)
				out := dst.Cell(x, y)
				out[0] = v[0] - 0.5*(r-l)
				out[1] = v[1] - 0.5*(t-b)
			}
		}
	})
}

// Splat adds a Gaussian impulse centred on the normalized point (px, py):
// influence = exp(-d²/radius) with the x distance scaled by aspect. Velocity
// grids add influence*value.xy, dye grids add influence*value.rgb and raise
// density by influence (clamped to [0,1]), scalar grids add influence*value[0].
// The point is clamped into the unit square.
func Splat(p *Pool, dst, target *field.Grid, px, py float32, value [4]float32, radius, aspect float32) {
	px = clampUnit(px)
	py = clampUnit(py)
	if !(radius > minRadius) {
		radius = minRadius
	}
	if !(aspect > 0) {
		aspect = 1
	}

	w, h := target.W, target.H
	invW := 1 / float32(w)
	invH := 1 / float32(h)
	nc := target.C

	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			dy := (float32(y)+0.5)*invH - py
			for x := 0; x < w; x++ {
				src := target.Cell(x, y)
				out := dst.Cell(x, y)

				dx := ((float32(x)+0.5)*invW - px) * aspect
				e := (dx*dx + dy*dy) / radius
				if e > splatCutoff {
					copy(out, src)
					continue
				}
				inf := float32(math.Exp(-float64(e)))

				switch nc {
				case 4:
					out[0] = src[0] + inf*value[0]
					out[1] = src[1] + inf*value[1]
					out[2] = src[2] + inf*value[2]
					out[3] = clamp(src[3]+inf, 0, 1)
				default:
					for c := 0; c < nc; c++ {
						out[c] = src[c] + inf*value[c]
					}
				}
			}
		}
	})
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// clampUnit clamps to [0,1], mapping NaN to 0.
func clampUnit(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
