// Package tracer advects passive particles through the fluid velocity for
// visualization.
package tracer

import (
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

const (
	trailLen    = 8
	spawnRate   = 50  // particles added per update while below target
	minLifespan = 300 // steps
	lifespanVar = 400
	jitterScale = 6    // noise cells across the unit square
	jitterTime  = 0.3  // noise drift per simulated second
	jitterSpeed = 0.01 // unit-square lengths per second at full noise
)

// Particle is one tracer in normalized coordinates (origin bottom-left).
type Particle struct {
	X, Y        float32
	Lifespan    int32
	MaxLifespan int32
	Opacity     float32

	// Trail history (most recent first)
	TrailX   [trailLen]float32
	TrailY   [trailLen]float32
	TrailLen uint8
}

// Alpha fades the particle in and out over its life.
func (p *Particle) Alpha() float32 {
	if p.MaxLifespan <= 0 {
		return 0
	}
	t := float32(p.Lifespan) / float32(p.MaxLifespan)
	fade := t
	if 1-t < fade {
		fade = 1 - t
	}
	fade *= 4
	if fade > 1 {
		fade = 1
	}
	return p.Opacity * fade
}

// Velocity samples a velocity grid in cells per second. *field.Grid
// satisfies it.
type Velocity interface {
	Sample(u, v float32) [4]float32
	Size() (int, int)
}

// System owns the tracer particles.
type System struct {
	Particles []Particle

	target int
	rng    *rand.Rand
	noise  opensimplex.Noise32
	time   float32
}

// New creates a system that keeps about target particles alive.
func New(target int, seed int64) *System {
	return &System{
		Particles: make([]Particle, 0, target),
		target:    target,
		rng:       rand.New(rand.NewSource(seed)),
		noise:     opensimplex.New32(seed),
	}
}

// Update moves every particle by dt seconds of vel, plus a small noise
// drift so particles in still fluid keep moving. Particles that expire or
// hit a wall are removed and respawned elsewhere over later updates.
func (s *System) Update(vel Velocity, dt float32) {
	s.spawn()
	s.time += dt

	w, h := vel.Size()
	invW, invH := 1/float32(w), 1/float32(h)

	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Lifespan--
		if p.Lifespan <= 0 {
			continue
		}

		// Shift trail history and add current position
		for j := len(p.TrailX) - 1; j > 0; j-- {
			p.TrailX[j] = p.TrailX[j-1]
			p.TrailY[j] = p.TrailY[j-1]
		}
		p.TrailX[0] = p.X
		p.TrailY[0] = p.Y
		if p.TrailLen < trailLen {
			p.TrailLen++
		}

		v := vel.Sample(p.X, p.Y)
		jx, jy := s.jitter(p.X, p.Y)
		p.X += dt * (v[0]*invW + jx)
		p.Y += dt * (v[1]*invH + jy)

		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			continue
		}

		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
}

func (s *System) jitter(x, y float32) (float32, float32) {
	nx := s.noise.Eval3(x*jitterScale, y*jitterScale, s.time*jitterTime)
	ny := s.noise.Eval3(x*jitterScale+100, y*jitterScale+100, s.time*jitterTime)
	return nx * jitterSpeed, ny * jitterSpeed
}

func (s *System) spawn() {
	for i := 0; i < spawnRate && len(s.Particles) < s.target; i++ {
		lifespan := int32(minLifespan + s.rng.Intn(lifespanVar))
		s.Particles = append(s.Particles, Particle{
			X:           s.rng.Float32(),
			Y:           s.rng.Float32(),
			Lifespan:    lifespan,
			MaxLifespan: lifespan,
			Opacity:     0.4 + s.rng.Float32()*0.4,
		})
	}
}

// Reset removes every particle.
func (s *System) Reset() {
	s.Particles = s.Particles[:0]
}
