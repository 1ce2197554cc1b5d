package splat

import (
	"errors"
	"math/rand"
	"testing"
)

type recorder struct {
	velocity [][4]float32
	dye      [][5]float32
}

func (r *recorder) AddVelocitySplat(x, y, fx, fy float32) {
	r.velocity = append(r.velocity, [4]float32{x, y, fx, fy})
}

func (r *recorder) AddDyeSplat(x, y, cr, cg, cb float32) {
	r.dye = append(r.dye, [5]float32{x, y, cr, cg, cb})
}

func TestNormalize(t *testing.T) {
	x, y := Normalize(320, 180, 640, 360)
	if x != 0.5 || y != 0.5 {
		t.Errorf("centre = (%v, %v), want (0.5, 0.5)", x, y)
	}
	x, y = Normalize(0, 0, 640, 360)
	if x != 0 || y != 1 {
		t.Errorf("top-left = (%v, %v), want (0, 1)", x, y)
	}
	x, y = Normalize(10, 10, 0, 360)
	if x != 0 || y != 0 {
		t.Errorf("zero width = (%v, %v), want (0, 0)", x, y)
	}
}

func TestPointerGesture(t *testing.T) {
	var p Pointer
	var r recorder

	p.Move(0.5, 0.5, 1)
	if p.Moved {
		t.Fatal("move before press should be ignored")
	}

	p.Press(0.5, 0.5, [3]float32{1, 0, 0})
	if p.Apply(&r, 100) {
		t.Fatal("press alone should not splat")
	}

	p.Move(0.6, 0.5, 1)
	if !p.Apply(&r, 100) {
		t.Fatal("expected splat after move")
	}
	if len(r.velocity) != 1 || len(r.dye) != 1 {
		t.Fatalf("got %d velocity, %d dye splats", len(r.velocity), len(r.dye))
	}
	v := r.velocity[0]
	if v[0] != 0.6 || v[1] != 0.5 {
		t.Errorf("splat at (%v, %v), want (0.6, 0.5)", v[0], v[1])
	}
	if v[2] < 9.99 || v[2] > 10.01 || v[3] != 0 {
		t.Errorf("force = (%v, %v), want (10, 0)", v[2], v[3])
	}
	if r.dye[0][2] != 1 {
		t.Errorf("dye red = %v, want 1", r.dye[0][2])
	}

	if p.Apply(&r, 100) {
		t.Error("motion should be consumed by Apply")
	}

	p.Release()
	p.Move(0.7, 0.7, 1)
	if p.Moved {
		t.Error("move after release should be ignored")
	}
}

func TestPointerAspectCorrection(t *testing.T) {
	var wide Pointer
	wide.Press(0, 0, [3]float32{})
	wide.Move(0.1, 0.1, 2)
	if wide.DX < 0.0999 || wide.DX > 0.1001 || wide.DY < 0.0499 || wide.DY > 0.0501 {
		t.Errorf("wide deltas = (%v, %v), want (0.1, 0.05)", wide.DX, wide.DY)
	}

	var tall Pointer
	tall.Press(0, 0, [3]float32{})
	tall.Move(0.1, 0.1, 0.5)
	if tall.DX < 0.0499 || tall.DX > 0.0501 || tall.DY < 0.0999 || tall.DY > 0.1001 {
		t.Errorf("tall deltas = (%v, %v), want (0.05, 0.1)", tall.DX, tall.DY)
	}
}

func TestColorCycler(t *testing.T) {
	c := ColorCycler{Interval: 0.1}
	if c.Tick(0.05) {
		t.Error("fired before interval")
	}
	if !c.Tick(0.06) {
		t.Error("did not fire after interval")
	}
	if c.Tick(0.05) {
		t.Error("fired again too soon")
	}
	if c.Tick(0) || c.Tick(-1) {
		t.Error("non-positive dt should not advance")
	}

	off := ColorCycler{}
	if off.Tick(10) {
		t.Error("zero interval should never fire")
	}
}

func TestPalettes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, name := range PaletteNames {
		p, err := NewPalette(name, 0.5)
		if err != nil {
			t.Fatalf("NewPalette(%q): %v", name, err)
		}
		for i := 0; i < 50; i++ {
			c := p.Pick(rng)
			for ch, v := range c {
				if v < 0 || v > 0.5001 {
					t.Fatalf("%s: channel %d = %v outside [0, 0.5]", name, ch, v)
				}
			}
		}
	}

	if _, err := NewPalette("mauve", 1); !errors.Is(err, ErrUnknownPalette) {
		t.Errorf("unknown palette err = %v, want ErrUnknownPalette", err)
	}
}

func TestRandomBurst(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pal, _ := NewPalette("rainbow", 0.15)
	var r recorder

	Random(&r, rng, pal, 12)
	if len(r.velocity) != 12 || len(r.dye) != 12 {
		t.Fatalf("got %d velocity, %d dye splats, want 12 each", len(r.velocity), len(r.dye))
	}
	for i, v := range r.velocity {
		if v[0] < 0 || v[0] > 1 || v[1] < 0 || v[1] > 1 {
			t.Errorf("splat %d outside unit square: (%v, %v)", i, v[0], v[1])
		}
		if v[2] < -500 || v[2] > 500 || v[3] < -500 || v[3] > 500 {
			t.Errorf("splat %d force out of range: (%v, %v)", i, v[2], v[3])
		}
		if r.dye[i][0] != v[0] || r.dye[i][1] != v[1] {
			t.Errorf("splat %d dye and velocity positions differ", i)
		}
	}
}

func TestBurstSize(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		n := BurstSize(rng, 5, 25)
		if n < 5 || n > 25 {
			t.Fatalf("BurstSize = %d, want [5, 25]", n)
		}
	}
	if n := BurstSize(rng, 4, 4); n != 4 {
		t.Errorf("BurstSize(4, 4) = %d", n)
	}
	if n := BurstSize(rng, 9, 2); n != 9 {
		t.Errorf("BurstSize(9, 2) = %d", n)
	}
}
