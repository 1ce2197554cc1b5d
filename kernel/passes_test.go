package kernel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/fluid/field"
)

func mustGrid(t testing.TB, role field.Role, w, h int) *field.Grid {
	t.Helper()
	g, err := field.NewGrid(role, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func randomFill(g *field.Grid, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range g.Data {
		g.Data[i] = rng.Float32()*2 - 1
	}
}

// sourceField is a smooth, localized outward flow with non-zero divergence.
func sourceField(t testing.TB, n int) *field.Grid {
	v := mustGrid(t, field.Velocity, n, n)
	c := float64(n-1) / 2
	sigma := float64(n) / 8
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			g := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			cell := v.Cell(x, y)
			cell[0] = float32(dx * g)
			cell[1] = float32(dy * g)
		}
	}
	return v
}

func TestClearZeroIsIdempotent(t *testing.T) {
	src := mustGrid(t, field.Dye, 8, 8)
	randomFill(src, 1)
	dst := mustGrid(t, field.Dye, 8, 8)
	randomFill(dst, 2)

	Clear(dst, src, 0)
	for i, v := range dst.Data {
		if v != 0 {
			t.Fatalf("Data[%d] = %f after clear 0", i, v)
		}
	}
}

func TestClearOneIsNoop(t *testing.T) {
	src := mustGrid(t, field.Velocity, 8, 8)
	randomFill(src, 3)
	want := src.Clone()

	Clear(src, src, 1)
	for i := range src.Data {
		if src.Data[i] != want.Data[i] {
			t.Fatalf("Data[%d] changed: %f -> %f", i, want.Data[i], src.Data[i])
		}
	}

	dst := mustGrid(t, field.Velocity, 8, 8)
	Clear(dst, src, 1)
	for i := range dst.Data {
		if dst.Data[i] != want.Data[i] {
			t.Fatalf("copy Data[%d] = %f, want %f", i, dst.Data[i], want.Data[i])
		}
	}
}

func TestClearScales(t *testing.T) {
	src := mustGrid(t, field.Scalar, 4, 4)
	src.Fill(2)
	dst := mustGrid(t, field.Scalar, 4, 4)
	Clear(dst, src, 0.25)
	for _, v := range dst.Data {
		if v != 0.5 {
			t.Fatalf("value = %f, want 0.5", v)
		}
	}
}

func TestAdvectZeroVelocityIsExact(t *testing.T) {
	vel := mustGrid(t, field.Velocity, 16, 16)
	src := mustGrid(t, field.Dye, 32, 32)
	randomFill(src, 4)
	dst := mustGrid(t, field.Dye, 32, 32)

	Advect(nil, dst, vel, src, 0.016, 1)
	for i := range dst.Data {
		if dst.Data[i] != src.Data[i] {
			t.Fatalf("Data[%d] = %f, want %f", i, dst.Data[i], src.Data[i])
		}
	}
}

func TestAdvectDissipationDecreasesMass(t *testing.T) {
	vel := mustGrid(t, field.Velocity, 16, 16)
	a := mustGrid(t, field.Dye, 16, 16)
	b := mustGrid(t, field.Dye, 16, 16)
	Splat(nil, a, a, 0.5, 0.5, [4]float32{1, 1, 1}, 0.01, 1)

	prev := ChannelSum(a, 3)
	if prev == 0 {
		t.Fatal("splat produced no density")
	}
	for i := 0; i < 10; i++ {
		Advect(nil, b, vel, a, 0.016, 0.9)
		a, b = b, a
		mass := ChannelSum(a, 3)
		if mass >= prev {
			t.Fatalf("step %d: mass %f did not decrease from %f", i, mass, prev)
		}
		prev = mass
	}
}

func TestAdvectMovesAlongVelocity(t *testing.T) {
	n := 32
	vel := mustGrid(t, field.Velocity, n, n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			vel.Set(x, y, 0, 100) // cells per second to the right
		}
	}
	src := mustGrid(t, field.Dye, n, n)
	Splat(nil, src, src, 0.3, 0.5, [4]float32{1, 0, 0}, 0.001, 1)
	dst := mustGrid(t, field.Dye, n, n)

	Advect(nil, dst, vel, src, 0.05, 1) // 5 cells

	before := src.Sample(0.3, 0.5)[3]
	after := dst.Sample(0.3+5.0/float32(n), 0.5)[3]
	if math.Abs(float64(after-before)) > 1e-4 {
		t.Errorf("density at shifted point = %f, want %f", after, before)
	}
}

func TestAdvectKeepsMaxBound(t *testing.T) {
	vel := mustGrid(t, field.Velocity, 16, 16)
	randomFill(vel, 5)
	for i := range vel.Data {
		vel.Data[i] *= 200
	}
	src := mustGrid(t, field.Dye, 24, 24)
	for i := range src.Data {
		src.Data[i] = float32(i%7) / 7
	}
	dst := mustGrid(t, field.Dye, 24, 24)

	Advect(nil, dst, vel, src, 0.016, 0.97)
	limit := MaxAbs(src) * 0.97
	if got := MaxAbs(dst); got > limit+1e-6 {
		t.Errorf("max after advect %f exceeds %f", got, limit)
	}
}

func TestSplatLocality(t *testing.T) {
	n := 64
	v := mustGrid(t, field.Velocity, n, n)
	out := mustGrid(t, field.Velocity, n, n)
	radius := float32(0.001)

	Splat(nil, out, v, 0.5, 0.5, [4]float32{10, -5}, radius, 1)

	center := out.Sample(0.5, 0.5)
	if center[0] < 8 || center[1] > -4 {
		t.Errorf("centre = %v, want close to (10,-5)", center[:2])
	}

	prev := float32(math.Inf(1))
	for _, d := range []float32{0, 0.02, 0.04, 0.06} {
		got := out.Sample(0.5+d, 0.5)[0]
		if got > prev {
			t.Errorf("influence increased with distance at d=%f: %f > %f", d, got, prev)
		}
		prev = got
	}

	// Far outside the radius nothing changes
	for _, p := range [][2]float32{{0.05, 0.05}, {0.95, 0.1}, {0.1, 0.9}} {
		s := out.Sample(p[0], p[1])
		if s[0] != 0 || s[1] != 0 {
			t.Errorf("sample at %v = %v, want 0", p, s[:2])
		}
	}
}

func TestSplatDyeDensityClamped(t *testing.T) {
	d := mustGrid(t, field.Dye, 16, 16)
	for i := 0; i < 5; i++ {
		Splat(nil, d, d, 0.5, 0.5, [4]float32{1, 0.5, 0}, 0.05, 1)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			a := d.At(x, y, 3)
			if a < 0 || a > 1 {
				t.Fatalf("density %f out of [0,1] at (%d,%d)", a, x, y)
			}
		}
	}
	if d.Sample(0.5, 0.5)[0] <= 1 {
		t.Error("colour should accumulate without clamping")
	}
}

func TestSplatClampsPoint(t *testing.T) {
	a := mustGrid(t, field.Scalar, 16, 16)
	b := mustGrid(t, field.Scalar, 16, 16)
	Splat(nil, a, a, 5, -3, [4]float32{1}, 0.01, 1)
	Splat(nil, b, b, 1, 0, [4]float32{1}, 0.01, 1)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("out-of-range splat differs from clamped splat at %d", i)
		}
	}

	c := mustGrid(t, field.Scalar, 16, 16)
	Splat(nil, c, c, float32(math.NaN()), 0.5, [4]float32{1}, 0.01, 1)
	for _, v := range c.Data {
		if v != v {
			t.Fatal("NaN point leaked into field")
		}
	}
}

func TestSplatAspectStretchesX(t *testing.T) {
	a := mustGrid(t, field.Scalar, 64, 64)
	Splat(nil, a, a, 0.5, 0.5, [4]float32{1}, 0.002, 2)
	alongX := a.Sample(0.53, 0.5)[0]
	alongY := a.Sample(0.5, 0.53)[0]
	if alongX >= alongY {
		t.Errorf("aspect 2 should shrink x falloff: x=%f y=%f", alongX, alongY)
	}
}

func TestCurlOfRotation(t *testing.T) {
	n := 16
	v := mustGrid(t, field.Velocity, n, n)
	c := float32(n-1) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			// Counter-clockwise rigid rotation: curl = 2
			v.Set(x, y, 0, -(float32(y) - c))
			v.Set(x, y, 1, float32(x)-c)
		}
	}
	curl := mustGrid(t, field.Scalar, n, n)
	Curl(nil, curl, v)

	if got := curl.At(n/2, n/2, 0); math.Abs(float64(got-2)) > 1e-5 {
		t.Errorf("interior curl = %f, want 2", got)
	}
}

func TestDivergenceOfUniformFlowIsZeroInside(t *testing.T) {
	n := 8
	v := mustGrid(t, field.Velocity, n, n)
	for i := 0; i < n*n; i++ {
		v.Data[i*2] = 3
	}
	div := mustGrid(t, field.Scalar, n, n)
	Divergence(nil, div, v)

	if got := div.At(4, 4, 0); got != 0 {
		t.Errorf("interior divergence = %f, want 0", got)
	}
	// Right wall reflects the flow: 0.5*(-3 - 3)
	if got := div.At(n-1, 4, 0); got != -3 {
		t.Errorf("right wall divergence = %f, want -3", got)
	}
}

func TestVorticityClampsVelocity(t *testing.T) {
	n := 8
	v := mustGrid(t, field.Velocity, n, n)
	v.Fill(999)
	curl := mustGrid(t, field.Scalar, n, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			curl.Set(x, y, 0, float32(x*x))
		}
	}
	out := mustGrid(t, field.Velocity, n, n)
	Vorticity(nil, out, v, curl, 1e6, 1)

	if m := MaxAbs(out); m > maxVelocity {
		t.Errorf("max velocity %f exceeds clamp", m)
	}
}

func TestVorticityZeroStrengthIsIdentity(t *testing.T) {
	v := mustGrid(t, field.Velocity, 8, 8)
	randomFill(v, 6)
	curl := mustGrid(t, field.Scalar, 8, 8)
	Curl(nil, curl, v)
	out := mustGrid(t, field.Velocity, 8, 8)
	Vorticity(nil, out, v, curl, 0, 0.016)
	for i := range v.Data {
		if out.Data[i] != v.Data[i] {
			t.Fatalf("Data[%d] = %f, want %f", i, out.Data[i], v.Data[i])
		}
	}
}

// project runs the pressure solve and gradient subtraction and returns the
// L2 norm of the recomputed divergence.
func project(t *testing.T, v *field.Grid, iterations int) float32 {
	t.Helper()
	w, h := v.Size()
	div := mustGrid(t, field.Scalar, w, h)
	p := mustGrid(t, field.Scalar, w, h)
	q := mustGrid(t, field.Scalar, w, h)
	out := mustGrid(t, field.Velocity, w, h)

	Divergence(nil, div, v)
	for i := 0; i < iterations; i++ {
		Pressure(nil, q, p, div)
		p, q = q, p
	}
	GradientSubtract(nil, out, p, v)
	Divergence(nil, div, out)
	return Norm(div)
}

func TestProjectionReducesDivergence(t *testing.T) {
	n := 48
	v := sourceField(t, n)
	div := mustGrid(t, field.Scalar, n, n)
	Divergence(nil, div, v)
	before := Norm(div)
	if before == 0 {
		t.Fatal("test field has no divergence")
	}

	few := project(t, v, 5)
	many := project(t, v, 80)

	t.Logf("divergence L2: before=%f n=5:%f n=80:%f", before, few, many)
	if few >= before {
		t.Errorf("5 iterations: %f not below %f", few, before)
	}
	if many >= few {
		t.Errorf("80 iterations: %f not below 5 iterations %f", many, few)
	}
}

// Central differences on a collocated grid leave the checkerboard modes
// untouched, so divergence only converges toward zero for smooth fields.
// White noise is still strictly reduced.
func TestProjectionReducesNoiseDivergence(t *testing.T) {
	n := 32
	v := mustGrid(t, field.Velocity, n, n)
	randomFill(v, 7)
	div := mustGrid(t, field.Scalar, n, n)
	Divergence(nil, div, v)
	before := Norm(div)

	after := project(t, v, 80)
	t.Logf("noise divergence L2: before=%f n=80:%f", before, after)
	if !(after < before) {
		t.Errorf("80 iterations: %f not below %f", after, before)
	}
}

func TestSplatInPlaceMatchesSeparateDestination(t *testing.T) {
	a := mustGrid(t, field.Dye, 16, 16)
	randomFill(a, 3)
	b := a.Clone()
	out := mustGrid(t, field.Dye, 16, 16)

	Splat(nil, a, a, 0.4, 0.6, [4]float32{1, 0.5, 0.25}, 0.01, 1)
	Splat(nil, out, b, 0.4, 0.6, [4]float32{1, 0.5, 0.25}, 0.01, 1)
	for i := range a.Data {
		if a.Data[i] != out.Data[i] {
			t.Fatalf("index %d: in place %f, separate %f", i, a.Data[i], out.Data[i])
		}
	}
}

func TestPoolMatchesSerial(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	n := 96
	v := sourceField(t, n)
	randomFill(v, 7)
	curl := mustGrid(t, field.Scalar, n, n)
	Curl(nil, curl, v)

	serial := mustGrid(t, field.Velocity, n, n)
	parallel := mustGrid(t, field.Velocity, n, n)
	Vorticity(nil, serial, v, curl, 30, 0.016)
	Vorticity(pool, parallel, v, curl, 30, 0.016)

	for i := range serial.Data {
		if serial.Data[i] != parallel.Data[i] {
			t.Fatalf("Data[%d]: serial %f parallel %f", i, serial.Data[i], parallel.Data[i])
		}
	}
}

func TestReductions(t *testing.T) {
	g := mustGrid(t, field.Velocity, 2, 1)
	copy(g.Data, []float32{3, -4, 0, 0})
	if got := Norm(g); math.Abs(float64(got-5)) > 1e-5 {
		t.Errorf("Norm = %f, want 5", got)
	}
	if got := MaxAbs(g); got != 4 {
		t.Errorf("MaxAbs = %f, want 4", got)
	}
	if got := ChannelSum(g, 1); got != 4 {
		t.Errorf("ChannelSum = %f, want 4", got)
	}
	if got := KineticEnergy(g); got != 12.5 {
		t.Errorf("KineticEnergy = %f, want 12.5", got)
	}
}

func BenchmarkAdvectDye(b *testing.B) {
	vel := mustGrid(b, field.Velocity, 128, 128)
	randomFill(vel, 8)
	src := mustGrid(b, field.Dye, 512, 512)
	dst := mustGrid(b, field.Dye, 512, 512)
	pool := NewPool(0)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Advect(pool, dst, vel, src, 0.016, 0.97)
	}
}

func BenchmarkPressure(b *testing.B) {
	p := mustGrid(b, field.Scalar, 128, 128)
	q := mustGrid(b, field.Scalar, 128, 128)
	div := mustGrid(b, field.Scalar, 128, 128)
	randomFill(div, 9)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Pressure(nil, q, p, div)
		p, q = q, p
	}
}
