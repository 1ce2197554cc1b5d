package game

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/kernel"
	"github.com/pthm-cable/fluid/solver"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	cfg.Fluid.SimSize = 16
	cfg.Fluid.DyeSize = 32
	cfg.Fluid.PressureIterations = 5
	cfg.GPU.Workers = 1
	return cfg
}

func newHeadless(t *testing.T, outputDir string) *Game {
	t.Helper()
	g, err := NewGameWithOptions(Options{
		Config:         testConfig(t),
		Seed:           42,
		StatsWindowSec: 0.1,
		OutputDir:      outputDir,
		Headless:       true,
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func dyeMass(t *testing.T, g *Game) float32 {
	t.Helper()
	dye, err := g.Simulation().Snapshot(solver.QuantityDye)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return kernel.ChannelSum(dye, 3)
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestHeadlessRun(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, dir)

	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}
	if g.Tick() != 30 {
		t.Errorf("Tick = %d, want 30", g.Tick())
	}
	if m := dyeMass(t, g); m <= 0 {
		t.Errorf("dye mass = %v after the opening burst, want > 0", m)
	}

	// Header plus at least four windows of six ticks.
	if n := countLines(t, filepath.Join(dir, "stats.csv")); n < 5 {
		t.Errorf("stats.csv has %d lines, want >= 5", n)
	}
	if n := countLines(t, filepath.Join(dir, "perf.csv")); n < 5 {
		t.Errorf("perf.csv has %d lines, want >= 5", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestHeadlessZeroMaxDTStillSteps(t *testing.T) {
	cfg := testConfig(t)
	cfg.Screen.MaxDT = 0
	cfg.Derived.MaxDT32 = 0
	g, err := NewGameWithOptions(Options{Config: cfg, Seed: 1, Headless: true})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)

	for i := 0; i < 3; i++ {
		g.UpdateHeadless()
	}
	if want := 3 * fallbackDT; math.Abs(g.simTime-want) > 1e-6 {
		t.Errorf("simTime = %v, want %v", g.simTime, want)
	}
}

func TestPauseStopsStepping(t *testing.T) {
	g := newHeadless(t, "")
	g.UpdateHeadless()

	g.TogglePause()
	if !g.Paused() {
		t.Fatal("expected paused")
	}
	for i := 0; i < 5; i++ {
		g.UpdateHeadless()
	}
	if g.Tick() != 1 {
		t.Errorf("Tick = %d while paused, want 1", g.Tick())
	}

	g.TogglePause()
	g.UpdateHeadless()
	if g.Tick() != 2 {
		t.Errorf("Tick = %d after resume, want 2", g.Tick())
	}
}

func TestClearFields(t *testing.T) {
	g := newHeadless(t, "")
	g.UpdateHeadless()
	if dyeMass(t, g) == 0 {
		t.Fatal("expected dye after the opening burst")
	}

	g.ClearFields()
	if m := dyeMass(t, g); m != 0 {
		t.Errorf("dye mass after clear = %v, want 0", m)
	}
}

func TestPointerDragSplats(t *testing.T) {
	g := newHeadless(t, "")
	g.UpdateHeadless() // consume the opening burst
	g.ClearFields()

	g.pointer.Press(0.5, 0.5, [3]float32{1, 1, 1})
	g.pointer.Move(0.55, 0.5, 1)
	g.advance(1.0 / 60)

	if m := dyeMass(t, g); m <= 0 {
		t.Errorf("dye mass after drag = %v, want > 0", m)
	}
	if g.pointer.Moved {
		t.Error("pointer motion should be consumed")
	}
}

func TestCapture(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, "")
	g.captureDir = dir
	g.UpdateHeadless()

	path, err := g.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("capture written to %s, want under %s", path, dir)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat capture: %v", err)
	}
	if info.Size() == 0 {
		t.Error("capture is empty")
	}
}

func TestUnknownPaletteRejected(t *testing.T) {
	cfg := testConfig(t)
	cfg.Splat.Palette = "mauve"
	if _, err := NewGameWithOptions(Options{Config: cfg, Headless: true}); err == nil {
		t.Error("expected error for unknown palette")
	}
}
