// Package game drives a fluid solver from a raylib window or headlessly.
package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/inspector"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/splat"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/tracer"
	"github.com/pthm-cable/fluid/ui"
)

// tracerCount is the number of particles in the tracer overlay.
const tracerCount = 2000

// headlessBurstInterval is the simulated time between autonomous random
// bursts in headless mode.
const headlessBurstInterval = 5.0

// fallbackDT is the headless step when the config carries no usable max_dt.
const fallbackDT = 1.0 / 60

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 uses the config value
	OutputDir      string
	CaptureDir     string // where F12 writes PNGs; empty uses OutputDir or "."
	Headless       bool
}

// Game holds the complete driver state.
type Game struct {
	cfg     *config.Config
	sim     solver.Simulation
	backend io.Closer
	view    view
	cam     *camera.Camera

	rng     *rand.Rand
	palette *splat.Palette
	pointer splat.Pointer
	colors  splat.ColorCycler
	burst   int // splats queued for the next update

	// UI
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	statsPanel *ui.StatsPanel
	overlays   *ui.OverlayRegistry
	inspector  *inspector.Inspector
	tracers    *tracer.System

	// State
	tick     int32
	simTime  float64
	paused   bool
	headless bool

	// Window dimensions
	screenWidth, screenHeight float32

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	lastFields       telemetry.FieldStats
	captureDir       string
}

// NewGameWithOptions creates a game. Headless games run the CPU backend;
// window games try the GPU backend first and fall back to the CPU when float
// render targets or shaders are unavailable. A window must already be open
// unless opts.Headless is set.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	palette, err := splat.NewPalette(cfg.Splat.Palette, cfg.Splat.ColorIntensity)
	if err != nil {
		return nil, err
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	g := &Game{
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(opts.Seed)),
		palette:          palette,
		colors:           splat.ColorCycler{Interval: float32(cfg.Splat.ColorUpdateInterval)},
		headless:         opts.Headless,
		screenWidth:      float32(cfg.Screen.Width),
		screenHeight:     float32(cfg.Screen.Height),
		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.MaxDT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		captureDir:       opts.CaptureDir,
	}
	if g.captureDir == "" {
		g.captureDir = opts.OutputDir
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	sopts := solver.OptionsFromConfig(cfg)
	if opts.Headless {
		var cpu *solver.Solver[*field.Grid]
		cpu, err = newCPUSolver(cfg, sopts)
		if err == nil {
			g.sim, g.backend = cpu, cpu.Backend()
		}
	} else {
		g.screenWidth = float32(rl.GetScreenWidth())
		g.screenHeight = float32(rl.GetScreenHeight())
		sopts.Aspect = g.screenWidth / g.screenHeight
		sopts.Scale = rl.GetWindowScaleDPI().X
		err = g.initWindowSolver(cfg, sopts)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(10, 100, 300)
		g.statsPanel = ui.NewStatsPanel(10, 100, 300)
		g.overlays = ui.NewOverlayRegistry()
		g.inspector = inspector.NewInspector(int32(g.screenWidth))
		g.tracers = tracer.New(tracerCount, opts.Seed)
	}
	if err != nil {
		g.outputManager.Close()
		return nil, err
	}
	g.cam = camera.New(g.screenWidth, g.screenHeight)
	g.sim.SetPerf(g.perfCollector)

	// Start with a burst so the screen is not empty.
	g.queueBurst()

	w, h := g.sim.SimSize()
	dw, dh := g.sim.DyeSize()
	slog.Info("fluid ready",
		"headless", opts.Headless,
		"sim", fmt.Sprintf("%dx%d", w, h),
		"dye", fmt.Sprintf("%dx%d", dw, dh),
		"palette", palette.Name(),
	)
	return g, nil
}

func newCPUSolver(cfg *config.Config, opts solver.Options) (*solver.Solver[*field.Grid], error) {
	b := solver.NewCPUBackend(cfg.GPU.Workers)
	s, err := solver.New[*field.Grid](b, opts)
	if err != nil {
		b.Close()
		return nil, err
	}
	return s, nil
}

// initWindowSolver sets up the GPU pipeline, or the CPU one if the GPU
// cannot run it.
func (g *Game) initWindowSolver(cfg *config.Config, opts solver.Options) error {
	gpu, err := newGPUSolver(opts)
	if err == nil {
		display, derr := renderer.NewDisplay()
		if derr == nil {
			g.sim, g.backend = gpu, gpu.Backend()
			g.view = &gpuView{sim: gpu, display: display}
			return nil
		}
		gpu.Close()
		gpu.Backend().Close()
		err = derr
	}
	if !errors.Is(err, renderer.ErrFloatTargetUnsupported) && !errors.Is(err, renderer.ErrShaderCompile) {
		return err
	}

	slog.Warn("gpu backend unavailable, using cpu", "error", err)
	cpu, err := newCPUSolver(cfg, opts)
	if err != nil {
		return err
	}
	g.sim, g.backend = cpu, cpu.Backend()
	g.view = &cpuView{sim: cpu}
	return nil
}

func newGPUSolver(opts solver.Options) (*solver.Solver[*renderer.Target], error) {
	b, err := renderer.NewBackend()
	if err != nil {
		return nil, err
	}
	s, err := solver.New[*renderer.Target](b, opts)
	if err != nil {
		b.Close()
		return nil, err
	}
	return s, nil
}

// Tick returns the number of completed steps.
func (g *Game) Tick() int32 { return g.tick }

// Simulation returns the running solver.
func (g *Game) Simulation() solver.Simulation { return g.sim }

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool { return g.paused }

// Update advances one frame in window mode.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()

	dt := rl.GetFrameTime()
	if maxDT := g.cfg.Derived.MaxDT32; maxDT > 0 && dt > maxDT {
		dt = maxDT
	}
	g.advance(dt)
	g.inspector.Refresh(g.sim)
	g.updateTracers(dt)
}

// updateTracers moves the tracer particles while their overlay is shown.
func (g *Game) updateTracers(dt float32) {
	if g.paused || !g.overlays.IsEnabled(ui.OverlayTracers) {
		return
	}
	velocity, err := g.sim.Snapshot(solver.QuantityVelocity)
	if err != nil {
		return
	}
	g.tracers.Update(velocity, dt)
}

// UpdateHeadless advances one fixed step without graphics, injecting a
// random burst every few simulated seconds.
func (g *Game) UpdateHeadless() {
	dt := g.cfg.Derived.MaxDT32
	if !(dt > 0) {
		dt = fallbackDT
	}
	every := int32(headlessBurstInterval / float64(dt))
	if every > 0 && g.tick > 0 && g.tick%every == 0 {
		g.queueBurst()
	}
	g.advance(dt)
}

// advance applies pending input and steps the solver.
func (g *Game) advance(dt float32) {
	if g.colors.Tick(dt) {
		g.pointer.Color = g.palette.Pick(g.rng)
	}
	if g.burst > 0 {
		splat.Random(g.sim, g.rng, g.palette, g.burst)
		for i := 0; i < g.burst; i++ {
			g.collector.RecordVelocitySplat()
			g.collector.RecordDyeSplat()
		}
		g.burst = 0
	}
	if g.pointer.Apply(g.sim, float32(g.cfg.Splat.Force)) {
		g.collector.RecordVelocitySplat()
		g.collector.RecordDyeSplat()
	}

	if g.paused {
		return
	}
	g.sim.Step(dt)
	skipped := !(dt > 0)
	g.collector.RecordStep(skipped)
	if !skipped {
		g.simTime += float64(dt)
	}
	g.tick++
	g.flushTelemetry()
}

// queueBurst schedules a random burst for the next update.
func (g *Game) queueBurst() {
	g.burst = splat.BurstSize(g.rng, g.cfg.Splat.RandomCountMin, g.cfg.Splat.RandomCountMax)
}

// TogglePause suspends or resumes stepping. Input still lands while paused.
func (g *Game) TogglePause() {
	g.paused = !g.paused
	slog.Info("pause toggled", "paused", g.paused, "tick", g.tick)
}

// ClearFields zeroes velocity, dye and pressure.
func (g *Game) ClearFields() {
	g.sim.Clear()
	g.collector.RecordClear()
}

// Unload releases the solver, view and output files.
func (g *Game) Unload() {
	if g.view != nil {
		g.view.Unload()
	}
	if err := g.sim.Close(); err != nil {
		slog.Error("failed to close solver", "error", err)
	}
	if err := g.backend.Close(); err != nil {
		slog.Error("failed to close backend", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
