// Shader debug tool - runs the GPU pass pipeline in a hidden window after a
// centre splat and writes the dye to a PNG. With -compare it runs the CPU
// backend alongside and reports the largest per-sample difference.
//
// Usage: go run ./cmd/shaderdebug -steps 60 -out debug.png -compare
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/solver"
)

// driver is the part of a solver the debug run touches.
type driver interface {
	Step(dt float32)
	AddVelocitySplat(x, y, fx, fy float32)
	AddDyeSplat(x, y, r, g, b float32)
	Snapshot(q solver.Quantity) (*field.Grid, error)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	steps := flag.Int("steps", 60, "Steps to run after the splat")
	simSize := flag.Int("sim", 64, "Velocity grid short side")
	dyeSize := flag.Int("dye", 128, "Dye grid short side")
	compare := flag.Bool("compare", false, "Also run the CPU backend and report the difference")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Fluid.SimSize = *simSize
	cfg.Fluid.DyeSize = *dyeSize
	opts := solver.OptionsFromConfig(cfg)
	opts.Aspect = 1

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(256, 256, "Shader Debug")
	defer rl.CloseWindow()

	backend, err := renderer.NewBackend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compile pass programs: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	gpu, err := solver.New[*renderer.Target](backend, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to allocate GPU fields: %v\n", err)
		os.Exit(1)
	}
	defer gpu.Close()

	gpuDye := run(gpu, *steps)
	if gpuDye == nil {
		os.Exit(1)
	}

	img := rl.NewImageFromImage(field.DyeImage(gpuDye, gpuDye.W, gpuDye.H))
	ok := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)
	if !ok {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
	fmt.Printf("Dye rendered to: %s (%dx%d, %d steps)\n", *outPath, gpuDye.W, gpuDye.H, *steps)

	if !*compare {
		return
	}

	cpuBackend := solver.NewCPUBackend(cfg.GPU.Workers)
	defer cpuBackend.Close()
	cpu, err := solver.New[*field.Grid](cpuBackend, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to allocate CPU fields: %v\n", err)
		os.Exit(1)
	}
	defer cpu.Close()

	cpuDye := run(cpu, *steps)
	if cpuDye == nil {
		os.Exit(1)
	}
	diff, at := maxDiff(gpuDye, cpuDye)
	fmt.Printf("Max |gpu - cpu| dye difference: %.6f at sample %d\n", diff, at)
}

// run splats once at the centre, steps, and reads the dye back.
func run(d driver, steps int) *field.Grid {
	d.AddVelocitySplat(0.5, 0.5, 0, 400)
	d.AddDyeSplat(0.5, 0.5, 1, 0.5, 0.1)
	for i := 0; i < steps; i++ {
		d.Step(1.0 / 60)
	}
	dye, err := d.Snapshot(solver.QuantityDye)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Readback failed: %v\n", err)
		return nil
	}
	return dye
}

func maxDiff(a, b *field.Grid) (float32, int) {
	var best float32
	at := -1
	for i := range a.Data {
		if i >= len(b.Data) {
			break
		}
		d := a.Data[i] - b.Data[i]
		if d < 0 {
			d = -d
		}
		if d > best {
			best, at = d, i
		}
	}
	return best, at
}
