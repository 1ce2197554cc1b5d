// Command fluidterm runs the fluid simulation in a terminal. Drag with the
// mouse to stir the dye.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/splat"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	fps := flag.Int("fps", 30, "Simulation steps per second")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	logPath := flag.String("log", "", "Write JSON logs to this file (empty = discard)")
	flag.Parse()

	if err := run(*configPath, *fps, *seed, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, "fluidterm:", err)
		os.Exit(1)
	}
}

func run(configPath string, fps int, seed int64, logPath string) error {
	// The terminal belongs to the UI; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// A terminal holds far fewer cells than a window.
	cfg.Fluid.SimSize = min(cfg.Fluid.SimSize, 64)
	cfg.Fluid.DyeSize = min(cfg.Fluid.DyeSize, 128)

	palette, err := splat.NewPalette(cfg.Splat.Palette, cfg.Splat.ColorIntensity)
	if err != nil {
		return err
	}

	backend := solver.NewCPUBackend(cfg.GPU.Workers)
	defer backend.Close()
	sim, err := solver.New[*field.Grid](backend, solver.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	defer sim.Close()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := newModel(cfg, sim, palette, seed, fps)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
