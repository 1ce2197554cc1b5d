package game

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
)

// Capture writes the dye field at its native resolution to a PNG and
// returns the file path.
func (g *Game) Capture() (string, error) {
	dye, err := g.sim.Snapshot(solver.QuantityDye)
	if err != nil {
		return "", fmt.Errorf("reading dye: %w", err)
	}

	dir := g.captureDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating capture directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("fluid_%06d.png", g.tick))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating capture: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, field.DyeImage(dye, dye.W, dye.H)); err != nil {
		return "", fmt.Errorf("encoding capture: %w", err)
	}
	return path, nil
}
