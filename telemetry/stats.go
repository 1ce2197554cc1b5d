package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/kernel"
)

// FieldStats summarizes the solver fields at one instant.
type FieldStats struct {
	DyeMass       float64 `csv:"dye_mass"`       // Mean dye density per cell
	KineticEnergy float64 `csv:"kinetic_energy"` // Mean 0.5*|v|² per cell
	DivergenceRMS float64 `csv:"divergence_rms"` // RMS of the pre-projection divergence
	SpeedP50      float64 `csv:"speed_p50"`
	SpeedP90      float64 `csv:"speed_p90"`
	MaxSpeed      float64 `csv:"max_speed"`
}

// ComputeFieldStats measures velocity, dye and divergence grids. Any grid may
// be nil, leaving its statistics at zero.
func ComputeFieldStats(velocity, dye, divergence *field.Grid) FieldStats {
	var s FieldStats

	if dye != nil {
		s.DyeMass = float64(kernel.ChannelSum(dye, 3)) / float64(dye.W*dye.H)
	}
	if divergence != nil {
		s.DivergenceRMS = float64(kernel.Norm(divergence)) / math.Sqrt(float64(divergence.W*divergence.H))
	}
	if velocity != nil {
		n := velocity.W * velocity.H
		s.KineticEnergy = float64(kernel.KineticEnergy(velocity)) / float64(n)

		speeds := make([]float64, n)
		for i := range speeds {
			vx := float64(velocity.Data[i*2])
			vy := float64(velocity.Data[i*2+1])
			speeds[i] = math.Sqrt(vx*vx + vy*vy)
		}
		sort.Float64s(speeds)
		s.SpeedP50 = Percentile(speeds, 0.50)
		s.SpeedP90 = Percentile(speeds, 0.90)
		s.MaxSpeed = Percentile(speeds, 1)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("dye_mass", s.DyeMass),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("divergence_rms", s.DivergenceRMS),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("max_speed", s.MaxSpeed),
	)
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Activity during the window
	Steps          int `csv:"steps"`
	SkippedSteps   int `csv:"skipped_steps"`
	VelocitySplats int `csv:"velocity_splats"`
	DyeSplats      int `csv:"dye_splats"`
	Resizes        int `csv:"resizes"`
	Clears         int `csv:"clears"`

	// Field state at window end
	FieldStats
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("steps", s.Steps),
		slog.Int("skipped_steps", s.SkippedSteps),
		slog.Int("velocity_splats", s.VelocitySplats),
		slog.Int("dye_splats", s.DyeSplats),
		slog.Int("resizes", s.Resizes),
		slog.Int("clears", s.Clears),
		slog.Any("fields", s.FieldStats),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"steps", s.Steps,
		"velocity_splats", s.VelocitySplats,
		"dye_splats", s.DyeSplats,
		"dye_mass", s.DyeMass,
		"kinetic_energy", s.KineticEnergy,
		"divergence_rms", s.DivergenceRMS,
		"max_speed", s.MaxSpeed,
	)
}
