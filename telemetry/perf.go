package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of the solver step.
type Phase uint8

// Step phases in execution order.
const (
	PhaseAdvectVelocity Phase = iota
	PhaseAdvectDye
	PhaseCurl
	PhaseVorticity
	PhaseDivergence
	PhasePressure
	PhaseGradientSubtract

	numPhases
)

var phaseNames = [numPhases]string{
	"advect_velocity", "advect_dye", "curl", "vorticity",
	"divergence", "pressure", "gradient_subtract",
}

func (p Phase) String() string {
	if p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases lists every step phase in execution order.
var Phases = []Phase{
	PhaseAdvectVelocity, PhaseAdvectDye, PhaseCurl, PhaseVorticity,
	PhaseDivergence, PhasePressure, PhaseGradientSubtract,
}

// PhaseTimes holds one duration per phase.
type PhaseTimes [numPhases]time.Duration

// perfSample holds timing data for a single step.
type perfSample struct {
	step   time.Duration
	phases PhaseTimes
}

// PerfCollector tracks step timings over a rolling window of steps.
// All methods are no-ops on a nil collector.
type PerfCollector struct {
	samples []perfSample
	next    int
	count   int

	current    PhaseTimes
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame     time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize steps
// (60 if windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]perfSample, windowSize)}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.stepStart = time.Now()
	p.current = PhaseTimes{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	if p == nil {
		return
	}
	now := time.Now()
	p.endPhase(now)
	p.phase, p.phaseStart, p.inPhase = phase, now, true
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick finishes the step and records it in the window.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := time.Now()
	p.endPhase(now)

	p.samples[p.next] = perfSample{step: now.Sub(p.stepStart), phases: p.current}
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated step timings.
type PerfStats struct {
	Steps           int // samples in the window
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg PhaseTimes
	PhasePct [numPhases]float64 // share of the average step, 0-100

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil {
		return PerfStats{}
	}

	s := PerfStats{FrameDuration: p.frameDuration, Steps: p.count}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phaseSum PhaseTimes
	for i, sample := range p.samples[:p.count] {
		total += sample.step
		if i == 0 || sample.step < s.MinTickDuration {
			s.MinTickDuration = sample.step
		}
		if sample.step > s.MaxTickDuration {
			s.MaxTickDuration = sample.step
		}
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	for ph, sum := range phaseSum {
		s.PhaseAvg[ph] = sum / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// Slowest returns the phase with the largest average time.
func (s PerfStats) Slowest() Phase {
	slowest := PhaseAdvectVelocity
	for _, ph := range Phases {
		if s.PhaseAvg[ph] > s.PhaseAvg[slowest] {
			slowest = ph
		}
	}
	return slowest
}

// LogStats logs the window at Info level.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgTickDuration.Microseconds(),
		"max_step_us", s.MaxTickDuration.Microseconds(),
		"steps_per_sec", int(s.TicksPerSecond),
		"slowest", s.Slowest().String(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, ph := range Phases {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd           int32   `csv:"window_end"`
	AvgStepUS           int64   `csv:"avg_step_us"`
	MinStepUS           int64   `csv:"min_step_us"`
	MaxStepUS           int64   `csv:"max_step_us"`
	StepsPerSec         float64 `csv:"steps_per_sec"`
	FPS                 float64 `csv:"fps"`
	AdvectVelocityPct   float64 `csv:"advect_velocity_pct"`
	AdvectDyePct        float64 `csv:"advect_dye_pct"`
	CurlPct             float64 `csv:"curl_pct"`
	VorticityPct        float64 `csv:"vorticity_pct"`
	DivergencePct       float64 `csv:"divergence_pct"`
	PressurePct         float64 `csv:"pressure_pct"`
	GradientSubtractPct float64 `csv:"gradient_subtract_pct"`
}

// ToCSV flattens s for perf.csv.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:           windowEnd,
		AvgStepUS:           s.AvgTickDuration.Microseconds(),
		MinStepUS:           s.MinTickDuration.Microseconds(),
		MaxStepUS:           s.MaxTickDuration.Microseconds(),
		StepsPerSec:         s.TicksPerSecond,
		FPS:                 s.FPS,
		AdvectVelocityPct:   s.PhasePct[PhaseAdvectVelocity],
		AdvectDyePct:        s.PhasePct[PhaseAdvectDye],
		CurlPct:             s.PhasePct[PhaseCurl],
		VorticityPct:        s.PhasePct[PhaseVorticity],
		DivergencePct:       s.PhasePct[PhaseDivergence],
		PressurePct:         s.PhasePct[PhasePressure],
		GradientSubtractPct: s.PhasePct[PhaseGradientSubtract],
	}
}
