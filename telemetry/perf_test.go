package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAdvectVelocity)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhasePressure)
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Steps != 5 {
		t.Errorf("Steps = %d, want 5", stats.Steps)
	}
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if stats.PhaseAvg[PhasePressure] <= 0 || stats.PhaseAvg[PhaseAdvectVelocity] <= 0 {
		t.Errorf("phases not recorded: %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseCurl] != 0 {
		t.Errorf("curl = %v, want 0 for an unused phase", stats.PhaseAvg[PhaseCurl])
	}
	if stats.PhasePct[PhasePressure] <= stats.PhasePct[PhaseAdvectVelocity] {
		t.Errorf("pressure %.1f%% should exceed advect %.1f%%",
			stats.PhasePct[PhasePressure], stats.PhasePct[PhaseAdvectVelocity])
	}
	if got := stats.Slowest(); got != PhasePressure {
		t.Errorf("Slowest = %v, want pressure", got)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAdvectVelocity)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Steps != 5 {
		t.Errorf("Steps = %d, want window size 5", stats.Steps)
	}
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Errorf("expected positive timings: %+v", stats)
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.Steps != 0 || stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("unexpected stats from empty collector: %+v", stats)
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("frame duration = %v, want >= 15ms", stats.FrameDuration)
	}
	if stats.FPS < 20 || stats.FPS > 70 {
		t.Errorf("FPS = %v, want about 60", stats.FPS)
	}
}

func TestPerfCollectorNilIsNoop(t *testing.T) {
	var pc *PerfCollector
	pc.StartTick()
	pc.StartPhase(PhaseCurl)
	pc.EndTick()
	pc.RecordFrame()

	if stats := pc.Stats(); stats != (PerfStats{}) {
		t.Errorf("unexpected stats from nil collector: %+v", stats)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseGradientSubtract.String() != "gradient_subtract" {
		t.Errorf("String = %q", PhaseGradientSubtract.String())
	}
	if Phase(200).String() != "unknown" {
		t.Errorf("out of range phase = %q", Phase(200).String())
	}
	if len(Phases) != int(numPhases) {
		t.Errorf("Phases has %d entries, want %d", len(Phases), numPhases)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 2 * time.Millisecond
	s.PhasePct[PhasePressure] = 55
	s.PhasePct[PhaseAdvectDye] = 20

	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgStepUS != 2000 {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.PressurePct != 55 || row.AdvectDyePct != 20 {
		t.Errorf("phase percentages not copied: %+v", row)
	}
}
