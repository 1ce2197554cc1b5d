package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/fluid/field"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFieldStats(t *testing.T) {
	vel, _ := field.NewGrid(field.Velocity, 2, 2)
	copy(vel.Data, []float32{3, 4, 0, 0, 0, 0, 0, 0})
	dye, _ := field.NewGrid(field.Dye, 2, 1)
	dye.Set(0, 0, 3, 1)
	dye.Set(1, 0, 3, 0.5)
	div, _ := field.NewGrid(field.Scalar, 2, 2)
	div.Fill(2)

	s := ComputeFieldStats(vel, dye, div)

	if math.Abs(s.DyeMass-0.75) > 1e-6 {
		t.Errorf("DyeMass = %v, want 0.75", s.DyeMass)
	}
	// 0.5*25 over 4 cells
	if math.Abs(s.KineticEnergy-3.125) > 1e-6 {
		t.Errorf("KineticEnergy = %v, want 3.125", s.KineticEnergy)
	}
	if math.Abs(s.DivergenceRMS-2) > 1e-5 {
		t.Errorf("DivergenceRMS = %v, want 2", s.DivergenceRMS)
	}
	if math.Abs(s.MaxSpeed-5) > 1e-6 {
		t.Errorf("MaxSpeed = %v, want 5", s.MaxSpeed)
	}
	if s.SpeedP50 != 0 {
		t.Errorf("SpeedP50 = %v, want 0", s.SpeedP50)
	}
}

func TestComputeFieldStatsNil(t *testing.T) {
	s := ComputeFieldStats(nil, nil, nil)
	if s != (FieldStats{}) {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("window ticks = %d, want 10", c.WindowDurationTicks())
	}

	c.RecordStep(false)
	c.RecordStep(false)
	c.RecordStep(true)
	c.RecordDyeSplat()
	c.RecordVelocitySplat()
	c.RecordVelocitySplat()
	c.RecordResize()
	c.RecordClear()

	if c.ShouldFlush(5) {
		t.Error("should not flush mid-window")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at window end")
	}

	s := c.Flush(10, FieldStats{DyeMass: 0.5})
	if s.Steps != 2 || s.SkippedSteps != 1 || s.VelocitySplats != 2 || s.DyeSplats != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Resizes != 1 || s.Clears != 1 {
		t.Errorf("unexpected resize/clear counts: %+v", s)
	}
	if s.DyeMass != 0.5 {
		t.Errorf("DyeMass = %v, want 0.5", s.DyeMass)
	}
	if math.Abs(s.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("SimTimeSec = %v, want 1", s.SimTimeSec)
	}

	next := c.Flush(20, FieldStats{})
	if next.Steps != 0 || next.WindowStartTick != 10 {
		t.Errorf("counters not reset: %+v", next)
	}
}
