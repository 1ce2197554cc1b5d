package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fluid.PressureIterations != 20 {
		t.Errorf("pressure_iterations = %d, want 20", cfg.Fluid.PressureIterations)
	}
	if cfg.Fluid.Vorticity != 30 {
		t.Errorf("vorticity = %f, want 30", cfg.Fluid.Vorticity)
	}
	if cfg.Fluid.PressureRetain != 1 {
		t.Errorf("pressure_retain = %f, want 1", cfg.Fluid.PressureRetain)
	}
	if cfg.Derived.SimH != 128 || cfg.Derived.SimW != 228 {
		t.Errorf("sim grid = %dx%d, want 228x128", cfg.Derived.SimW, cfg.Derived.SimH)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("fluid:\n  vorticity: 5\n  pressure_iterations: 40\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fluid.Vorticity != 5 || cfg.Fluid.PressureIterations != 40 {
		t.Errorf("overlay not applied: %+v", cfg.Fluid)
	}
	// Untouched keys keep their defaults
	if cfg.Fluid.DensityDissipation != 0.97 {
		t.Errorf("density_dissipation = %f, want 0.97", cfg.Fluid.DensityDissipation)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"density dissipation above one", "fluid:\n  density_dissipation: 1.5\n"},
		{"zero max dt", "screen:\n  max_dt: 0\n"},
		{"negative max dt", "screen:\n  max_dt: -0.01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolution(t *testing.T) {
	tests := []struct {
		name         string
		base         int
		aspect       float32
		scale        float32
		maxSize      int
		wantW, wantH int
	}{
		{"square", 128, 1, 1, 0, 128, 128},
		{"landscape", 128, 2, 1, 0, 256, 128},
		{"portrait", 128, 0.5, 1, 0, 128, 256},
		{"dpr", 64, 1, 2, 0, 128, 128},
		{"clamped", 1024, 2, 2, 2048, 2048, 2048},
		{"tiny", 1, 1, 0.01, 0, 1, 1},
		{"bad aspect", 32, 0, 1, 0, 32, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Resolution(tt.base, tt.aspect, tt.scale, tt.maxSize)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Resolution = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Fluid.Vorticity = 12
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Fluid.Vorticity != 12 {
		t.Errorf("vorticity = %f, want 12", back.Fluid.Vorticity)
	}
}
