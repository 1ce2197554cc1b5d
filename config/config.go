// Package config provides configuration loading and access for the fluid simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned by Validate for out-of-range parameters.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Splat     SplatConfig     `yaml:"splat"`
	GPU       GPUConfig       `yaml:"gpu"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Stream    StreamConfig    `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	MaxDT     float64 `yaml:"max_dt"` // Frame dt is clamped to this before stepping
}

// FluidConfig holds solver tunables.
type FluidConfig struct {
	SimSize             int     `yaml:"sim_size"` // Short-side resolution of velocity/pressure grids
	DyeSize             int     `yaml:"dye_size"` // Short-side resolution of the dye grid
	DensityDissipation  float64 `yaml:"density_dissipation"`
	VelocityDissipation float64 `yaml:"velocity_dissipation"`
	PressureIterations  int     `yaml:"pressure_iterations"`
	PressureRetain      float64 `yaml:"pressure_retain"` // Pressure multiplier before Jacobi (1 = warm start)
	Vorticity           float64 `yaml:"vorticity"`
	SplatRadius         float64 `yaml:"splat_radius"`
}

// SplatConfig holds impulse injection parameters used by drivers.
type SplatConfig struct {
	Force               float64 `yaml:"force"`
	ColorIntensity      float64 `yaml:"color_intensity"`
	ColorUpdateInterval float64 `yaml:"color_update_interval"` // Seconds between pointer colour changes
	RandomCountMin      int     `yaml:"random_count_min"`
	RandomCountMax      int     `yaml:"random_count_max"`
	Palette             string  `yaml:"palette"`
}

// GPUConfig holds GPU and worker limits.
type GPUConfig struct {
	MaxTextureSize int `yaml:"max_texture_size"`
	Workers        int `yaml:"workers"` // CPU backend workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// StreamConfig holds websocket streaming parameters.
type StreamConfig struct {
	Address   string `yaml:"address"`
	FPS       int    `yaml:"fps"`
	FrameSize int    `yaml:"frame_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxDT32 float32 // Screen.MaxDT as float32
	Aspect  float32 // Screen.Width / Screen.Height
	SimW    int     // Velocity grid size at scale 1
	SimH    int
	DyeW    int // Dye grid size at scale 1
	DyeH    int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks ranges the solver depends on.
func (c *Config) Validate() error {
	f := c.Fluid
	switch {
	case f.SimSize < 1:
		return fmt.Errorf("%w: fluid.sim_size %d", ErrInvalid, f.SimSize)
	case f.DyeSize < 1:
		return fmt.Errorf("%w: fluid.dye_size %d", ErrInvalid, f.DyeSize)
	case f.DensityDissipation <= 0 || f.DensityDissipation > 1:
		return fmt.Errorf("%w: fluid.density_dissipation %g not in (0,1]", ErrInvalid, f.DensityDissipation)
	case f.VelocityDissipation <= 0 || f.VelocityDissipation > 1:
		return fmt.Errorf("%w: fluid.velocity_dissipation %g not in (0,1]", ErrInvalid, f.VelocityDissipation)
	case f.PressureIterations < 0:
		return fmt.Errorf("%w: fluid.pressure_iterations %d", ErrInvalid, f.PressureIterations)
	case f.PressureRetain < 0 || f.PressureRetain > 1:
		return fmt.Errorf("%w: fluid.pressure_retain %g not in [0,1]", ErrInvalid, f.PressureRetain)
	case f.SplatRadius <= 0:
		return fmt.Errorf("%w: fluid.splat_radius %g", ErrInvalid, f.SplatRadius)
	case !(c.Screen.MaxDT > 0) || math.IsInf(c.Screen.MaxDT, 1):
		return fmt.Errorf("%w: screen.max_dt %g must be positive", ErrInvalid, c.Screen.MaxDT)
	case c.GPU.MaxTextureSize < 1:
		return fmt.Errorf("%w: gpu.max_texture_size %d", ErrInvalid, c.GPU.MaxTextureSize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxDT32 = float32(c.Screen.MaxDT)
	c.Derived.Aspect = 1
	if c.Screen.Width > 0 && c.Screen.Height > 0 {
		c.Derived.Aspect = float32(c.Screen.Width) / float32(c.Screen.Height)
	}
	c.Derived.SimW, c.Derived.SimH = Resolution(c.Fluid.SimSize, c.Derived.Aspect, 1, c.GPU.MaxTextureSize)
	c.Derived.DyeW, c.Derived.DyeH = Resolution(c.Fluid.DyeSize, c.Derived.Aspect, 1, c.GPU.MaxTextureSize)
}

// Resolution maps a short-side base size to grid dimensions for a display
// aspect ratio and device scale. The long side follows the aspect. Both sides
// are clamped to [1, maxSize]; maxSize <= 0 disables the upper clamp.
func Resolution(base int, aspect, scale float32, maxSize int) (w, h int) {
	if !(aspect > 0) || math.IsInf(float64(aspect), 0) {
		aspect = 1
	}
	ratio := aspect
	if ratio < 1 {
		ratio = 1 / ratio
	}
	short := float64(base) * float64(scale)
	long := short * float64(ratio)

	minor := clampSize(int(math.Round(short)), maxSize)
	major := clampSize(int(math.Round(long)), maxSize)

	if aspect < 1 {
		return minor, major
	}
	return major, minor
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func clampSize(v, maxSize int) int {
	if v < 1 {
		return 1
	}
	if maxSize > 0 && v > maxSize {
		return maxSize
	}
	return v
}
