package renderer

import (
	"log/slog"
	"math"
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/field"
)

func TestGridFromRGBAKeepsRoleChannels(t *testing.T) {
	rgba := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}

	tests := []struct {
		role field.Role
		want []float32
	}{
		{field.Velocity, []float32{1, 2, 5, 6}},
		{field.Dye, []float32{1, 2, 3, 4, 5, 6, 7, 8}},
		{field.Scalar, []float32{1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			g, err := gridFromRGBA(tt.role, 2, 1, rgba)
			if err != nil {
				t.Fatalf("gridFromRGBA: %v", err)
			}
			if len(g.Data) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(g.Data), len(tt.want))
			}
			for i, v := range tt.want {
				if g.Data[i] != v {
					t.Errorf("data[%d] = %v, want %v", i, g.Data[i], v)
				}
			}
		})
	}
}

func TestGridFromRGBAShortData(t *testing.T) {
	if _, err := gridFromRGBA(field.Dye, 2, 2, make([]float32, 8)); err == nil {
		t.Error("expected error for short readback")
	}
}

func TestShadersDeclareUniforms(t *testing.T) {
	for _, spec := range passSpecs {
		src, err := shaderSource(spec.file)
		if err != nil {
			t.Fatalf("%s: %v", spec.name, err)
		}
		if !strings.HasPrefix(src, "#version 330") {
			t.Errorf("%s: missing #version 330 header", spec.file)
		}
		for _, u := range append([]string{"texelSize"}, spec.uniforms...) {
			if !strings.Contains(src, " "+u+";") {
				t.Errorf("%s: uniform %q not declared", spec.file, u)
			}
		}
		if !strings.Contains(src, "out vec4 finalColor;") {
			t.Errorf("%s: missing finalColor output", spec.file)
		}
	}
}

func TestGradientShaderUsesHalfDifference(t *testing.T) {
	src, err := shaderSource("gradient.fs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "0.5 * vec2(R - L, T - B)") {
		t.Error("gradient subtract must match the divergence stencil scale")
	}
}

func TestTraceLevel(t *testing.T) {
	tests := []struct {
		in   rl.TraceLogLevel
		want slog.Level
	}{
		{rl.LogTrace, slog.LevelDebug},
		{rl.LogDebug, slog.LevelDebug},
		{rl.LogInfo, slog.LevelInfo},
		{rl.LogWarning, slog.LevelWarn},
		{rl.LogError, slog.LevelError},
		{rl.LogFatal, slog.LevelError},
	}
	for _, tt := range tests {
		if got := traceLevel(tt.in); got != tt.want {
			t.Errorf("traceLevel(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampUnit(t *testing.T) {
	nan := float32(math.NaN())
	for _, tt := range []struct{ in, want float32 }{
		{-1, 0}, {0.25, 0.25}, {3, 1}, {nan, 0},
	} {
		if got := clampUnit(tt.in); got != tt.want {
			t.Errorf("clampUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
