package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarNegative = rl.Color{R: 100, G: 140, B: 220, A: 255}
	ColorBarPositive = rl.Color{R: 220, G: 120, B: 80, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
)

const (
	labelWidth = 90
	barWidth   = 120
	barHeight  = 14
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)
	rl.DrawText(FormatValue(value, options["fmt"]), x+labelWidth, y, 14, ColorText)
	return 18
}

// DrawBar renders value as a fill of [0, max].
func DrawBar(x, y int32, name string, value float32, options map[string]string) int32 {
	ratio := barRatio(value, GetMax(options))

	rl.DrawText(name, x, y, 14, ColorTextDim)
	barX := x + labelWidth
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)
	rl.DrawRectangle(barX, y, int32(barWidth*ratio), barHeight, ColorBarFill)
	rl.DrawText(FormatValue(value, options["fmt"]), barX+barWidth+5, y, 14, ColorTextDim)
	return 18
}

// DrawSigned renders value as a fill growing left or right from the centre
// of a [-max, max] bar.
func DrawSigned(x, y int32, name string, value float32, options map[string]string) int32 {
	ratio := signedRatio(value, GetMax(options))

	rl.DrawText(name, x, y, 14, ColorTextDim)
	barX := x + labelWidth
	mid := barX + barWidth/2
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	half := float32(barWidth / 2)
	if ratio >= 0 {
		rl.DrawRectangle(mid, y, int32(half*ratio), barHeight, ColorBarPositive)
	} else {
		w := int32(-half * ratio)
		rl.DrawRectangle(mid-w, y, w, barHeight, ColorBarNegative)
	}
	rl.DrawLine(mid, y, mid, y+barHeight, ColorTextDim)
	rl.DrawText(FormatValue(value, options["fmt"]), barX+barWidth+5, y, 14, ColorTextDim)
	return 18
}

// DrawAngle renders a compass-style angle indicator. Angles are
// counter-clockwise from +x with y up, as in the solver.
func DrawAngle(x, y int32, name string, radians float32, options map[string]string) int32 {
	size := int32(40)
	centerX := x + labelWidth + size/2
	centerY := y + size/2

	rl.DrawText(name, x, y+size/2-7, 14, ColorTextDim)
	rl.DrawCircle(centerX, centerY, float32(size/2), ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), ColorTextDim)

	needleLen := float32(size/2 - 4)
	endX := float32(centerX) + needleLen*float32(math.Cos(float64(radians)))
	endY := float32(centerY) - needleLen*float32(math.Sin(float64(radians)))
	rl.DrawLineEx(
		rl.Vector2{X: float32(centerX), Y: float32(centerY)},
		rl.Vector2{X: endX, Y: endY},
		2,
		ColorAngleNeedle,
	)

	degrees := radians * 180 / math.Pi
	rl.DrawText(fmt.Sprintf("%.0f deg", degrees), x+labelWidth+size+5, y+size/2-7, 14, ColorTextDim)
	return size + 4
}

// DrawField renders a field using its widget type and returns the height used.
func DrawField(x, y int32, f Field) int32 {
	v, numeric := GetFloatValue(f.Value)
	if !numeric {
		return DrawLabel(x, y, f.Name, f.Value, f.Options)
	}
	switch f.Widget {
	case WidgetBar:
		return DrawBar(x, y, f.Name, v, f.Options)
	case WidgetSigned:
		return DrawSigned(x, y, f.Name, v, f.Options)
	case WidgetAngle:
		return DrawAngle(x, y, f.Name, v, f.Options)
	default:
		return DrawLabel(x, y, f.Name, f.Value, f.Options)
	}
}

// FieldHeight is the height DrawField uses for f.
func FieldHeight(f Field) int32 {
	if f.Widget == WidgetAngle {
		return 44
	}
	return 18
}

func barRatio(value, maxVal float32) float32 {
	r := value / maxVal
	if !(r > 0) {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func signedRatio(value, maxVal float32) float32 {
	r := value / maxVal
	switch {
	case r != r:
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}
