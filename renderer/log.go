package renderer

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RouteTraceLog sends raylib's trace output through logger instead of stdout.
func RouteTraceLog(logger *slog.Logger, minLevel rl.TraceLogLevel) {
	rl.SetTraceLogLevel(minLevel)
	rl.SetTraceLogCallback(func(level int, msg string) {
		logger.Log(context.Background(), traceLevel(rl.TraceLogLevel(level)), msg, "source", "raylib")
	})
}

// traceLevel maps a raylib trace level onto slog.
func traceLevel(level rl.TraceLogLevel) slog.Level {
	switch {
	case level <= rl.LogDebug:
		return slog.LevelDebug
	case level == rl.LogInfo:
		return slog.LevelInfo
	case level == rl.LogWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
