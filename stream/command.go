package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Command kinds accepted from clients.
const (
	CommandSplat  = "splat"
	CommandClear  = "clear"
	CommandResize = "resize"
)

var (
	ErrUnknownCommand = errors.New("stream: unknown command")
	ErrInvalidCommand = errors.New("stream: invalid command")
)

// Command is one client request, sent as a JSON text message.
//
//	{"type":"splat","x":0.5,"y":0.5,"dx":0.01,"dy":0,"color":[1,0,0]}
//	{"type":"clear"}
//	{"type":"resize","scale":2}
//
// Splat coordinates are normalized with the origin at the bottom left. DX and
// DY are pointer deltas in the same units; the server multiplies them by the
// configured force. A zero colour moves the fluid without adding dye.
type Command struct {
	Type  string     `json:"type"`
	X     float32    `json:"x,omitempty"`
	Y     float32    `json:"y,omitempty"`
	DX    float32    `json:"dx,omitempty"`
	DY    float32    `json:"dy,omitempty"`
	Color [3]float32 `json:"color,omitempty"`
	Scale float32    `json:"scale,omitempty"`
}

// DecodeCommand parses and validates a client message.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return cmd, cmd.Validate()
}

// Validate checks the command kind and its numeric fields.
func (c Command) Validate() error {
	switch c.Type {
	case CommandSplat:
		for _, v := range []float32{c.X, c.Y, c.DX, c.DY, c.Color[0], c.Color[1], c.Color[2]} {
			if !finite(v) {
				return fmt.Errorf("%w: non-finite splat value", ErrInvalidCommand)
			}
		}
	case CommandClear:
	case CommandResize:
		if !(c.Scale > 0) || !finite(c.Scale) {
			return fmt.Errorf("%w: resize scale %v", ErrInvalidCommand, c.Scale)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}

func (c Command) hasDye() bool {
	return c.Color != [3]float32{}
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
