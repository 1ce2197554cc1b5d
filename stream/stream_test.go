package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
)

func newTestSim(t *testing.T) solver.Simulation {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	f := cfg.Fluid
	f.SimSize = 16
	f.DyeSize = 32
	f.PressureIterations = 5
	f.SplatRadius = 0.01

	b := solver.NewCPUBackend(1)
	sim, err := solver.New[*field.Grid](b, solver.Options{Fluid: f, Aspect: 1, Scale: 1, MaxTextureSize: 256})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		sim.Close()
		b.Close()
	})
	return sim
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want error
	}{
		{"splat", `{"type":"splat","x":0.5,"y":0.5,"dx":0.1,"dy":0,"color":[1,0,0]}`, nil},
		{"clear", `{"type":"clear"}`, nil},
		{"resize", `{"type":"resize","scale":2}`, nil},
		{"zero scale", `{"type":"resize"}`, ErrInvalidCommand},
		{"negative scale", `{"type":"resize","scale":-1}`, ErrInvalidCommand},
		{"unknown", `{"type":"explode"}`, ErrUnknownCommand},
		{"malformed", `{"type":`, ErrInvalidCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommand([]byte(tt.msg))
			if tt.want == nil {
				if err != nil {
					t.Errorf("DecodeCommand: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeCommand err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameEncoding(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	data := EncodeFrame(img)
	if len(data) != FrameHeaderSize+3*2*4 {
		t.Fatalf("frame length = %d", len(data))
	}
	if data[0] != 3 || data[4] != 2 {
		t.Errorf("header = %v, want width 3 height 2", data[:FrameHeaderSize])
	}

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if c := got.RGBAAt(2, 1); c != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel (2,1) = %v", c)
	}

	if _, err := DecodeFrame(data[:len(data)-1]); !errors.Is(err, ErrShortFrame) {
		t.Errorf("truncated frame err = %v, want ErrShortFrame", err)
	}
	if _, err := DecodeFrame(data[:4]); !errors.Is(err, ErrShortFrame) {
		t.Errorf("headerless frame err = %v, want ErrShortFrame", err)
	}

	for _, size := range [][2]uint32{{1 << 31, 1 << 31}, {1 << 30, 4}, {0xFFFFFFFF, 0xFFFFFFFF}} {
		huge := make([]byte, FrameHeaderSize)
		binary.LittleEndian.PutUint32(huge[0:4], size[0])
		binary.LittleEndian.PutUint32(huge[4:8], size[1])
		if _, err := DecodeFrame(huge); !errors.Is(err, ErrShortFrame) {
			t.Errorf("%dx%d header-only frame err = %v, want ErrShortFrame", size[0], size[1], err)
		}
	}
}

func TestServerSplatRoundTrip(t *testing.T) {
	srv := NewServer(newTestSim(t), Options{FPS: 60, FrameSize: 32, Force: 1})

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- srv.Run(ctx) }()

	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Command{Type: CommandSplat, X: 0.5, Y: 0.5, Color: [3]float32{1, 0, 0}}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var red bool
	for i := 0; i < 120 && !red; i++ {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		if kind != websocket.BinaryMessage {
			t.Fatalf("message type = %d, want binary", kind)
		}
		img, err := DecodeFrame(data)
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
			t.Fatalf("frame size = %dx%d, want 32x32", b.Dx(), b.Dy())
		}
		c := img.RGBAAt(16, 16)
		red = c.R > 128 && c.G == 0 && c.B == 0
	}
	if !red {
		t.Error("dye splat never reached a frame")
	}

	cancel()
	select {
	case err := <-runDone:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// The server closes the connection on shutdown.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
