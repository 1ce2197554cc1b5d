// Package stream serves a running fluid simulation over websockets. Clients
// send JSON commands and receive the dye field as binary RGBA frames.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
)

const (
	defaultFPS       = 30
	defaultFrameSize = 96

	commandBuffer  = 64
	sendBuffer     = 4 // frames queued per client before dropping
	maxCommandSize = 1024
	writeWait      = time.Second
)

// Options configures a Server.
type Options struct {
	FPS       int
	FrameSize int
	Force     float32 // multiplier for splat deltas
}

// OptionsFromConfig builds server options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FPS:       cfg.Stream.FPS,
		FrameSize: cfg.Stream.FrameSize,
		Force:     float32(cfg.Splat.Force),
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			return
		}
	}
}

// Server owns a simulation. Only the Run goroutine touches it; websocket
// handlers hand commands over through a channel.
type Server struct {
	sim  solver.Simulation
	opts Options

	commands chan Command
	done     chan struct{}
	stopOnce sync.Once
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	log *slog.Logger
}

// NewServer creates a server for sim. The caller keeps ownership of sim and
// must not use it while Run is active.
func NewServer(sim solver.Simulation, opts Options) *Server {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.FrameSize <= 0 {
		opts.FrameSize = defaultFrameSize
	}
	if opts.Force == 0 {
		opts.Force = 1
	}
	return &Server{
		sim:      sim,
		opts:     opts,
		commands: make(chan Command, commandBuffer),
		done:     make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		log:     slog.Default().With("component", "stream"),
	}
}

// Run steps the simulation at the configured rate, applies queued commands
// and broadcasts a frame after every step. It returns when ctx is done, after
// closing every client connection.
func (s *Server) Run(ctx context.Context) error {
	defer s.stop()

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	defer ticker.Stop()
	dt := 1 / float32(s.opts.FPS)

	s.log.Info("stream running", "fps", s.opts.FPS, "frame_size", s.opts.FrameSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.commands:
			s.apply(cmd)
		case <-ticker.C:
			s.sim.Step(dt)
			frame, err := s.frame()
			if err != nil {
				return err
			}
			s.broadcast(frame)
		}
	}
}

func (s *Server) apply(cmd Command) {
	switch cmd.Type {
	case CommandSplat:
		s.sim.AddVelocitySplat(cmd.X, cmd.Y, cmd.DX*s.opts.Force, cmd.DY*s.opts.Force)
		if cmd.hasDye() {
			s.sim.AddDyeSplat(cmd.X, cmd.Y, cmd.Color[0], cmd.Color[1], cmd.Color[2])
		}
	case CommandClear:
		s.sim.Clear()
	case CommandResize:
		if err := s.sim.Resize(cmd.Scale); err != nil {
			s.log.Warn("resize rejected", "scale", cmd.Scale, "err", err)
		}
	}
}

func (s *Server) frame() ([]byte, error) {
	dye, err := s.sim.Snapshot(solver.QuantityDye)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(field.DyeImage(dye, s.opts.FrameSize, s.opts.FrameSize)), nil
}

func (s *Server) broadcast(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
			// Slow client; it gets the next frame instead.
		}
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ServeHTTP upgrades the request to a websocket and reads commands until the
// client disconnects or the server stops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.done:
		http.Error(w, "stream stopped", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			s.log.Warn("websocket upgrade failed", "err", err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.register(c)
	defer s.unregister(c)
	go c.writeLoop()

	conn.SetReadLimit(maxCommandSize)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("client read failed", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		cmd, err := DecodeCommand(msg)
		if err != nil {
			s.log.Debug("command rejected", "remote", r.RemoteAddr, "err", err)
			continue
		}
		select {
		case s.commands <- cmd:
		case <-s.done:
			return
		}
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Info("client connected", "remote", c.conn.RemoteAddr().String(), "clients", n)
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	n := len(s.clients)
	s.mu.Unlock()
	c.conn.Close()
	s.log.Info("client disconnected", "remote", c.conn.RemoteAddr().String(), "clients", n)
}

// stop rejects further commands and asks every client to go away.
func (s *Server) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		defer s.mu.Unlock()
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping")
		for c := range s.clients {
			c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			c.conn.Close()
		}
	})
}
