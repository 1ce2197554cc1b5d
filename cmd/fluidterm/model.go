package main

import (
	"image"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/splat"
)

const statusRows = 1

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// model drives a solver from terminal input. Each terminal row shows two
// field rows through half blocks, so pixels are roughly square.
type model struct {
	cfg     *config.Config
	sim     solver.Simulation
	rng     *rand.Rand
	palette *splat.Palette
	pointer splat.Pointer
	colors  splat.ColorCycler

	interval time.Duration
	width    int // terminal columns
	height   int // terminal rows
	paused   bool
	ticks    int
	frame    *image.RGBA
	err      error
}

func newModel(cfg *config.Config, sim solver.Simulation, palette *splat.Palette, seed int64, fps int) model {
	if fps <= 0 {
		fps = 30
	}
	return model{
		cfg:      cfg,
		sim:      sim,
		rng:      rand.New(rand.NewSource(seed)),
		palette:  palette,
		colors:   splat.ColorCycler{Interval: float32(cfg.Splat.ColorUpdateInterval)},
		interval: time.Second / time.Duration(fps),
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// fieldSize is the pixel size of the rendered field.
func (m model) fieldSize() (w, h int) {
	rows := m.height - statusRows
	if m.width < 1 || rows < 1 {
		return 0, 0
	}
	return m.width, rows * 2
}

func (m model) aspect() float32 {
	w, h := m.fieldSize()
	if w == 0 || h == 0 {
		return 1
	}
	return float32(w) / float32(h)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.sim.SetAspect(m.aspect())
		if err := m.sim.Resize(1); err != nil {
			m.err = err
		}
		m.frame = nil
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
		case "c":
			m.sim.Clear()
			m.frame = nil
		case " ":
			n := splat.BurstSize(m.rng, m.cfg.Splat.RandomCountMin, m.cfg.Splat.RandomCountMax)
			splat.Random(m.sim, m.rng, m.palette, n)
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tickMsg:
		if !m.paused {
			m.advance()
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	w, h := m.fieldSize()
	if w == 0 {
		return
	}
	// Cell centres, with y in field pixels.
	x, y := splat.Normalize(float32(msg.X)+0.5, float32(msg.Y*2)+1, float32(w), float32(h))

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.pointer.Press(x, y, m.palette.Pick(m.rng))
		}
	case tea.MouseActionMotion:
		m.pointer.Move(x, y, m.aspect())
	case tea.MouseActionRelease:
		m.pointer.Release()
	}
}

func (m *model) advance() {
	dt := float32(m.interval.Seconds())
	if m.colors.Tick(dt) {
		m.pointer.Color = m.palette.Pick(m.rng)
	}
	m.pointer.Apply(m.sim, float32(m.cfg.Splat.Force))
	m.sim.Step(dt)
	m.ticks++

	w, h := m.fieldSize()
	if w == 0 {
		return
	}
	dye, err := m.sim.Snapshot(solver.QuantityDye)
	if err != nil {
		m.err = err
		return
	}
	m.frame = field.DyeImage(dye, w, h)
}
