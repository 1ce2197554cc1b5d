package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF8C00"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))
)

func (m model) View() string {
	var b strings.Builder
	if m.frame != nil {
		renderHalfBlocks(&b, m.frame)
	} else if _, h := m.fieldSize(); h > 0 {
		b.WriteString(strings.Repeat("\n", h/2))
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}
	sw, sh := m.sim.SimSize()
	line := statusStyle.Render(fmt.Sprintf("fluid %dx%d  tick %d  palette %s  drag: stir  space: burst  c: clear  p: pause  q: quit",
		sw, sh, m.ticks, m.palette.Name()))
	if m.paused {
		line = pausedStyle.Render("PAUSED") + " " + line
	}
	return line
}

// renderHalfBlocks writes img two pixel rows per line using "▀" with the top
// pixel as foreground and the bottom pixel as background.
func renderHalfBlocks(b *strings.Builder, img *image.RGBA) {
	bounds := img.Bounds()
	cells := map[[2]string]string{}
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexColor(img, x, y)
			bottom := "#000000"
			if y+1 < bounds.Max.Y {
				bottom = hexColor(img, x, y+1)
			}
			key := [2]string{top, bottom}
			cell, ok := cells[key]
			if !ok {
				cell = lipgloss.NewStyle().
					Foreground(lipgloss.Color(top)).
					Background(lipgloss.Color(bottom)).
					Render("▀")
				cells[key] = cell
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
}

func hexColor(img *image.RGBA, x, y int) string {
	c := img.RGBAAt(x, y)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
