package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"ParallaxSketch/internal/config"
)

var gridColor = color.NRGBA{R: 0, G: 0, B: 0, A: 26}

// gridOverlay draws the snapping grid above the composite. It does not
// move with parallax.
type gridOverlay struct {
	container *fyne.Container
	size      fyne.Size
	grid      config.Grid
}

func newGridOverlay() *gridOverlay {
	return &gridOverlay{container: container.NewWithoutLayout()}
}

func (g *gridOverlay) layout(size fyne.Size, grid config.Grid) {
	if size == g.size && grid == g.grid {
		return
	}
	g.size, g.grid = size, grid
	g.container.Objects = g.lines()
	g.container.Resize(size)
	g.container.Refresh()
}

func (g *gridOverlay) lines() []fyne.CanvasObject {
	if !g.grid.Enabled || g.grid.Size <= 0 {
		return nil
	}
	step := float32(g.grid.Size)
	var lines []fyne.CanvasObject

	for x := step; x < g.size.Width; x += step {
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, 0)
		line.Position2 = fyne.NewPos(x, g.size.Height)
		line.StrokeWidth = 1
		lines = append(lines, line)
	}
	for y := step; y < g.size.Height; y += step {
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(0, y)
		line.Position2 = fyne.NewPos(g.size.Width, y)
		line.StrokeWidth = 1
		lines = append(lines, line)
	}
	return lines
}
