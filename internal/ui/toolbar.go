package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ParallaxSketch/internal/state"
	"ParallaxSketch/internal/studio"
)

var toolLabels = []string{"Brush", "Eraser", "Select", "Pick"}

// colorSwatch is one palette slot. Primary tap picks the stroke color,
// secondary tap picks the fill color.
type colorSwatch struct {
	widget.BaseWidget
	Slot              int
	rect              *canvas.Rectangle
	OnTapped          func(slot int)
	OnTappedSecondary func(slot int)
}

func newColorSwatch(slot int, c color.Color) *colorSwatch {
	s := &colorSwatch{Slot: slot, rect: canvas.NewRectangle(c)}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) SetColor(c color.Color) {
	s.rect.FillColor = c
	s.rect.Refresh()
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	s.rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(s.rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Slot)
	}
}

func (s *colorSwatch) TappedSecondary(_ *fyne.PointEvent) {
	if s.OnTappedSecondary != nil {
		s.OnTappedSecondary(s.Slot)
	}
}

// newToolbar builds the top bar: tools, palette, brush size, playback and
// history actions.
func (a *App) newToolbar() fyne.CanvasObject {
	st := a.studio

	tools := widget.NewRadioGroup(toolLabels, func(label string) {
		for i, l := range toolLabels {
			if l == label {
				st.Tool = studio.Tool(i)
			}
		}
	})
	tools.Horizontal = true
	tools.Required = true
	tools.SetSelected(toolLabels[st.Tool])

	eraserMode := widget.NewCheck("Whole stroke", func(on bool) {
		st.EraserMode = studio.EraserStandard
		if on {
			st.EraserMode = studio.EraserStroke
		}
	})
	eraserMode.SetChecked(st.EraserMode == studio.EraserStroke)

	a.swatches = a.swatches[:0]
	swatchBox := container.NewHBox()
	for i, c := range st.Store().Palette() {
		sw := newColorSwatch(i, c)
		sw.OnTapped = func(slot int) {
			st.Brush.ColorSlot = slot
			a.setStatus(fmt.Sprintf("Stroke color %d", slot+1))
		}
		sw.OnTappedSecondary = func(slot int) {
			st.Brush.FillSlot = slot
			a.setStatus(fmt.Sprintf("Fill color %d", slot+1))
		}
		a.swatches = append(a.swatches, sw)
		swatchBox.Add(sw)
	}

	fill := widget.NewCheck("Fill", func(on bool) { st.Brush.Fill = on })
	fill.SetChecked(st.Brush.Fill)
	outline := widget.NewCheck("Outline", func(on bool) { st.Brush.StrokeEnabled = on })
	outline.SetChecked(st.Brush.StrokeEnabled)

	blend := widget.NewSelect(blendNames(), func(name string) {
		st.Brush.Blend, _ = state.ParseBlendMode(name)
	})
	blend.SetSelected(st.Brush.Blend.String())

	sizeSlider := widget.NewSlider(1.0, 60.0)
	sizeSlider.SetValue(st.Brush.Size)
	sizeSlider.OnChanged = func(val float64) { st.Brush.Size = val }
	sizeContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), sizeSlider)

	a.playAction = widget.NewToolbarAction(theme.MediaPlayIcon(), a.togglePlay)
	a.actions = widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { st.Undo(); a.invalidate() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { st.Redo(); a.invalidate() }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { st.Reset(); a.invalidate() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), a.randomizePalette),
		a.playAction,
	)

	return container.NewHBox(
		tools,
		eraserMode,
		widget.NewSeparator(),
		swatchBox,
		fill,
		outline,
		blend,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sizeContainer,
		layout.NewSpacer(),
		a.actions,
	)
}

// newScenePanel builds the bottom bar: layer, depth and focus controls.
func (a *App) newScenePanel() fyne.CanvasObject {
	st := a.studio
	comp := st.Compositor()
	last := float64(st.Store().Layers() - 1)

	layerLabel := widget.NewLabel("")
	showLayer := func() { layerLabel.SetText(fmt.Sprintf("Layer %d/%d", st.ActiveLayer()+1, int(last)+1)) }
	layerSlider := widget.NewSlider(0, last)
	layerSlider.Step = 1
	layerSlider.SetValue(float64(st.ActiveLayer()))
	layerSlider.OnChanged = func(v float64) {
		st.SetActiveLayer(int(v))
		showLayer()
		a.invalidate()
	}
	showLayer()

	focal := widget.NewSlider(0, last)
	focal.Step = 1
	focal.SetValue(float64(comp.FocalLayer))
	focal.OnChanged = func(v float64) { comp.FocalLayer = int(v); a.invalidate() }

	strength := widget.NewSlider(0, 100)
	strength.SetValue(comp.Strength)
	strength.OnChanged = func(v float64) { comp.Strength = v; a.invalidate() }

	blur := widget.NewSlider(0, 10)
	blur.Step = 0.5
	blur.SetValue(comp.BlurStrength)
	blur.OnChanged = func(v float64) { comp.BlurStrength = v; a.invalidate() }

	inverted := widget.NewCheck("Invert", func(on bool) { comp.Inverted = on; a.invalidate() })
	inverted.SetChecked(comp.Inverted)
	onion := widget.NewCheck("Onion skin", func(on bool) { comp.OnionSkin = on; a.invalidate() })
	onion.SetChecked(comp.OnionSkin)
	lowPower := widget.NewCheck("Low power", a.setLowPower)
	lowPower.SetChecked(st.Controller().LowPower())

	grid := widget.NewCheck("Grid", func(on bool) { st.Grid.Enabled = on; a.canvas.RefreshGrid() })
	grid.SetChecked(st.Grid.Enabled)
	snap := widget.NewCheck("Snap", func(on bool) { st.Grid.Snap = on })
	snap.SetChecked(st.Grid.Snap)

	symmetry := widget.NewSelect(symmetryNames(), func(name string) {
		m, _ := state.ParseSymmetry(name)
		st.SetSymmetry(m)
		a.invalidate()
	})
	symmetry.SetSelected(st.Store().Symmetry().String())

	slider := func(s *widget.Slider) fyne.CanvasObject {
		return container.New(layout.NewGridWrapLayout(fyne.NewSize(110, 35)), s)
	}
	return container.NewHBox(
		layerLabel, slider(layerSlider),
		widget.NewLabel("Focus:"), slider(focal),
		widget.NewLabel("Depth:"), slider(strength),
		widget.NewLabel("Blur:"), slider(blur),
		inverted, onion, lowPower,
		widget.NewSeparator(),
		grid, snap, symmetry,
		layout.NewSpacer(),
		a.status,
	)
}

func blendNames() []string {
	return []string{
		state.BlendNormal.String(),
		state.BlendMultiply.String(),
		state.BlendOverlay.String(),
		state.BlendDifference.String(),
	}
}

func symmetryNames() []string {
	names := make([]string, 0, 5)
	for m := state.SymmetryNone; m <= state.SymmetryCentral; m++ {
		names = append(names, m.String())
	}
	return names
}
