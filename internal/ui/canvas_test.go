package ui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ParallaxSketch/internal/config"
	"ParallaxSketch/internal/studio"
)

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func TestCanvasWidget_DrawsThroughStudio(t *testing.T) {
	test.NewTempApp(t)
	st := studio.New(config.Default(), nil, nil)
	invalidations := 0
	c := NewCanvasWidget(st, func() { invalidations++ })

	test.WidgetRenderer(c).Layout(fyne.NewSize(200, 100))
	assert.Equal(t, 200, st.Viewport().Width)
	assert.Equal(t, 100, st.Viewport().Height)

	c.MouseDown(press(10, 10))
	c.Dragged(drag(30, 10))
	c.Dragged(drag(50, 10))
	c.MouseUp(press(50, 10))
	c.DragEnd()

	require.Len(t, st.Store().Committed(), 1, "DragEnd after MouseUp does not commit twice")
	assert.Len(t, st.Store().Committed()[0].Points, 3)
	assert.Positive(t, invalidations)
}

func TestCanvasWidget_IgnoresSecondaryButton(t *testing.T) {
	test.NewTempApp(t)
	st := studio.New(config.Default(), nil, nil)
	c := NewCanvasWidget(st, nil)
	test.WidgetRenderer(c).Layout(fyne.NewSize(200, 100))

	ev := press(10, 10)
	ev.Button = desktop.MouseButtonSecondary
	c.MouseDown(ev)
	_, ok := st.Store().LiveStroke(st.ActiveLayer())
	assert.False(t, ok)
}

func TestCanvasWidget_UpdateShowsFrame(t *testing.T) {
	test.NewTempApp(t)
	st := studio.New(config.Default(), nil, nil)
	c := NewCanvasWidget(st, nil)
	test.WidgetRenderer(c).Layout(fyne.NewSize(120, 80))

	c.Update()
	assert.Nil(t, c.image.Image, "no frame rendered yet")

	st.Frame(time.Now())
	c.Update()
	require.NotNil(t, st.Image())
	assert.Same(t, st.Image(), c.image.Image)
}
