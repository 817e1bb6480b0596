package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"ParallaxSketch/internal/studio"
)

// CanvasWidget shows the composited frame and forwards pointer input to the
// studio. Fyne delivers input on the main goroutine, the same goroutine the
// frame loop dispatches to, so the studio is never touched concurrently.
type CanvasWidget struct {
	widget.BaseWidget
	studio     *studio.Studio
	invalidate func()
	pressed    bool

	image *canvas.Image
	grid  *gridOverlay
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.Draggable = (*CanvasWidget)(nil)
var _ desktop.Mouseable = (*CanvasWidget)(nil)
var _ desktop.Hoverable = (*CanvasWidget)(nil)

// NewCanvasWidget creates the drawing surface. invalidate is called after
// every input so the frame loop renders the change.
func NewCanvasWidget(st *studio.Studio, invalidate func()) *CanvasWidget {
	if invalidate == nil {
		invalidate = func() {}
	}
	c := &CanvasWidget{
		studio:     st,
		invalidate: invalidate,
		image:      canvas.NewImageFromImage(nil),
		grid:       newGridOverlay(),
	}
	c.image.FillMode = canvas.ImageFillStretch
	c.image.ScaleMode = canvas.ImageScalePixels
	c.ExtendBaseWidget(c)
	return c
}

// Update shows the studio's latest frame. Call it after each frame.
func (c *CanvasWidget) Update() {
	img := c.studio.Image()
	if img == nil {
		return
	}
	c.image.Image = img
	c.image.Refresh()
}

// RefreshGrid redraws the grid overlay after the grid settings changed.
func (c *CanvasWidget) RefreshGrid() {
	c.grid.layout(c.Size(), c.studio.Grid)
	c.invalidate()
}

func (c *CanvasWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.pressed = true
	c.studio.PointerDown(float64(e.Position.X), float64(e.Position.Y))
	c.invalidate()
}

func (c *CanvasWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !c.pressed {
		return
	}
	c.release()
}

func (c *CanvasWidget) Dragged(e *fyne.DragEvent) {
	c.studio.PointerMove(float64(e.Position.X), float64(e.Position.Y))
	c.invalidate()
}

func (c *CanvasWidget) DragEnd() {
	if c.pressed {
		c.release()
	}
}

func (c *CanvasWidget) release() {
	c.pressed = false
	c.studio.PointerUp()
	c.invalidate()
}

func (c *CanvasWidget) MouseIn(e *desktop.MouseEvent) { c.MouseMoved(e) }

func (c *CanvasWidget) MouseMoved(e *desktop.MouseEvent) {
	c.studio.PointerMove(float64(e.Position.X), float64(e.Position.Y))
	c.invalidate()
}

// MouseOut recenters the pointer input so the view relaxes.
func (c *CanvasWidget) MouseOut() {
	size := c.Size()
	c.studio.PointerMove(float64(size.Width)/2, float64(size.Height)/2)
	c.invalidate()
}

func (c *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	return &canvasWidgetRenderer{widget: c, background: bg}
}

type canvasWidgetRenderer struct {
	widget     *CanvasWidget
	background *canvas.Rectangle
}

func (r *canvasWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.widget.image, r.widget.grid.container}
}

func (r *canvasWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.widget.image.Resize(size)
	r.widget.studio.Resize(int(size.Width), int(size.Height))
	r.widget.grid.layout(size, r.widget.studio.Grid)
	r.widget.invalidate()
}

func (r *canvasWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }
func (r *canvasWidgetRenderer) Refresh()           { canvas.Refresh(r.widget) }
func (r *canvasWidgetRenderer) Destroy()           {}
