package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"ParallaxSketch/internal/state"
)

// pxToPt converts screen pixels to PDF points at 96 dpi.
const pxToPt = 72.0 / 96.0

func newPage(w, h float64, title string) *gofpdf.Fpdf {
	orient := "P"
	if w > h {
		orient = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orient,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	p.SetTitle(title, true)
	p.SetCreator("parallax-sketch", true)
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	return p
}

// WriteSnapshotPDF writes a one-page PDF showing the composited frame img.
func WriteSnapshotPDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("export: empty snapshot")
	}
	pw, ph := float64(b.Dx())*pxToPt, float64(b.Dy())*pxToPt
	p := newPage(pw, ph, title)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("export: encode snapshot: %w", err)
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("frame", opt, &buf)
	p.ImageOptions("frame", 0, 0, pw, ph, false, opt, 0, "")
	if err := p.Error(); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return p.Output(w)
}

// WriteStrokesPDF writes the committed strokes as vector paths, one layer
// after another, over the background color. Erasers cannot be expressed as
// vector paths and are skipped.
func WriteStrokesPDF(w io.Writer, strokes []state.Stroke, pal state.Palette, vp state.Viewport, background string, title string) error {
	if !vp.Valid() {
		return fmt.Errorf("export: empty viewport")
	}
	pw, ph := float64(vp.Width)*pxToPt, float64(vp.Height)*pxToPt
	p := newPage(pw, ph, title)

	if bg, err := state.ParseHexColor(background); err == nil {
		p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		p.Rect(0, 0, pw, ph, "F")
	}
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	pt := func(q state.Point) gofpdf.PointType {
		x, y := vp.ToViewport(q)
		return gofpdf.PointType{X: x * pxToPt, Y: y * pxToPt}
	}
	layers := 0
	for _, s := range strokes {
		layers = max(layers, s.LayerID+1)
	}
	for layer := range layers {
		for _, s := range strokes {
			if s.LayerID != layer || !s.Renders() || s.Tool == state.ToolEraser {
				continue
			}
			pts := make([]gofpdf.PointType, len(s.Points))
			for i, q := range s.Points {
				pts[i] = pt(q)
			}
			if s.HasFill() {
				if c, ok := pal.Color(*s.FillColorSlot); ok {
					p.SetFillColor(int(c.R), int(c.G), int(c.B))
					p.Polygon(pts, "F")
				}
			}
			if !s.StrokeEnabled {
				continue
			}
			c, ok := pal.Color(s.ColorSlot)
			if !ok {
				continue
			}
			p.SetDrawColor(int(c.R), int(c.G), int(c.B))
			p.SetLineWidth(s.Size * pxToPt)
			for i := 1; i < len(pts); i++ {
				p.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
			}
		}
	}
	if err := p.Error(); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return p.Output(w)
}
