package studio

import (
	"errors"
	"fmt"
	"io"

	"ParallaxSketch/internal/export"
	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/state"
)

// JSONFileName is the suggested name for saved sketches.
const JSONFileName = "parallax-sketch.json"

// Sketch returns the committed document with the scene settings.
func (s *Studio) Sketch() state.Sketch {
	p := s.comp.Params
	return state.Sketch{
		Palette: s.store.Palette().Hex(),
		Strokes: state.CloneStrokes(s.store.Committed()),
		Config: &state.SketchConfig{
			ParallaxStrength: p.Strength,
			ParallaxInverted: p.Inverted,
			Background:       state.Hex(p.Background),
			CanvasWidth:      float64(s.vp.Width),
			FocalLayer:       p.FocalLayer,
			BlurStrength:     p.BlurStrength,
			FocusRange:       p.FocusRange,
			Symmetry:         s.store.Symmetry(),
		},
	}
}

// ExportJSON encodes the document.
func (s *Studio) ExportJSON() ([]byte, error) {
	return state.Encode(s.Sketch())
}

// ShareString encodes the document as a URL-safe string.
func (s *Studio) ShareString() (string, error) {
	return state.EncodeShare(s.Sketch())
}

// ImportJSON replaces the document. A rejected payload leaves everything
// unchanged.
func (s *Studio) ImportJSON(data []byte) error {
	sk, err := state.Decode(data)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.apply(sk)
	return nil
}

// ImportShare replaces the document from a share string.
func (s *Studio) ImportShare(str string) error {
	sk, err := state.DecodeShare(str)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.apply(sk)
	return nil
}

func (s *Studio) apply(sk state.Sketch) {
	s.gesture = gestureNone
	pal, err := state.ParsePalette(sk.Palette)
	switch {
	case err != nil:
		logging.Logger().Warn("imported palette ignored", "err", err)
	case len(pal) == 0:
		logging.Logger().Warn("imported palette is empty")
	default:
		s.store.SetPalette(pal)
	}
	s.store.Replace(sk.Strokes)

	if c := sk.Config; c != nil {
		p := &s.comp.Params
		p.Strength = min(max(c.ParallaxStrength, 0), 100)
		p.Inverted = c.ParallaxInverted
		if bg, err := state.ParseHexColor(c.Background); err == nil {
			p.Background = bg
		}
		p.FocalLayer = min(max(c.FocalLayer, 0), p.Layers-1)
		p.BlurStrength = max(c.BlurStrength, 0)
		p.FocusRange = c.FocusRange
		s.store.SetSymmetry(c.Symmetry)
	}
	logging.Logger().Info("sketch imported", "strokes", len(sk.Strokes))
}

// ErrNoFrame is returned when a snapshot is requested before the first frame.
var ErrNoFrame = errors.New("studio: nothing rendered yet")

// WriteSnapshotPDF writes the current composite as a one-page PDF.
func (s *Studio) WriteSnapshotPDF(w io.Writer) error {
	if s.frame == nil {
		return ErrNoFrame
	}
	return export.WriteSnapshotPDF(w, s.frame, "Parallax Sketch")
}

// WriteStrokesPDF writes the committed strokes as vector paths.
func (s *Studio) WriteStrokesPDF(w io.Writer) error {
	if !s.vp.Valid() {
		return ErrNoFrame
	}
	return export.WriteStrokesPDF(w, s.store.Committed(), s.store.Palette(), s.vp,
		state.Hex(s.comp.Background), "Parallax Sketch")
}
