// Package studio is the interaction shell around the drawing engine. It
// turns pointer input into store mutations, owns the frame pipeline
// (controller step, layer sync, composite, capture) and exposes the
// document operations the desktop UI binds to.
//
// A Studio is not safe for concurrent use. Every method must run on the
// frame thread.
package studio

import (
	"context"
	"image"
	"time"

	"ParallaxSketch/internal/composite"
	"ParallaxSketch/internal/config"
	"ParallaxSketch/internal/export"
	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/raster"
	"ParallaxSketch/internal/state"
)

// Studio wires the store, raster engine, motion controller, compositor and
// export recorder together.
type Studio struct {
	store  *state.Store
	engine *raster.Engine
	comp   *composite.Compositor
	ctrl   *motion.Controller
	rec    *export.Recorder

	vp    state.Viewport
	frame *image.NRGBA

	Brush      Brush
	Tool       Tool
	EraserMode EraserMode
	Grid       config.Grid

	gesture gesture
	last    state.Point

	// OnExport receives the result of every finished or failed recording.
	OnExport func(*export.Blob, error)
}

// New builds a studio from cfg. tilt may be nil; save receives finished
// recordings.
func New(cfg config.Config, tilt motion.TiltSource, save export.SaveFunc) *Studio {
	store := state.NewStore(cfg.Layers, cfg.PaletteColors())
	store.SetSymmetry(cfg.SymmetryMode())

	ctrl := motion.NewController(cfg.Spring(), tilt)
	ctrl.SetLowPower(cfg.LowPower)
	comp := composite.New(cfg.Params())

	return &Studio{
		store:      store,
		engine:     raster.NewEngine(state.Viewport{}),
		comp:       comp,
		ctrl:       ctrl,
		rec:        export.NewRecorder(cfg.ExportConfig(), ctrl, comp, save),
		Brush:      DefaultBrush(),
		Tool:       ToolBrush,
		EraserMode: EraserStroke,
		Grid:       cfg.Grid,
	}
}

func (s *Studio) Store() *state.Store               { return s.store }
func (s *Studio) Controller() *motion.Controller    { return s.ctrl }
func (s *Studio) Compositor() *composite.Compositor { return s.comp }
func (s *Studio) Recorder() *export.Recorder        { return s.rec }
func (s *Studio) Engine() *raster.Engine            { return s.engine }
func (s *Studio) Viewport() state.Viewport          { return s.vp }

// Resize changes the viewport. Layer buffers follow on the next frame.
func (s *Studio) Resize(width, height int) {
	vp := state.Viewport{Width: width, Height: height}
	if vp == s.vp {
		return
	}
	s.vp = vp
	s.engine.Resize(vp)
	s.frame = nil
	logging.Logger().Debug("viewport resized", "width", width, "height", height)
}

// Image returns the last rendered frame, or nil before the first frame.
func (s *Studio) Image() *image.NRGBA { return s.frame }

// Frame advances the controller to now, redraws stale layers, composites
// the visible frame and feeds an active recording. It reports whether
// another frame is needed without new input.
func (s *Studio) Frame(now time.Time) bool {
	o := s.ctrl.Step(now)
	if !s.vp.Valid() {
		return s.needsFrame()
	}
	if s.frame == nil {
		s.frame = image.NewNRGBA(image.Rect(0, 0, s.vp.Width, s.vp.Height))
	}
	s.engine.Sync(s.store)
	s.comp.Render(s.frame, s.engine, o)

	if s.rec.Recording() {
		blob, err := s.rec.Frame(now, s.engine)
		if blob != nil || err != nil {
			if err != nil {
				logging.Logger().Warn("export failed", "err", err)
			}
			if s.OnExport != nil {
				s.OnExport(blob, err)
			}
		}
	}
	return s.needsFrame()
}

func (s *Studio) needsFrame() bool {
	return s.rec.Active() || s.ctrl.Polling() || !s.ctrl.Settled()
}

// SetActiveLayer switches the layer pointer input edits. A stroke in
// progress is abandoned.
func (s *Studio) SetActiveLayer(i int) {
	if i < 0 || i >= s.store.Layers() || i == s.comp.ActiveLayer {
		return
	}
	s.cancelGesture()
	s.comp.ActiveLayer = i
}

func (s *Studio) ActiveLayer() int { return s.comp.ActiveLayer }

// SetPlaying toggles parallax playback.
func (s *Studio) SetPlaying(on bool) {
	s.ctrl.SetPlaying(on)
	s.comp.Playing = on
}

func (s *Studio) Playing() bool { return s.ctrl.Playing() }

// EnableTilt requests sensor access. Callers with a slow source should run
// the permission request off the frame thread first.
func (s *Studio) EnableTilt(ctx context.Context) bool { return s.ctrl.EnableTilt(ctx) }

// SetSymmetry changes how new strokes are mirrored.
func (s *Studio) SetSymmetry(m state.SymmetryMode) { s.store.SetSymmetry(m) }

// Undo and Redo abandon any gesture in progress.
func (s *Studio) Undo() bool {
	s.cancelGesture()
	return s.store.Undo()
}

func (s *Studio) Redo() bool {
	s.cancelGesture()
	return s.store.Redo()
}

// Reset clears the canvas as an undoable step.
func (s *Studio) Reset() {
	s.gesture = gestureNone
	s.store.Reset()
}

// RandomizePalette swaps in a random preset palette.
func (s *Studio) RandomizePalette() {
	s.store.SetPalette(state.RandomPreset())
}

// PreviewExport plays the export trajectory on screen without capturing.
func (s *Studio) PreviewExport(now time.Time) {
	s.rec.Preview(now)
}

// RecordExport starts capturing at the current viewport size.
func (s *Studio) RecordExport(now time.Time) bool {
	if !s.vp.Valid() {
		logging.Logger().Warn("export needs a visible canvas")
		return false
	}
	return s.rec.Record(s.vp, now)
}

// StopExport ends a preview or abandons a recording.
func (s *Studio) StopExport() { s.rec.Stop() }

// FinishExport saves what has been captured so far.
func (s *Studio) FinishExport(now time.Time) (*export.Blob, error) {
	return s.rec.StopRecording(now)
}
