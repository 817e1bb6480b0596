package export

import (
	"fmt"
	"image"
	"time"

	"ParallaxSketch/internal/composite"
	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/state"
)

// DefaultFPS is the capture frame rate.
const DefaultFPS = 30

// Config selects the scripted loop and the output container.
type Config struct {
	Trajectory motion.Trajectory
	Duration   time.Duration
	Format     string
	FPS        int
}

// Blob is a finished export ready to be saved.
type Blob struct {
	Name string
	MIME string
	Data []byte
}

// SaveFunc persists a finished blob.
type SaveFunc func(Blob) error

// Recorder drives the motion controller along a scripted trajectory and
// captures its own composite of every layer at a fixed frame rate. Frame
// timestamps are derived from the frame index, so output does not depend on
// how regularly Frame is called.
type Recorder struct {
	cfg  Config
	ctrl *motion.Controller
	comp *composite.Compositor
	save SaveFunc

	active    bool
	recording bool
	start     time.Time
	frames    int

	capture *image.NRGBA
	session Session
	codec   Codec
}

// NewRecorder wires the recorder to the shared controller and compositor.
func NewRecorder(cfg Config, ctrl *motion.Controller, comp *composite.Compositor, save SaveFunc) *Recorder {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	return &Recorder{cfg: cfg, ctrl: ctrl, comp: comp, save: save}
}

// Config returns the current export settings.
func (r *Recorder) Config() Config { return r.cfg }

// SetConfig changes the settings used by the next preview or recording.
func (r *Recorder) SetConfig(cfg Config) {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	r.cfg = cfg
	if r.active && !r.recording {
		r.ctrl.StartScript(cfg.Trajectory, cfg.Duration, r.start)
	}
}

func (r *Recorder) Active() bool    { return r.active }
func (r *Recorder) Recording() bool { return r.recording }

// Progress returns the fraction of the recording captured so far.
func (r *Recorder) Progress() float64 {
	if !r.recording {
		return 0
	}
	total := r.totalFrames()
	if total == 0 {
		return 0
	}
	return float64(r.frames) / float64(total)
}

// Preview runs the scripted loop on screen without capturing.
func (r *Recorder) Preview(now time.Time) {
	r.Stop()
	r.begin(now)
}

func (r *Recorder) begin(now time.Time) {
	r.active = true
	r.start = now
	r.frames = 0
	r.comp.Exporting = true
	r.ctrl.StartScript(r.cfg.Trajectory, r.cfg.Duration, now)
}

// Record starts capturing at the viewport size. It reports false, leaving
// the recorder idle, when no capture session could be created.
func (r *Recorder) Record(vp state.Viewport, now time.Time) bool {
	r.Stop()
	if r.cfg.Duration <= 0 {
		logging.Logger().Warn("export duration must be positive", "duration", r.cfg.Duration)
		return false
	}
	s, c, err := OpenSession(r.cfg.Format, vp.Width, vp.Height, r.cfg.FPS)
	if err != nil {
		logging.Logger().Warn("export not started", "err", err)
		return false
	}
	r.session, r.codec = s, c
	r.capture = image.NewNRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	r.recording = true
	r.begin(now)
	logging.Logger().Info("export recording started",
		"format", c.Name, "trajectory", r.cfg.Trajectory, "duration", r.cfg.Duration, "fps", r.cfg.FPS)
	return true
}

func (r *Recorder) totalFrames() int {
	return int((r.cfg.Duration*time.Duration(r.cfg.FPS) + time.Second - 1) / time.Second)
}

func (r *Recorder) frameTime(i int) time.Duration {
	return time.Duration(i) * time.Second / time.Duration(r.cfg.FPS)
}

// Frame captures every frame due by now. When the configured duration has
// been captured it finalizes the container, saves it and returns the blob.
func (r *Recorder) Frame(now time.Time, layers composite.LayerSource) (*Blob, error) {
	if !r.recording {
		return nil, nil
	}
	elapsed := now.Sub(r.start)
	total := r.totalFrames()
	for r.frames < total && r.frameTime(r.frames) <= elapsed {
		off := r.cfg.Trajectory.Sample(r.frameTime(r.frames), r.cfg.Duration)
		r.comp.Render(r.capture, layers, off)
		if err := r.session.AddFrame(r.capture); err != nil {
			logging.Logger().Warn("export frame dropped", "frame", r.frames, "err", err)
		}
		r.frames++
	}
	if r.frames < total {
		return nil, nil
	}
	return r.finish(now)
}

func (r *Recorder) finish(now time.Time) (*Blob, error) {
	data, err := r.session.Close()
	codec := r.codec
	r.reset()
	if err != nil {
		return nil, fmt.Errorf("export: finalize %s: %w", codec.Name, err)
	}
	blob := &Blob{
		Name: fmt.Sprintf("parallax-%s.%s", now.Format("20060102-150405"), codec.Ext),
		MIME: codec.MIME,
		Data: data,
	}
	logging.Logger().Info("export finished", "name", blob.Name, "bytes", len(data))
	if r.save != nil {
		if err := r.save(*blob); err != nil {
			return blob, fmt.Errorf("export: save %s: %w", blob.Name, err)
		}
	}
	return blob, nil
}

// Stop ends a preview or abandons a recording without saving.
func (r *Recorder) Stop() {
	if r.recording {
		r.session.Abort()
		logging.Logger().Info("export recording cancelled", "frames", r.frames)
	}
	if r.active {
		r.reset()
	}
}

func (r *Recorder) reset() {
	r.active = false
	r.recording = false
	r.session = nil
	r.capture = nil
	r.comp.Exporting = false
	r.ctrl.StopScript()
}

// StopRecording finalizes a recording early, keeping what was captured.
func (r *Recorder) StopRecording(now time.Time) (*Blob, error) {
	if !r.recording {
		return nil, ErrNotRecording
	}
	return r.finish(now)
}
