package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ParallaxSketch/internal/composite"
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/raster"
	"ParallaxSketch/internal/state"
)

type noLayers struct{}

func (noLayers) Layer(int) *raster.Layer { return nil }

func newTestRecorder(cfg Config) (*Recorder, *motion.Controller, *composite.Compositor, *[]Blob) {
	ctrl := motion.NewController(motion.DefaultSpring, nil)
	comp := composite.New(composite.Params{Layers: 5, FocalLayer: 2, Strength: 50, Background: color.NRGBA{20, 20, 20, 255}})
	var saved []Blob
	rec := NewRecorder(cfg, ctrl, comp, func(b Blob) error {
		saved = append(saved, b)
		return nil
	})
	return rec, ctrl, comp, &saved
}

func TestRecorderCapturesFixedFrameCount(t *testing.T) {
	cfg := Config{Trajectory: motion.TrajectoryCircle, Duration: time.Second, Format: "gif", FPS: 10}
	rec, ctrl, comp, saved := newTestRecorder(cfg)
	clock := motion.NewManualClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	require.True(t, rec.Record(state.Viewport{Width: 24, Height: 16}, clock.Now()))
	assert.True(t, ctrl.Scripted())
	assert.True(t, comp.Exporting)

	blob, err := rec.Frame(clock.Now(), noLayers{})
	require.NoError(t, err)
	assert.Nil(t, blob)
	assert.InDelta(t, 0.1, rec.Progress(), 1e-9)

	clock.Advance(450 * time.Millisecond)
	blob, err = rec.Frame(clock.Now(), noLayers{})
	require.NoError(t, err)
	assert.Nil(t, blob)
	assert.InDelta(t, 0.5, rec.Progress(), 1e-9)

	clock.Advance(600 * time.Millisecond)
	blob, err = rec.Frame(clock.Now(), noLayers{})
	require.NoError(t, err)
	require.NotNil(t, blob)
	assert.Equal(t, "image/gif", blob.MIME)
	assert.True(t, strings.HasSuffix(blob.Name, ".gif"))
	assert.Equal(t, "parallax-20250301-120001.gif", blob.Name)
	require.Len(t, *saved, 1)

	g, err := gif.DecodeAll(bytes.NewReader(blob.Data))
	require.NoError(t, err)
	assert.Len(t, g.Image, 10)

	assert.False(t, rec.Recording())
	assert.False(t, rec.Active())
	assert.False(t, ctrl.Scripted())
	assert.False(t, comp.Exporting)
}

func TestRecorderStopDiscards(t *testing.T) {
	rec, ctrl, _, saved := newTestRecorder(Config{Duration: 2 * time.Second, Format: "avi"})
	now := time.Unix(0, 0)
	require.True(t, rec.Record(state.Viewport{Width: 8, Height: 8}, now))
	_, err := rec.Frame(now.Add(time.Second), noLayers{})
	require.NoError(t, err)

	rec.Stop()
	assert.False(t, rec.Recording())
	assert.False(t, ctrl.Scripted())
	assert.Empty(t, *saved)

	blob, err := rec.Frame(now.Add(3*time.Second), noLayers{})
	assert.NoError(t, err)
	assert.Nil(t, blob)
	_, err = rec.StopRecording(now)
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestRecorderStopRecordingKeepsPartial(t *testing.T) {
	rec, _, _, saved := newTestRecorder(Config{Duration: 10 * time.Second, Format: "avi", FPS: 5})
	now := time.Unix(0, 0)
	require.True(t, rec.Record(state.Viewport{Width: 8, Height: 8}, now))
	_, err := rec.Frame(now.Add(time.Second), noLayers{})
	require.NoError(t, err)

	blob, err := rec.StopRecording(now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "video/x-msvideo", blob.MIME)
	assert.Equal(t, "RIFF", string(blob.Data[:4]))
	assert.Len(t, *saved, 1)
}

func TestRecorderSaveErrorReported(t *testing.T) {
	ctrl := motion.NewController(motion.DefaultSpring, nil)
	comp := composite.New(composite.Params{Layers: 1})
	boom := errors.New("disk full")
	rec := NewRecorder(Config{Duration: time.Second, Format: "gif", FPS: 2}, ctrl, comp, func(Blob) error { return boom })
	now := time.Unix(0, 0)
	require.True(t, rec.Record(state.Viewport{Width: 4, Height: 4}, now))
	blob, err := rec.Frame(now.Add(time.Second), noLayers{})
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, blob)
}

func TestRecorderNotStarted(t *testing.T) {
	rec, ctrl, _, _ := newTestRecorder(Config{Duration: time.Second, Format: "avi"})
	assert.False(t, rec.Record(state.Viewport{}, time.Unix(0, 0)), "no session for an empty viewport")
	assert.False(t, rec.Active())
	assert.False(t, ctrl.Scripted())

	rec.SetConfig(Config{Duration: 0})
	assert.False(t, rec.Record(state.Viewport{Width: 4, Height: 4}, time.Unix(0, 0)))
}

func TestRecorderPreview(t *testing.T) {
	rec, ctrl, comp, saved := newTestRecorder(Config{Trajectory: motion.TrajectorySwayV, Duration: time.Second})
	now := time.Unix(0, 0)
	rec.Preview(now)
	assert.True(t, rec.Active())
	assert.False(t, rec.Recording())
	assert.True(t, comp.Exporting)

	off := ctrl.Step(now.Add(250 * time.Millisecond))
	assert.InDelta(t, 1, off.Y, 1e-9)

	blob, err := rec.Frame(now.Add(2*time.Second), noLayers{})
	assert.NoError(t, err)
	assert.Nil(t, blob)
	rec.Stop()
	assert.False(t, rec.Active())
	assert.Empty(t, *saved)
}

func TestSnapshotPDF(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	require.NoError(t, WriteSnapshotPDF(&buf, img, "snapshot"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.Error(t, WriteSnapshotPDF(&buf, image.NewNRGBA(image.Rectangle{}), "x"))
}

func TestStrokesPDF(t *testing.T) {
	strokes := []state.Stroke{
		{ID: "a", LayerID: 1, Size: 4, StrokeEnabled: true, Points: []state.Point{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.9}}},
		{ID: "b", LayerID: 0, Size: 4, FillColorSlot: state.FillSlot(2), Points: []state.Point{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.1}, {X: 0.5, Y: 0.9}}},
		{ID: "c", LayerID: 0, Size: 9, Tool: state.ToolEraser, Points: []state.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}},
	}
	var buf bytes.Buffer
	err := WriteStrokesPDF(&buf, strokes, state.DefaultPalette(), state.Viewport{Width: 200, Height: 100}, "#FDFCF8", "strokes")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.Error(t, WriteStrokesPDF(&buf, nil, nil, state.Viewport{}, "", ""))
}
