package studio

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ParallaxSketch/internal/config"
	"ParallaxSketch/internal/export"
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/state"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStudio(t *testing.T) *Studio {
	t.Helper()
	s := New(config.Default(), nil, nil)
	s.Resize(200, 100)
	return s
}

func drawLine(s *Studio, x0, y0, x1, y1 float64) {
	s.PointerDown(x0, y0)
	s.PointerMove((x0+x1)/2, (y0+y1)/2)
	s.PointerMove(x1, y1)
	s.PointerUp()
}

func TestDrawCommitsOneStroke(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 50, 10)

	committed := s.Store().Committed()
	require.Len(t, committed, 1)
	st := committed[0]
	assert.Equal(t, 2, st.LayerID, "active layer starts at the focal layer")
	assert.Equal(t, []state.Point{{X: 0.05, Y: 0.1}, {X: 0.15, Y: 0.1}, {X: 0.25, Y: 0.1}}, st.Points)
	assert.NotEmpty(t, st.ID)
	assert.Nil(t, st.FillColorSlot)
}

func TestFrameRendersStroke(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 90, 10)

	s.Frame(t0)
	img := s.Image()
	require.NotNil(t, img)

	want := s.Store().Palette()[0]
	got := img.NRGBAAt(50, 10)
	assert.InDelta(t, want.R, got.R, 2)
	assert.InDelta(t, want.G, got.G, 2)
	assert.InDelta(t, want.B, got.B, 2)

	bg := s.Compositor().Background
	assert.Equal(t, bg, img.NRGBAAt(150, 80), "untouched pixel shows the background")
}

func TestGridSnap(t *testing.T) {
	s := newTestStudio(t)
	s.Grid = config.Grid{Enabled: true, Snap: true, Size: 20}

	s.PointerDown(13, 27)
	live, ok := s.Store().LiveStroke(s.ActiveLayer())
	require.True(t, ok)
	assert.Equal(t, []state.Point{{X: 0.1, Y: 0.2}}, live.Points)

	s.PointerMove(14, 26)
	live, _ = s.Store().LiveStroke(s.ActiveLayer())
	assert.Len(t, live.Points, 1, "snapped duplicate dropped")
	s.PointerCancel()
	assert.Empty(t, s.Store().Committed())
}

func TestPointerCorrectedByLayerDisplacement(t *testing.T) {
	s := newTestStudio(t)
	s.SetActiveLayer(4)
	// Preview snaps the controller onto the circle at (1, 0).
	s.PreviewExport(t0)

	// Strength 50 gives 75px at full deflection; layer 4 sits at depth 1
	// relative to focal layer 2, so the layer is shifted 75px left.
	s.PointerDown(25, 50)
	live, ok := s.Store().LiveStroke(4)
	require.True(t, ok)
	assert.Equal(t, []state.Point{{X: 0.5, Y: 0.5}}, live.Points)
}

func TestSelectAndDrag(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 50, 10)
	id := s.Store().Committed()[0].ID

	s.Tool = ToolSelect
	s.PointerDown(30, 12)
	assert.Equal(t, id, s.Store().Selected())
	s.PointerMove(50, 32)
	s.PointerUp()

	require.Equal(t, 3, s.Store().HistoryDepth())
	moved := s.Store().Committed()[0]
	assert.Equal(t, id, moved.ID)
	assert.InDelta(t, 0.15, moved.Points[0].X, 1e-9)
	assert.InDelta(t, 0.3, moved.Points[0].Y, 1e-9)

	s.PointerDown(190, 90)
	assert.Empty(t, s.Store().Selected(), "clicking empty canvas clears the selection")

	require.True(t, s.Undo())
	assert.InDelta(t, 0.05, s.Store().Committed()[0].Points[0].X, 1e-9)
}

func TestStrokeEraser(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 50, 10)
	drawLine(s, 10, 60, 50, 60)

	s.Tool = ToolEraser
	s.EraserMode = EraserStroke
	s.PointerDown(30, 60)
	s.PointerUp()

	committed := s.Store().Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, 0.1, committed[0].Points[0].Y)

	s.PointerDown(150, 90)
	assert.Len(t, s.Store().Committed(), 1, "miss erases nothing")
}

func TestStandardEraserDrawsEraserStroke(t *testing.T) {
	s := newTestStudio(t)
	s.Tool = ToolEraser
	s.EraserMode = EraserStandard
	s.Brush.StrokeEnabled = false
	s.Brush.Fill = true
	drawLine(s, 10, 10, 50, 10)

	st := s.Store().Committed()[0]
	assert.Equal(t, state.ToolEraser, st.Tool)
	assert.True(t, st.StrokeEnabled, "erasers always cut")
	assert.Nil(t, st.FillColorSlot, "erasers never fill")
}

func TestFillAndPicker(t *testing.T) {
	s := newTestStudio(t)
	s.Brush.Fill = true
	s.Brush.ColorSlot = 3
	s.Brush.FillSlot = 4
	drawLine(s, 10, 10, 50, 10)
	require.Equal(t, 4, *s.Store().Committed()[0].FillColorSlot)

	s.Brush = DefaultBrush()
	s.Tool = ToolPicker
	s.PointerDown(30, 10)
	assert.Equal(t, 3, s.Brush.ColorSlot)
	assert.Equal(t, 4, s.Brush.FillSlot)
}

func TestLayerSwitchAbandonsStroke(t *testing.T) {
	s := newTestStudio(t)
	s.PointerDown(10, 10)
	s.PointerMove(20, 10)
	s.SetActiveLayer(0)
	s.PointerUp()

	assert.Empty(t, s.Store().Committed())
	_, ok := s.Store().LiveStroke(2)
	assert.False(t, ok)
	assert.Equal(t, 0, s.ActiveLayer())
}

func TestSymmetryMirrorsStrokes(t *testing.T) {
	s := newTestStudio(t)
	s.SetSymmetry(state.SymmetryHorizontal)
	drawLine(s, 10, 10, 50, 10)
	assert.Len(t, s.Store().Committed(), 2)
}

func TestFrameKeepsRunningUntilSettled(t *testing.T) {
	s := newTestStudio(t)
	assert.False(t, s.Frame(t0), "idle scene is settled")

	s.SetPlaying(true)
	assert.True(t, s.Compositor().Playing)
	s.PointerMove(200, 100)
	assert.True(t, s.Frame(t0.Add(time.Second/60)))
}

type phoneTilt struct {
	mu sync.Mutex
	r  motion.TiltReading
}

func (p *phoneTilt) RequestPermission(context.Context) bool { return true }

func (p *phoneTilt) Read() (motion.TiltReading, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r, true
}

func (p *phoneTilt) set(r motion.TiltReading) {
	p.mu.Lock()
	p.r = r
	p.mu.Unlock()
}

func TestLowPowerTiltFollowsNewReadings(t *testing.T) {
	cfg := config.Default()
	cfg.LowPower = true
	tilt := &phoneTilt{}
	s := New(cfg, tilt, nil)
	s.Resize(200, 100)
	s.SetPlaying(true)
	require.True(t, s.EnableTilt(t.Context()))

	var mu sync.Mutex
	var frames int
	var offset motion.Offset
	clock := motion.NewManualClock(t0)
	loop := motion.NewLoop(motion.NewOnDemandScheduler(time.Millisecond), clock, motion.Inline, func(now time.Time) bool {
		more := s.Frame(now)
		mu.Lock()
		frames++
		offset = s.Controller().Current()
		mu.Unlock()
		return more
	})
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go loop.Run(ctx)
	loop.Invalidate()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return frames > 3
	}, 5*time.Second, time.Millisecond, "settled scene keeps polling the tilt source")

	tilt.set(motion.TiltReading{Beta: 45, Gamma: 45})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return offset.X > 0.99 && offset.Y > 0.99
	}, 5*time.Second, time.Millisecond)
}

func TestResetIsUndoable(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 50, 10)
	s.Reset()
	assert.Empty(t, s.Store().Committed())
	require.True(t, s.Undo())
	assert.Len(t, s.Store().Committed(), 1)
	require.True(t, s.Redo())
	assert.Empty(t, s.Store().Committed())
}

func TestJSONRoundTrip(t *testing.T) {
	s := newTestStudio(t)
	s.Compositor().Strength = 80
	s.Compositor().Inverted = true
	s.SetSymmetry(state.SymmetryVertical)
	drawLine(s, 10, 10, 50, 10)

	data, err := s.ExportJSON()
	require.NoError(t, err)

	other := newTestStudio(t)
	require.NoError(t, other.ImportJSON(data))
	assert.Len(t, other.Store().Committed(), 2)
	assert.Equal(t, 1, other.Store().HistoryDepth(), "import starts a fresh history")
	assert.Equal(t, 80.0, other.Compositor().Strength)
	assert.True(t, other.Compositor().Inverted)
	assert.Equal(t, state.SymmetryVertical, other.Store().Symmetry())
	assert.Equal(t, s.Store().Palette(), other.Store().Palette())
}

func TestImportRejectsBadPayload(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 50, 10)

	err := s.ImportJSON([]byte(`{"hello": "world"}`))
	assert.ErrorIs(t, err, state.ErrInvalidPayload)
	assert.Len(t, s.Store().Committed(), 1)

	assert.Error(t, s.ImportShare("!!"))
}

func TestImportWithoutConfigKeepsScene(t *testing.T) {
	s := newTestStudio(t)
	s.Compositor().Strength = 33
	require.NoError(t, s.ImportJSON([]byte(`{"v":2,"pl":["#000000"],"st":[{"p":[[0.1,0.1],[0.2,0.2]],"c":0,"s":4,"t":0,"l":9}]}`)))

	assert.Equal(t, 33.0, s.Compositor().Strength)
	require.Len(t, s.Store().Committed(), 1)
	assert.Equal(t, 4, s.Store().Committed()[0].LayerID, "unknown layer clamped")
	assert.Len(t, s.Store().Palette(), 1)
}

func TestShareRoundTrip(t *testing.T) {
	s := newTestStudio(t)
	drawLine(s, 10, 10, 50, 10)
	str, err := s.ShareString()
	require.NoError(t, err)

	other := newTestStudio(t)
	require.NoError(t, other.ImportShare(str))
	assert.Len(t, other.Store().Committed(), 1)
}

func TestRecordExportSavesBlob(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Duration = 200 * time.Millisecond
	cfg.Export.FPS = 10
	cfg.Export.Format = "gif"

	var saved []export.Blob
	s := New(cfg, nil, func(b export.Blob) error {
		saved = append(saved, b)
		return nil
	})
	var results int
	s.OnExport = func(b *export.Blob, err error) {
		results++
		assert.NoError(t, err)
		assert.NotNil(t, b)
	}
	s.Resize(40, 30)
	drawLine(s, 5, 5, 30, 20)

	require.True(t, s.RecordExport(t0))
	assert.True(t, s.Frame(t0), "recording keeps frames coming")
	s.Frame(t0.Add(200 * time.Millisecond))

	require.Len(t, saved, 1)
	assert.Equal(t, 1, results)
	assert.Equal(t, "image/gif", saved[0].MIME)
	assert.False(t, s.Recorder().Active())
	assert.False(t, s.Compositor().Exporting)
}

func TestRecordExportNeedsViewport(t *testing.T) {
	s := New(config.Default(), nil, nil)
	assert.False(t, s.RecordExport(t0))
	_, err := s.FinishExport(t0)
	assert.ErrorIs(t, err, export.ErrNotRecording)
}

func TestPDFExports(t *testing.T) {
	s := newTestStudio(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, s.WriteSnapshotPDF(&buf), ErrNoFrame)

	drawLine(s, 10, 10, 50, 10)
	s.Frame(t0)
	require.NoError(t, s.WriteSnapshotPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	buf.Reset()
	require.NoError(t, s.WriteStrokesPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
