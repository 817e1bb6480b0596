package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/icza/mjpeg"

	"ParallaxSketch/internal/logging"
)

const (
	aviQuality = 90
	aviMaxDim  = 1 << 15
)

// aviSession streams JPEG frames into a Motion-JPEG AVI in a temporary file
// and hands the finished container back on Close.
type aviSession struct {
	path   string
	aw     mjpeg.AviWriter
	frames int
	closed bool
}

func newAVISession(w, h, fps int) (Session, error) {
	if w <= 0 || h <= 0 || w > aviMaxDim || h > aviMaxDim {
		return nil, fmt.Errorf("avi: bad frame size %dx%d", w, h)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("avi: bad frame rate %d", fps)
	}
	f, err := os.CreateTemp("", "parallax-*.avi")
	if err != nil {
		return nil, fmt.Errorf("avi: temp file: %w", err)
	}
	path := f.Name()
	f.Close()

	aw, err := mjpeg.New(path, int32(w), int32(h), int32(fps))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("avi: %w", err)
	}
	return &aviSession{path: path, aw: aw}, nil
}

func (s *aviSession) AddFrame(img image.Image) error {
	if s.closed {
		return errors.New("avi: session closed")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: aviQuality}); err != nil {
		return fmt.Errorf("avi: encode frame %d: %w", s.frames, err)
	}
	if err := s.aw.AddFrame(buf.Bytes()); err != nil {
		return fmt.Errorf("avi: write frame %d: %w", s.frames, err)
	}
	s.frames++
	return nil
}

func (s *aviSession) Abort() {
	if s.closed {
		return
	}
	s.closed = true
	if err := s.aw.Close(); err != nil {
		logging.Logger().Debug("avi abort", "err", err)
	}
	s.remove()
}

func (s *aviSession) Close() ([]byte, error) {
	if s.closed {
		return nil, errors.New("avi: session closed")
	}
	s.closed = true
	defer s.remove()

	if err := s.aw.Close(); err != nil {
		return nil, fmt.Errorf("avi: finalize: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("avi: read back: %w", err)
	}
	return data, nil
}

func (s *aviSession) remove() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Logger().Warn("avi temp file left behind", "path", s.path, "err", err)
	}
}
