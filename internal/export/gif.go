package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"

	"golang.org/x/image/draw"
)

// gifSession quantizes frames to the Plan 9 palette. A plain session skips
// dithering; it is the default used when nothing else could be configured.
type gifSession struct {
	anim   gif.GIF
	delay  int
	plain  bool
	closed bool
}

func newGIFSession(w, h, fps int) (Session, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("gif: bad frame size %dx%d", w, h)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("gif: bad frame rate %d", fps)
	}
	return &gifSession{delay: max(1, 100/fps)}, nil
}

func (s *gifSession) AddFrame(img image.Image) error {
	if s.closed {
		return errors.New("gif: session closed")
	}
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	if s.plain {
		draw.Draw(p, b, img, b.Min, draw.Src)
	} else {
		draw.FloydSteinberg.Draw(p, b, img, b.Min)
	}
	s.anim.Image = append(s.anim.Image, p)
	s.anim.Delay = append(s.anim.Delay, s.delay)
	return nil
}

func (s *gifSession) Abort() {
	s.closed = true
	s.anim = gif.GIF{}
}

func (s *gifSession) Close() ([]byte, error) {
	if s.closed {
		return nil, errors.New("gif: session closed")
	}
	s.closed = true
	if len(s.anim.Image) == 0 {
		return nil, errors.New("gif: no frames")
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &s.anim); err != nil {
		return nil, fmt.Errorf("gif: %w", err)
	}
	s.anim = gif.GIF{}
	return buf.Bytes(), nil
}
