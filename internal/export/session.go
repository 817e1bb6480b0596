// Package export records scripted parallax loops to video and writes still
// snapshots to PDF.
package export

import (
	"errors"
	"fmt"
	"image"

	"ParallaxSketch/internal/logging"
)

var (
	// ErrNoCodec is returned when no capture session can be created at all.
	ErrNoCodec = errors.New("export: no usable codec")
	// ErrNotRecording is returned by operations that need an active recording.
	ErrNotRecording = errors.New("export: not recording")
)

// Session receives captured frames and produces the finished container.
type Session interface {
	AddFrame(img image.Image) error
	// Close finalizes the container and returns its bytes.
	Close() ([]byte, error)
	// Abort discards everything captured so far.
	Abort()
}

// Codec describes one capture container.
type Codec struct {
	Name string
	MIME string
	Ext  string
	Open func(w, h, fps int) (Session, error)
}

var codecs = map[string]Codec{
	"avi": {Name: "avi", MIME: "video/x-msvideo", Ext: "avi", Open: newAVISession},
	"gif": {Name: "gif", MIME: "image/gif", Ext: "gif", Open: newGIFSession},
}

// fallbacks lists, per requested format, the order codecs are tried in.
var fallbacks = map[string][]string{
	"avi": {"avi", "gif"},
	"gif": {"gif", "avi"},
}

// DefaultFormat is used when the requested format is unknown.
const DefaultFormat = "avi"

// Formats returns the names of the registered codecs.
func Formats() []string { return []string{"avi", "gif"} }

// OpenSession walks the preference list for format. If every configured
// codec fails, it falls back to an unconfigured GIF session; only when even
// that cannot be built does it return ErrNoCodec.
func OpenSession(format string, w, h, fps int) (Session, Codec, error) {
	prefs, ok := fallbacks[format]
	if !ok {
		logging.Logger().Warn("unknown export format", "format", format, "using", DefaultFormat)
		prefs = fallbacks[DefaultFormat]
	}
	for _, name := range prefs {
		c := codecs[name]
		s, err := c.Open(w, h, fps)
		if err == nil {
			if name != prefs[0] {
				logging.Logger().Warn("export codec fell back", "wanted", prefs[0], "using", name)
			}
			return s, c, nil
		}
		logging.Logger().Warn("export codec unavailable", "codec", name, "err", err)
	}
	if w <= 0 || h <= 0 {
		return nil, Codec{}, fmt.Errorf("%w: frame size %dx%d", ErrNoCodec, w, h)
	}
	c := codecs["gif"]
	return &gifSession{delay: 0, plain: true}, c, nil
}
