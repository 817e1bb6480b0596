package state

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"ParallaxSketch/internal/logging"
)

// ErrInvalidPayload is returned when a payload lacks a stroke list or palette.
var ErrInvalidPayload = errors.New("state: payload lacks strokes or palette")

// PayloadVersion is written into every encoded payload.
const PayloadVersion = 2

const defaultStrokeSize = 10

// SketchConfig is the scene configuration carried alongside strokes.
type SketchConfig struct {
	ParallaxStrength float64
	ParallaxInverted bool
	Background       string
	CanvasWidth      float64
	FocalLayer       int
	BlurStrength     float64
	FocusRange       float64
	Symmetry         SymmetryMode
}

// Sketch is the full serializable document. Config is nil for payloads
// that carry strokes only.
type Sketch struct {
	Palette []string
	Strokes []Stroke
	Config  *SketchConfig
}

type wireSketch struct {
	V  int          `json:"v"`
	Pl []string     `json:"pl"`
	St []wireStroke `json:"st"`
	Cf *wireConfig  `json:"cf,omitempty"`
}

type wireStroke struct {
	P   [][2]float64 `json:"p"`
	C   int          `json:"c"`
	S   float64      `json:"s"`
	T   int          `json:"t"`
	L   int          `json:"l"`
	Fc  *int         `json:"fc,omitempty"`
	Bm  string       `json:"bm,omitempty"`
	Fbm string       `json:"fbm,omitempty"`
	Ns  int          `json:"ns,omitempty"` // 1 when the outline pass is off
}

type wireConfig struct {
	Ps float64 `json:"ps"`
	Pi bool    `json:"pi,omitempty"`
	Bg string  `json:"bg,omitempty"`
	Cw float64 `json:"cw,omitempty"`
	Fl int     `json:"fl"`
	Bl float64 `json:"bl,omitempty"`
	Fr float64 `json:"fr"`
	Sy string  `json:"sy,omitempty"`
}

// Encode produces the minified payload. Points are rounded to 4 decimals.
func Encode(sk Sketch) ([]byte, error) {
	w := wireSketch{V: PayloadVersion, Pl: sk.Palette, St: make([]wireStroke, 0, len(sk.Strokes))}
	if w.Pl == nil {
		w.Pl = []string{}
	}
	for _, s := range sk.Strokes {
		ws := wireStroke{
			P: make([][2]float64, len(s.Points)),
			C: s.ColorSlot,
			S: s.Size,
			L: s.LayerID,
		}
		for i, p := range s.Points {
			ws.P[i] = [2]float64{round4(p.X), round4(p.Y)}
		}
		if s.Tool == ToolEraser {
			ws.T = 1
		}
		if s.FillColorSlot != nil {
			ws.Fc = FillSlot(*s.FillColorSlot)
		}
		if s.BlendMode != BlendNormal {
			ws.Bm = s.BlendMode.String()
		}
		if s.FillBlendMode != BlendNormal {
			ws.Fbm = s.FillBlendMode.String()
		}
		if !s.StrokeEnabled {
			ws.Ns = 1
		}
		w.St = append(w.St, ws)
	}
	if c := sk.Config; c != nil {
		w.Cf = &wireConfig{
			Ps: c.ParallaxStrength,
			Pi: c.ParallaxInverted,
			Bg: c.Background,
			Cw: c.CanvasWidth,
			Fl: c.FocalLayer,
			Bl: c.BlurStrength,
			Fr: c.FocusRange,
		}
		if c.Symmetry != SymmetryNone {
			w.Cf.Sy = c.Symmetry.String()
		}
	}
	return json.Marshal(w)
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

// Decode parses either the minified payload or the legacy full-name
// variant. Malformed fields fall back to safe defaults; only a payload
// without both a stroke list and a palette is rejected. Every decoded
// stroke receives a fresh id.
func Decode(data []byte) (Sketch, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Sketch{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	switch {
	case has(probe, "st") && has(probe, "pl"):
		return decodeMinified(probe), nil
	case has(probe, "strokes") && has(probe, "palette"):
		return decodeLegacy(probe), nil
	default:
		return Sketch{}, ErrInvalidPayload
	}
}

func has(m map[string]json.RawMessage, key string) bool {
	raw, ok := m[key]
	return ok && string(raw) != "null"
}

// field decodes m[key] into dst, leaving dst untouched on any problem.
func field(m map[string]json.RawMessage, key string, dst any) {
	raw, ok := m[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logging.Logger().Warn("payload field ignored", "field", key, "err", err)
	}
}

func objects(raw json.RawMessage) []map[string]json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logging.Logger().Warn("payload list ignored", "err", err)
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, it := range items {
		var m map[string]json.RawMessage
		if json.Unmarshal(it, &m) == nil && m != nil {
			out = append(out, m)
		}
	}
	return out
}

// points accepts [[x,y],...] or [{"x":..,"y":..},...], skipping bad entries.
func points(raw json.RawMessage) []Point {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]Point, 0, len(items))
	for _, it := range items {
		var pair []float64
		if json.Unmarshal(it, &pair) == nil {
			if len(pair) >= 2 {
				out = append(out, Point{X: pair[0], Y: pair[1]})
			}
			continue
		}
		var obj struct{ X, Y *float64 }
		if json.Unmarshal(it, &obj) == nil && obj.X != nil && obj.Y != nil {
			out = append(out, Point{X: *obj.X, Y: *obj.Y})
		}
	}
	return out
}

func blend(m map[string]json.RawMessage, key string) BlendMode {
	var name string
	field(m, key, &name)
	b, _ := ParseBlendMode(name)
	return b
}

func decodeMinified(top map[string]json.RawMessage) Sketch {
	var sk Sketch
	field(top, "pl", &sk.Palette)
	for _, m := range objects(top["st"]) {
		s := Stroke{ID: uuid.NewString(), Size: defaultStrokeSize, StrokeEnabled: true}
		s.Points = points(m["p"])
		field(m, "c", &s.ColorSlot)
		field(m, "s", &s.Size)
		field(m, "l", &s.LayerID)
		var t, ns int
		field(m, "t", &t)
		if t == 1 {
			s.Tool = ToolEraser
		}
		field(m, "fc", &s.FillColorSlot)
		s.BlendMode = blend(m, "bm")
		s.FillBlendMode = blend(m, "fbm")
		field(m, "ns", &ns)
		s.StrokeEnabled = ns != 1
		sk.Strokes = append(sk.Strokes, sanitize(s))
	}
	if raw, ok := top["cf"]; ok {
		var cf map[string]json.RawMessage
		if json.Unmarshal(raw, &cf) == nil && cf != nil {
			c := &SketchConfig{}
			sk.Config = c
			field(cf, "ps", &c.ParallaxStrength)
			field(cf, "pi", &c.ParallaxInverted)
			field(cf, "bg", &c.Background)
			field(cf, "cw", &c.CanvasWidth)
			field(cf, "fl", &c.FocalLayer)
			field(cf, "bl", &c.BlurStrength)
			field(cf, "fr", &c.FocusRange)
			var sy string
			field(cf, "sy", &sy)
			c.Symmetry, _ = ParseSymmetry(sy)
		}
	}
	return sk
}

func decodeLegacy(top map[string]json.RawMessage) Sketch {
	var sk Sketch
	field(top, "palette", &sk.Palette)
	seen := make(map[string]bool)
	for _, m := range objects(top["strokes"]) {
		s := Stroke{Size: defaultStrokeSize, StrokeEnabled: true}
		field(m, "id", &s.ID)
		if s.ID == "" || seen[s.ID] {
			s.ID = uuid.NewString()
		}
		seen[s.ID] = true
		s.Points = points(m["points"])
		field(m, "colorSlot", &s.ColorSlot)
		field(m, "fillColorSlot", &s.FillColorSlot)
		field(m, "size", &s.Size)
		field(m, "layerId", &s.LayerID)
		var tool string
		var eraser bool
		field(m, "tool", &tool)
		field(m, "isEraser", &eraser)
		if tool == "ERASER" || eraser {
			s.Tool = ToolEraser
		}
		s.BlendMode = blend(m, "blendMode")
		s.FillBlendMode = blend(m, "fillBlendMode")
		field(m, "isStrokeEnabled", &s.StrokeEnabled)
		sk.Strokes = append(sk.Strokes, sanitize(s))
	}
	if raw, ok := top["config"]; ok {
		var cf map[string]json.RawMessage
		if json.Unmarshal(raw, &cf) == nil && cf != nil {
			c := &SketchConfig{}
			sk.Config = c
			field(cf, "parallaxStrength", &c.ParallaxStrength)
			field(cf, "parallaxInverted", &c.ParallaxInverted)
			field(cf, "backgroundColor", &c.Background)
			field(cf, "canvasWidth", &c.CanvasWidth)
			field(cf, "focalLayerIndex", &c.FocalLayer)
			field(cf, "blurStrength", &c.BlurStrength)
			field(cf, "focusRange", &c.FocusRange)
			var sy string
			field(cf, "symmetryMode", &sy)
			c.Symmetry, _ = ParseSymmetry(sy)
		}
	}
	return sk
}

func sanitize(s Stroke) Stroke {
	if !(s.Size > 0) || math.IsInf(s.Size, 0) {
		s.Size = defaultStrokeSize
	}
	if s.ColorSlot < SlotNone {
		s.ColorSlot = 0
	}
	return s
}

var shareEncoding = base64.RawURLEncoding

// EncodeShare returns the minified payload as a URL-safe string.
func EncodeShare(sk Sketch) (string, error) {
	data, err := Encode(sk)
	if err != nil {
		return "", err
	}
	return shareEncoding.EncodeToString(data), nil
}

// DecodeShare reverses EncodeShare. Padded input is also accepted.
func DecodeShare(s string) (Sketch, error) {
	data, err := shareEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(s)
	}
	if err != nil {
		return Sketch{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return Decode(data)
}
