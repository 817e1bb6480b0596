package state

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrBadColor is returned for color strings that are not #RGB or #RRGGBB.
var ErrBadColor = errors.New("state: bad hex color")

// OverrideColor is painted for strokes whose slot is SlotNone.
var OverrideColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// PresetPalettes are the built-in five-color palettes.
var PresetPalettes = [][]string{
	{"#E0BBE4", "#957DAD", "#D291BC", "#FEC8D8", "#FFDFD3"}, // pastel sunset
	{"#F4F1DE", "#E07A5F", "#3D405B", "#81B29A", "#F2CC8F"}, // terra
	{"#CCD5AE", "#E9EDC9", "#FEFAE0", "#FAEDCD", "#D4A373"}, // nature
	{"#264653", "#2A9D8F", "#E9C46A", "#F4A261", "#E76F51"}, // vivid
	{"#4A4A4A", "#8C8C80", "#D8D4C5", "#EFEDE6", "#FDFCF8"}, // monochrome
}

// Palette is an ordered, index-addressed list of colors.
type Palette []color.NRGBA

// DefaultPalette returns a fresh copy of the first preset.
func DefaultPalette() Palette {
	p, _ := ParsePalette(PresetPalettes[0])
	return p
}

// RandomPreset returns a copy of a randomly chosen preset.
func RandomPreset() Palette {
	p, _ := ParsePalette(PresetPalettes[rand.IntN(len(PresetPalettes))])
	return p
}

// ParsePalette parses a list of hex colors.
func ParsePalette(hex []string) (Palette, error) {
	p := make(Palette, 0, len(hex))
	for i, h := range hex {
		c, err := ParseHexColor(h)
		if err != nil {
			return nil, fmt.Errorf("palette slot %d: %w", i, err)
		}
		p = append(p, c)
	}
	return p, nil
}

// ParseHexColor parses "#RRGGBB" or "#RGB" (leading '#' optional).
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Hex formats c as "#RRGGBB".
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Color resolves a slot. SlotNone resolves to OverrideColor; any other
// out-of-range slot reports false.
func (p Palette) Color(slot int) (color.NRGBA, bool) {
	if slot == SlotNone {
		return OverrideColor, true
	}
	if slot < 0 || slot >= len(p) {
		return color.NRGBA{}, false
	}
	return p[slot], true
}

// With returns a copy of p with slot i replaced.
func (p Palette) With(i int, c color.NRGBA) Palette {
	out := p.Clone()
	if i >= 0 && i < len(out) {
		out[i] = c
	}
	return out
}

// Clone returns an independent copy.
func (p Palette) Clone() Palette {
	return append(Palette(nil), p...)
}

// Hex returns the palette as hex strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = Hex(c)
	}
	return out
}
