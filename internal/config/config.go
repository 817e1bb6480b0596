// Package config loads the application settings from TOML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"ParallaxSketch/internal/composite"
	"ParallaxSketch/internal/export"
	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/state"
)

// ErrInvalid is returned when a value cannot be repaired by clamping.
var ErrInvalid = errors.New("config: invalid value")

// Grid controls the snapping grid.
type Grid struct {
	Enabled bool    `toml:"enabled"`
	Snap    bool    `toml:"snap"`
	Size    float64 `toml:"size"`
}

// Tilt controls the phone companion server.
type Tilt struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Advertise bool   `toml:"advertise"`
}

// Export holds the defaults for animated exports.
type Export struct {
	Trajectory string        `toml:"trajectory"`
	Duration   time.Duration `toml:"duration"`
	Format     string        `toml:"format"`
	FPS        int           `toml:"fps"`
	OutDir     string        `toml:"out_dir"`
}

// Config is the full application configuration.
type Config struct {
	Layers     int      `toml:"layers"`
	Palette    []string `toml:"palette"`
	Background string   `toml:"background"`

	ParallaxStrength float64 `toml:"parallax_strength"`
	ParallaxInverted bool    `toml:"parallax_inverted"`
	FocalLayer       int     `toml:"focal_layer"`

	Stiffness float64 `toml:"stiffness"`
	Damping   float64 `toml:"damping"`
	LowPower  bool    `toml:"low_power"`
	OnionSkin bool    `toml:"onion_skin"`

	BlurStrength float64            `toml:"blur_strength"`
	FocusRange   float64            `toml:"focus_range"`
	GlobalBlend  string             `toml:"global_blend"`
	LayerBlend   map[string]string  `toml:"layer_blend"`
	LayerBlur    map[string]float64 `toml:"layer_blur"`

	Symmetry string `toml:"symmetry"`
	Grid     Grid   `toml:"grid"`
	Tilt     Tilt   `toml:"tilt"`
	Export   Export `toml:"export"`

	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layers:           5,
		Palette:          append([]string(nil), state.PresetPalettes[0]...),
		Background:       "#FDFCF8",
		ParallaxStrength: 50,
		FocalLayer:       2,
		Stiffness:        motion.DefaultSpring.Stiffness,
		Damping:          motion.DefaultSpring.Damping,
		OnionSkin:        true,
		BlurStrength:     2,
		FocusRange:       1,
		GlobalBlend:      "normal",
		Symmetry:         "NONE",
		Grid:             Grid{Size: 20},
		Tilt:             Tilt{Addr: ":8765"},
		Export: Export{
			Trajectory: "CIRCLE",
			Duration:   4 * time.Second,
			Format:     export.DefaultFormat,
			FPS:        export.DefaultFPS,
			OutDir:     ".",
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Info("config file not found, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.Logger().Warn("unknown config key", "key", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func clamp(name string, v *float64, lo, hi float64) {
	c := math.Max(lo, math.Min(hi, *v))
	if math.IsNaN(*v) {
		c = lo
	}
	if c != *v {
		logging.Logger().Warn("config value clamped", "key", name, "from", *v, "to", c)
		*v = c
	}
}

// Validate clamps numeric values into range and reports values that
// cannot be repaired.
func (c *Config) Validate() error {
	if c.Layers != 5 && c.Layers != 7 {
		return fmt.Errorf("%w: layers must be 5 or 7, got %d", ErrInvalid, c.Layers)
	}
	if _, err := state.ParsePalette(c.Palette); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalid)
	}
	if _, err := state.ParseHexColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalid, err)
	}
	if _, ok := state.ParseBlendMode(c.GlobalBlend); !ok {
		return fmt.Errorf("%w: global_blend %q", ErrInvalid, c.GlobalBlend)
	}
	for k, v := range c.LayerBlend {
		if _, err := c.layerKey(k); err != nil {
			return err
		}
		if _, ok := state.ParseBlendMode(v); !ok {
			return fmt.Errorf("%w: layer_blend.%s %q", ErrInvalid, k, v)
		}
	}
	for k := range c.LayerBlur {
		if _, err := c.layerKey(k); err != nil {
			return err
		}
	}
	if _, ok := state.ParseSymmetry(strings.ToUpper(c.Symmetry)); !ok {
		return fmt.Errorf("%w: symmetry %q", ErrInvalid, c.Symmetry)
	}
	if _, ok := motion.ParseTrajectory(c.Export.Trajectory); !ok {
		return fmt.Errorf("%w: export.trajectory %q", ErrInvalid, c.Export.Trajectory)
	}

	clamp("parallax_strength", &c.ParallaxStrength, 0, 100)
	clamp("stiffness", &c.Stiffness, 0.001, 1)
	clamp("damping", &c.Damping, 0, 0.999)
	clamp("blur_strength", &c.BlurStrength, 0, 20)
	clamp("grid.size", &c.Grid.Size, 2, 200)
	if c.FocalLayer < 0 || c.FocalLayer >= c.Layers {
		f := min(max(c.FocalLayer, 0), c.Layers-1)
		logging.Logger().Warn("config value clamped", "key", "focal_layer", "from", c.FocalLayer, "to", f)
		c.FocalLayer = f
	}
	if c.Export.Duration <= 0 {
		logging.Logger().Warn("config value reset", "key", "export.duration", "from", c.Export.Duration)
		c.Export.Duration = Default().Export.Duration
	}
	if c.Export.FPS <= 0 || c.Export.FPS > 60 {
		logging.Logger().Warn("config value reset", "key", "export.fps", "from", c.Export.FPS)
		c.Export.FPS = export.DefaultFPS
	}
	return nil
}

func (c *Config) layerKey(k string) (int, error) {
	var i int
	if _, err := fmt.Sscanf(k, "%d", &i); err != nil || i < 0 || i >= c.Layers {
		return 0, fmt.Errorf("%w: no layer %q", ErrInvalid, k)
	}
	return i, nil
}

// PaletteColors returns the parsed palette. Call after Validate.
func (c *Config) PaletteColors() state.Palette {
	p, _ := state.ParsePalette(c.Palette)
	return p
}

// BackgroundColor returns the parsed background. Call after Validate.
func (c *Config) BackgroundColor() color.NRGBA {
	bg, _ := state.ParseHexColor(c.Background)
	return bg
}

// SymmetryMode returns the parsed symmetry mode.
func (c *Config) SymmetryMode() state.SymmetryMode {
	m, _ := state.ParseSymmetry(strings.ToUpper(c.Symmetry))
	return m
}

// Spring returns the controller's spring settings.
func (c *Config) Spring() motion.SpringConfig {
	return motion.SpringConfig{Stiffness: c.Stiffness, Damping: c.Damping}
}

// Params returns the compositor parameters. The active layer starts at
// the focal layer.
func (c *Config) Params() composite.Params {
	p := composite.Params{
		Layers:       c.Layers,
		FocalLayer:   c.FocalLayer,
		ActiveLayer:  c.FocalLayer,
		Strength:     c.ParallaxStrength,
		Inverted:     c.ParallaxInverted,
		OnionSkin:    c.OnionSkin,
		BlurStrength: c.BlurStrength,
		FocusRange:   c.FocusRange,
		BlurOverride: make(map[int]float64),
		LayerBlend:   make([]state.BlendMode, c.Layers),
		Background:   c.BackgroundColor(),
	}
	p.GlobalBlend, _ = state.ParseBlendMode(c.GlobalBlend)
	for k, v := range c.LayerBlend {
		if i, err := c.layerKey(k); err == nil {
			p.LayerBlend[i], _ = state.ParseBlendMode(v)
		}
	}
	for k, v := range c.LayerBlur {
		if i, err := c.layerKey(k); err == nil {
			p.BlurOverride[i] = v
		}
	}
	return p
}

// ExportConfig returns the recorder settings.
func (c *Config) ExportConfig() export.Config {
	t, _ := motion.ParseTrajectory(c.Export.Trajectory)
	return export.Config{
		Trajectory: t,
		Duration:   c.Export.Duration,
		Format:     c.Export.Format,
		FPS:        c.Export.FPS,
	}
}
