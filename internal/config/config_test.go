package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parallax.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
layers = 7
focal_layer = 3
parallax_strength = 80
global_blend = "multiply"
symmetry = "quad"

[layer_blend]
1 = "difference"

[layer_blur]
6 = 4.5

[grid]
enabled = true
snap = true
size = 25

[export]
trajectory = "figure8"
duration = "6s"
format = "gif"
fps = 24
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Layers)
	assert.Equal(t, 3, cfg.FocalLayer)
	assert.Equal(t, state.SymmetryQuad, cfg.SymmetryMode())
	assert.Equal(t, Grid{Enabled: true, Snap: true, Size: 25}, cfg.Grid)
	assert.Equal(t, "#E0BBE4", cfg.Palette[0], "unset keys keep their defaults")

	p := cfg.Params()
	assert.Equal(t, 3, p.ActiveLayer)
	assert.Equal(t, 80.0, p.Strength)
	assert.Equal(t, state.BlendMultiply, p.GlobalBlend)
	assert.Equal(t, state.BlendDifference, p.Blend(1))
	assert.Equal(t, state.BlendMultiply, p.Blend(2))
	assert.Equal(t, 4.5, p.Blur(6))

	ec := cfg.ExportConfig()
	assert.Equal(t, motion.TrajectoryFigure8, ec.Trajectory)
	assert.Equal(t, 6*time.Second, ec.Duration)
	assert.Equal(t, "gif", ec.Format)
	assert.Equal(t, 24, ec.FPS)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"layer count", "layers = 6"},
		{"palette color", `palette = ["#GGGGGG"]`},
		{"empty palette", `palette = []`},
		{"background", `background = "blue"`},
		{"blend", `global_blend = "screen"`},
		{"layer blend key", "[layer_blend]\n9 = \"multiply\""},
		{"layer blur key", "[layer_blur]\nx = 1.0"},
		{"symmetry", `symmetry = "spiral"`},
		{"trajectory", "[export]\ntrajectory = \"zigzag\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := Load(writeConfig(t, "layers = = 5"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestValidate_Clamps(t *testing.T) {
	cfg := Default()
	cfg.ParallaxStrength = 250
	cfg.Damping = 1.5
	cfg.FocalLayer = 9
	cfg.Grid.Size = 0
	cfg.Export.Duration = -time.Second
	cfg.Export.FPS = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100.0, cfg.ParallaxStrength)
	assert.Equal(t, 0.999, cfg.Damping)
	assert.Equal(t, 4, cfg.FocalLayer)
	assert.Equal(t, 2.0, cfg.Grid.Size)
	assert.Equal(t, 4*time.Second, cfg.Export.Duration)
	assert.Equal(t, 30, cfg.Export.FPS)
}

func TestNegativeFocusRangeDisablesDepthBlur(t *testing.T) {
	cfg := Default()
	cfg.FocusRange = -1
	p := cfg.Params()
	assert.Zero(t, p.Blur(0))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layers = 7
	cfg.LayerBlend = map[string]string{"2": "overlay"}
	cfg.LayerBlur = map[string]float64{"6": 1.5}
	path := filepath.Join(t.TempDir(), "out.toml")

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
