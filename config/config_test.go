package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, motion.DefaultConfig(), cfg.Detection)
	assert.Equal(t, 3, cfg.Preprocess.BlurSize)
	assert.Equal(t, images.FormatJPEG, cfg.Output.ImageFormat())
	assert.Equal(t, 30, cfg.Display.DelayMs)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
input:
  video: clips/parking.mp4
detection:
  strategy: contours
  padding: 4
output:
  format: png
  box_color: "#ff0000"
`))
	require.NoError(t, err)

	assert.Equal(t, "clips/parking.mp4", cfg.Input.Video)
	assert.Equal(t, motion.StrategyContours, cfg.Detection.Strategy)
	assert.Equal(t, 4, cfg.Detection.Padding)
	// Untouched fields keep their defaults.
	assert.Equal(t, 25, cfg.Detection.MaskThreshold)
	assert.Equal(t, float32(0.35), cfg.Detection.IoUThreshold)
	assert.Equal(t, "imgs", cfg.Output.Dir)

	assert.Equal(t, images.FormatPNG, cfg.Output.ImageFormat())
	c, err := cfg.Output.Color()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("detection: [unterminated"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"detection", func(c *Config) { c.Detection.IoUThreshold = 1.5 }},
		{"video and frames", func(c *Config) { c.Input.Video = "a.mp4"; c.Input.Frames = "frames" }},
		{"negative device", func(c *Config) { c.Input.Device = -1 }},
		{"even blur", func(c *Config) { c.Preprocess.BlurSize = 4 }},
		{"zero blur", func(c *Config) { c.Preprocess.BlurSize = 0 }},
		{"negative resize", func(c *Config) { c.Preprocess.ResizeWidth = -10 }},
		{"format", func(c *Config) { c.Output.Format = "bmp" }},
		{"color", func(c *Config) { c.Output.BoxColor = "green" }},
		{"thickness", func(c *Config) { c.Output.Thickness = 0 }},
		{"persist without dir", func(c *Config) { c.Output.Dir = "" }},
		{"delay", func(c *Config) { c.Display.DelayMs = -1 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), common.ErrPrecondition)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  window: false\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Display.Window)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
