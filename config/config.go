// Package config loads the detector's YAML configuration and watches it for
// changes.
package config

import (
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the motion detection program.
type Config struct {
	Input      InputConfig      `json:"input" yaml:"input"`
	Preprocess PreprocessConfig `json:"preprocess" yaml:"preprocess"`
	Detection  motion.Config    `json:"detection" yaml:"detection"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Display    DisplayConfig    `json:"display" yaml:"display"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// InputConfig selects the frame source. At most one of Video and Frames may
// be set; when both are empty the capture device is used.
type InputConfig struct {
	// Video is the path of a video file.
	Video string `json:"video" yaml:"video"`
	// Frames is a directory of numbered still frames.
	Frames string `json:"frames" yaml:"frames"`
	// Device is the capture device id.
	Device int `json:"device" yaml:"device"`
}

// PreprocessConfig controls the work done on each frame before detection.
type PreprocessConfig struct {
	// BlurSize is the side of the Gaussian blur kernel, odd and positive.
	BlurSize int `json:"blur_size" yaml:"blur_size"`
	// ResizeWidth downscales still frames to this width when non-zero.
	ResizeWidth int `json:"resize_width" yaml:"resize_width"`
}

// OutputConfig controls the annotated frames written to disk.
type OutputConfig struct {
	Persist   bool   `json:"persist" yaml:"persist"`
	Dir       string `json:"dir" yaml:"dir"`
	Format    string `json:"format" yaml:"format"`
	BoxColor  string `json:"box_color" yaml:"box_color"`
	Thickness int    `json:"thickness" yaml:"thickness"`
	// Overlay writes the frame id and box count on each frame.
	Overlay bool `json:"overlay" yaml:"overlay"`
}

// DisplayConfig controls the on-screen window.
type DisplayConfig struct {
	Window bool   `json:"window" yaml:"window"`
	Title  string `json:"title" yaml:"title"`
	// DelayMs is the wait after each displayed frame.
	DelayMs int `json:"delay_ms" yaml:"delay_ms"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Address string `json:"address" yaml:"address"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	Color bool   `json:"color" yaml:"color"`
}

// Default returns the reference configuration: capture device 0, a 3x3 blur,
// component detection, annotated JPEG frames written to "imgs" and a window
// refreshed every 30ms.
func Default() Config {
	return Config{
		Preprocess: PreprocessConfig{
			BlurSize: 3,
		},
		Detection: motion.DefaultConfig(),
		Output: OutputConfig{
			Persist:   true,
			Dir:       "imgs",
			Format:    string(images.FormatJPEG),
			BoxColor:  "#00ff00",
			Thickness: 2,
		},
		Display: DisplayConfig{
			Window:  true,
			Title:   "Result",
			DelayMs: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
//
// Arguments:
//   - path: The configuration file path.
//
// Returns:
//   - Config: The merged configuration.
//   - error: A read, parse or validation error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
//
// Returns:
//   - error: An error wrapping common.ErrPrecondition for invalid values,
//     nil otherwise.
func (c Config) Validate() error {
	if err := c.Detection.Validate(); err != nil {
		return errors.Wrap(err, "detection")
	}
	if c.Input.Video != "" && c.Input.Frames != "" {
		return errors.Wrap(common.ErrPrecondition, "input: video and frames are mutually exclusive")
	}
	if c.Input.Device < 0 {
		return errors.Wrapf(common.ErrPrecondition, "input: device %d must not be negative", c.Input.Device)
	}
	if c.Preprocess.BlurSize < 1 || c.Preprocess.BlurSize%2 == 0 {
		return errors.Wrapf(common.ErrPrecondition, "preprocess: blur size %d must be odd and positive", c.Preprocess.BlurSize)
	}
	if c.Preprocess.ResizeWidth < 0 {
		return errors.Wrapf(common.ErrPrecondition, "preprocess: resize width %d must not be negative", c.Preprocess.ResizeWidth)
	}
	if _, ok := images.ParseImageFormat(c.Output.Format); !ok {
		return errors.Wrapf(common.ErrPrecondition, "output: unsupported format %q", c.Output.Format)
	}
	if _, err := c.Output.Color(); err != nil {
		return errors.Wrap(common.ErrPrecondition, err.Error())
	}
	if c.Output.Thickness < 1 {
		return errors.Wrapf(common.ErrPrecondition, "output: thickness %d must be at least 1", c.Output.Thickness)
	}
	if c.Output.Persist && c.Output.Dir == "" {
		return errors.Wrap(common.ErrPrecondition, "output: dir is required when persist is enabled")
	}
	if c.Display.DelayMs < 0 {
		return errors.Wrapf(common.ErrPrecondition, "display: delay %dms must not be negative", c.Display.DelayMs)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(common.ErrPrecondition, err.Error())
	}
	return nil
}

// Color parses BoxColor, a hex string such as "#00ff00".
func (o OutputConfig) Color() (color.RGBA, error) {
	c, err := colorful.Hex(o.BoxColor)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "output: box color %q", o.BoxColor)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// ImageFormat returns the parsed output format, JPEG when unrecognised.
func (o OutputConfig) ImageFormat() images.ImageFormat {
	if f, ok := images.ParseImageFormat(o.Format); ok {
		return f
	}
	return images.FormatJPEG
}
