package motion

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-motion/common"
	"github.com/pkg/errors"
)

// Strategy selects how changed pixels are grouped into candidate boxes.
type Strategy string

const (
	// StrategyComponents dilates the change mask and boxes each 8-connected
	// component. Box areas are true pixel counts.
	StrategyComponents Strategy = "components"
	// StrategyContours boxes each external contour of the undilated mask,
	// padded by a margin. Box areas are rectangle areas.
	StrategyContours Strategy = "contours"
)

// Config contains the parameters of a single detection call.
type Config struct {
	// Strategy selects the candidate extractor.
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	// MaskThreshold is the intensity difference a pixel must exceed to count
	// as changed, on a 0-255 scale.
	MaskThreshold int `json:"mask_threshold" yaml:"mask_threshold"`
	// DilationSize is the side of the square dilation kernel used by the
	// component strategy.
	DilationSize int `json:"dilation_size" yaml:"dilation_size"`
	// Padding is the margin added on every side of a contour box.
	Padding int `json:"padding" yaml:"padding"`
	// IoUThreshold is the overlap above which the smaller of two boxes is
	// suppressed, in [0, 1].
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
}

// DefaultConfig returns the reference configuration: component clustering
// with a 7x7 dilation, a mask threshold of 25 and an IoU cutoff of 0.35.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyComponents,
		MaskThreshold: 25,
		DilationSize:  7,
		Padding:       10,
		IoUThreshold:  0.35,
	}
}

// Validate checks that the configuration can only produce well-formed boxes.
//
// Returns:
//   - error: An error wrapping common.ErrPrecondition naming the offending field.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyComponents, StrategyContours:
	default:
		return errors.Wrapf(common.ErrPrecondition, "unknown strategy %q", c.Strategy)
	}
	if c.MaskThreshold <= 0 || c.MaskThreshold >= 255 {
		return errors.Wrapf(common.ErrPrecondition, "mask threshold %d outside 1..254", c.MaskThreshold)
	}
	if c.DilationSize < 1 {
		return errors.Wrapf(common.ErrPrecondition, "dilation size %d must be at least 1", c.DilationSize)
	}
	if c.Padding < 0 {
		return errors.Wrapf(common.ErrPrecondition, "padding %d must not be negative", c.Padding)
	}
	if math32.IsNaN(c.IoUThreshold) || c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Wrapf(common.ErrPrecondition, "iou threshold %v outside [0, 1]", c.IoUThreshold)
	}
	return nil
}
