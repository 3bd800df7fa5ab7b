// Package motion - Frame-differencing motion detection.
//
// A detection call compares two grayscale frames and returns the regions that
// changed between them:
//
// ┌──────────────────────┐
// │ prev, curr (*Gray)   │
// └──────┬───────────────┘
// ┌──────────────────────────────────────┐
// │ Diff + threshold (images.Diff)       │
// └──────┬───────────────────────────────┘
// ┌──────────────────────────────────────┐
// │ Candidate extraction (Extractor)     │
// │   components: dilate + 8-connected   │
// │   contours:   external + padding     │
// └──────┬───────────────────────────────┘
// ┌──────────────────────────────────────┐
// │ Greedy IoU suppression (postprocess) │
// └──────┬───────────────────────────────┘
// ┌──────────────────────┐
// │ []common.Box         │
// └──────────────────────┘
//
// Usage:
//
//	detector, err := motion.NewDetector(motion.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	boxes, err := detector.Detect(prevGray, currGray)
//
// Each call is independent. The caller decides which frame is "previous";
// nothing is retained between calls, so a Detector may be shared by
// goroutines working on different frame pairs.
package motion

import (
	"image"

	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/postprocess"
)

// Result is the outcome of one detection call.
type Result struct {
	// Boxes is the final, suppressed box set in extraction order.
	Boxes []common.Box
	// Candidates is the number of non-degenerate boxes before suppression.
	Candidates int
}

// Detector runs the detection pipeline with a fixed, validated configuration.
type Detector struct {
	config    Config
	extractor Extractor
}

// NewDetector validates cfg and builds the matching extractor.
//
// Arguments:
//   - cfg: Detection parameters.
//
// Returns:
//   - *Detector: The ready-to-use detector.
//   - error: An error wrapping common.ErrPrecondition if cfg is invalid.
//
// @example
// cfg := motion.DefaultConfig()
// cfg.Strategy = motion.StrategyContours
// detector, err := motion.NewDetector(cfg)
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	return &Detector{config: cfg, extractor: extractor}, nil
}

// Config returns the configuration the detector was built with.
func (d *Detector) Config() Config {
	return d.config
}

// Detect returns the motion boxes between prev and curr.
//
// Returns:
//   - []common.Box: The suppressed boxes; empty when nothing moved.
//   - error: An error wrapping common.ErrPrecondition if the frames differ in size.
func (d *Detector) Detect(prev, curr *image.Gray) ([]common.Box, error) {
	result, err := d.Run(prev, curr)
	if err != nil {
		return nil, err
	}
	return result.Boxes, nil
}

// Run is Detect with the candidate count reported alongside the boxes.
func (d *Detector) Run(prev, curr *image.Gray) (Result, error) {
	mask, err := images.Diff(prev, curr, uint8(d.config.MaskThreshold))
	if err != nil {
		return Result{}, err
	}

	candidates, err := d.extractor.Extract(mask)
	if err != nil {
		return Result{}, err
	}
	candidates = postprocess.FilterDegenerate(candidates)

	return Result{
		Boxes:      postprocess.Suppress(candidates, d.config.IoUThreshold),
		Candidates: len(candidates),
	}, nil
}

// Detect runs a single detection with cfg. It is equivalent to building a
// Detector and calling its Detect method.
//
// Arguments:
//   - prev: The previous grayscale frame.
//   - curr: The current grayscale frame, same size as prev.
//   - cfg: Detection parameters.
//
// Returns:
//   - []common.Box: The final box set.
//   - error: An error wrapping common.ErrPrecondition for invalid input.
func Detect(prev, curr *image.Gray, cfg Config) ([]common.Box, error) {
	detector, err := NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	return detector.Detect(prev, curr)
}
