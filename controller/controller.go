// Package controller - This file contains the frame loop that feeds consecutive frames to the motion detector.
package controller

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/nvr-ai/go-motion/metrics"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/profiler"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Frame is a single frame of video.
type Frame struct {
	ID        int
	Timestamp time.Time
	// Gray is the preprocessed frame the detector works on.
	Gray *image.Gray
	// Canvas is the color frame boxes are drawn on. It may be nil.
	Canvas Canvas
}

// Canvas is a drawable color copy of a frame.
type Canvas interface {
	DrawBoxes(boxes []common.Box, c color.RGBA, thickness int)
	// DrawText writes a line of text with its baseline starting at pt.
	DrawText(text string, pt image.Point, c color.RGBA)
	Save(path string) error
	Show(window *gocv.Window, delayMs int) error
	Close() error
}

// Source produces frames in order. Read returns io.EOF at the end of the stream.
type Source interface {
	Read() (Frame, error)
	Close() error
}

// Sink consumes a frame together with the boxes found in it.
type Sink interface {
	Render(frame Frame, boxes []common.Box) error
	Close() error
}

// Option configures a Controller.
type Option func(*Controller)

// WithMetrics records frame and box counters in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithProfiler times each stage of the loop with p.
func WithProfiler(p *profiler.Profiler) Option {
	return func(c *Controller) { c.profiler = p }
}

// Controller runs the detector over every pair of consecutive frames of a
// source and hands each current frame and its boxes to a sink.
type Controller struct {
	source Source
	sink   Sink

	mu       sync.RWMutex
	detector *motion.Detector

	metrics  *metrics.Metrics
	profiler *profiler.Profiler

	lastBoxes      atomic.Int64
	lastCandidates atomic.Int64
}

// New creates a Controller.
//
// Arguments:
//   - source: Where frames come from.
//   - sink: Where annotated frames go.
//   - cfg: The initial detection configuration.
//   - opts: Optional metrics and profiler.
//
// Returns:
//   - *Controller: The controller, ready to Run.
//   - error: An error wrapping common.ErrPrecondition if cfg is invalid.
func New(source Source, sink Sink, cfg motion.Config, opts ...Option) (*Controller, error) {
	detector, err := motion.NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		source:   source,
		sink:     sink,
		detector: detector,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the detection configuration currently in effect.
func (c *Controller) Config() motion.Config {
	return c.current().Config()
}

// UpdateConfig swaps in a detector built from cfg. It takes effect from the
// next frame pair. An invalid cfg is rejected and the current one is kept.
func (c *Controller) UpdateConfig(cfg motion.Config) error {
	detector, err := motion.NewDetector(cfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.detector = detector
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Reloads.Add(1)
	}
	logger.Info("controller", "detection config updated: strategy=%s threshold=%d iou=%.2f",
		cfg.Strategy, cfg.MaskThreshold, cfg.IoUThreshold)
	return nil
}

func (c *Controller) current() *motion.Detector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detector
}

// Run reads frames until the source is exhausted or ctx is cancelled. The
// first frame only primes the loop, so N frames yield N-1 renders.
//
// Returns:
//   - error: nil at end of stream or on cancellation, otherwise the first
//     read, detection or render error, annotated with the frame id.
func (c *Controller) Run(ctx context.Context) error {
	var prev *Frame
	defer func() {
		if prev != nil {
			release(*prev)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("controller", "stopping: %v", ctx.Err())
			return nil
		default:
		}

		done := c.startOperation("read")
		frame, err := c.source.Read()
		done()
		if errors.Is(err, io.EOF) {
			logger.Info("controller", "end of stream")
			return nil
		}
		if err != nil {
			c.count(func(m *metrics.Metrics) { m.ReadErrors.Add(1) })
			return errors.Wrap(err, "read frame")
		}
		c.count(func(m *metrics.Metrics) { m.FramesRead.Add(1) })

		if prev == nil {
			prev = &frame
			continue
		}

		if err := c.process(*prev, frame); err != nil {
			release(frame)
			return err
		}

		release(*prev)
		prev = &frame
	}
}

func (c *Controller) process(prev, curr Frame) error {
	detector := c.current()

	done := c.startOperation("detect")
	start := time.Now()
	result, err := detector.Run(prev.Gray, curr.Gray)
	elapsed := time.Since(start)
	done()
	if err != nil {
		c.count(func(m *metrics.Metrics) { m.DetectErrors.Add(1) })
		return errors.Wrapf(err, "detect frame %d", curr.ID)
	}

	c.lastBoxes.Store(int64(len(result.Boxes)))
	c.lastCandidates.Store(int64(result.Candidates))
	c.count(func(m *metrics.Metrics) { m.ObserveDetection(elapsed, result.Candidates, len(result.Boxes)) })
	logger.Debug("controller", "frame %d: %d boxes from %d candidates in %v",
		curr.ID, len(result.Boxes), result.Candidates, elapsed)

	done = c.startOperation("render")
	err = c.sink.Render(curr, result.Boxes)
	done()
	if err != nil {
		c.count(func(m *metrics.Metrics) { m.RenderErrors.Add(1) })
		return errors.Wrapf(err, "render frame %d", curr.ID)
	}
	c.count(func(m *metrics.Metrics) { m.FramesRendered.Add(1) })
	return nil
}

// CollectMetrics reports the outcome of the most recent frame pair.
func (c *Controller) CollectMetrics() map[string]float64 {
	return map[string]float64{
		"boxes":      float64(c.lastBoxes.Load()),
		"candidates": float64(c.lastCandidates.Load()),
	}
}

func (c *Controller) startOperation(name string) func() {
	if c.profiler == nil {
		return func() {}
	}
	return c.profiler.StartOperation(name)
}

func (c *Controller) count(fn func(*metrics.Metrics)) {
	if c.metrics != nil {
		fn(c.metrics)
	}
}

func release(f Frame) {
	if f.Canvas == nil {
		return
	}
	if err := f.Canvas.Close(); err != nil {
		logger.Warn("controller", "release frame %d: %v", f.ID, err)
	}
}
