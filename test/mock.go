// Package test - Deterministic frame generators and end-to-end checks for the
// motion pipeline.
package test

import (
	"image"
	"math/rand"
)

// MockFrameGenerator creates deterministic grayscale test frames.
//
// @example
// gen := NewMockFrameGenerator(640, 480)
// prev := gen.GenerateStaticFrame()
// curr := gen.GenerateMotionFrame(100, 100, 50)
type MockFrameGenerator struct {
	width      int
	height     int
	background uint8
	seed       int64
}

// NewMockFrameGenerator creates a new frame generator with specified dimensions.
//
// Arguments:
// - width: Frame width in pixels.
// - height: Frame height in pixels.
//
// Returns:
// - A configured MockFrameGenerator instance with a mid-gray background.
func NewMockFrameGenerator(width, height int) *MockFrameGenerator {
	return &MockFrameGenerator{
		width:      width,
		height:     height,
		background: 128,
		seed:       42, // Deterministic seed for reproducibility.
	}
}

// Bounds returns the rectangle covered by generated frames.
func (g *MockFrameGenerator) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}

// GenerateStaticFrame creates a uniform background frame.
func (g *MockFrameGenerator) GenerateStaticFrame() *image.Gray {
	frame := image.NewGray(g.Bounds())
	for i := range frame.Pix {
		frame.Pix[i] = g.background
	}
	return frame
}

// GenerateMotionFrame creates a frame with a bright square at (x, y).
//
// Arguments:
// - x: X coordinate of motion region.
// - y: Y coordinate of motion region.
// - size: Side of the square in pixels.
func (g *MockFrameGenerator) GenerateMotionFrame(x, y, size int) *image.Gray {
	return g.GenerateRegionsFrame(image.Rect(x, y, x+size, y+size))
}

// GenerateRegionsFrame creates a frame where every given rectangle is filled
// with white over the background.
func (g *MockFrameGenerator) GenerateRegionsFrame(regions ...image.Rectangle) *image.Gray {
	frame := g.GenerateStaticFrame()
	for _, r := range regions {
		r = r.Intersect(frame.Rect)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				frame.Pix[frame.PixOffset(x, y)] = 255
			}
		}
	}
	return frame
}

// GenerateNoisyFrame returns a copy of base with every pixel jittered by at
// most amplitude intensity levels. The jitter sequence depends only on the
// generator's seed.
func (g *MockFrameGenerator) GenerateNoisyFrame(base *image.Gray, amplitude int) *image.Gray {
	rng := rand.New(rand.NewSource(g.seed))
	frame := image.NewGray(base.Rect)
	for i, v := range base.Pix {
		n := int(v) + rng.Intn(2*amplitude+1) - amplitude
		frame.Pix[i] = uint8(max(0, min(255, n)))
	}
	return frame
}
