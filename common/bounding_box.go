// Package common - Shared value types for motion regions.
package common

import (
	"fmt"
	"image"
)

// Box represents an axis-aligned region of change in pixel coordinates.
//
// X and Y are the top-left corner. Area is not always Width*Height: the
// component extractor stores the true number of changed pixels, the contour
// extractor stores the rectangle area.
type Box struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	Area   int `json:"area" yaml:"area"`
}

// NewBox creates a box whose area is the rectangle area.
func NewBox(x, y, width, height int) Box {
	return Box{X: x, Y: y, Width: width, Height: height, Area: width * height}
}

func (b Box) String() string {
	return fmt.Sprintf("Box (%d, %d) %dx%d area=%d", b.X, b.Y, b.Width, b.Height, b.Area)
}

// Right returns the exclusive right edge.
func (b Box) Right() int {
	return b.X + b.Width
}

// Bottom returns the exclusive bottom edge.
func (b Box) Bottom() int {
	return b.Y + b.Height
}

// Degenerate reports whether the box has no extent on either axis.
func (b Box) Degenerate() bool {
	return b.Width <= 0 || b.Height <= 0
}

// ToRect converts the box to an image.Rectangle.
//
// Returns:
// - An image.Rectangle with Min at the top-left corner and an exclusive Max.
//
// @example
// box := Box{X: 10, Y: 20, Width: 30, Height: 40}
// rect := box.ToRect() // (10,20)-(40,60)
func (b Box) ToRect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.Right(), b.Bottom())
}

// Intersection calculates the overlapping area of the two box rectangles.
//
// Arguments:
// - other: The other box to calculate intersection with.
//
// Returns:
// - The area of intersection in pixels, zero when the boxes only touch or are apart.
//
// @example
// a := Box{X: 0, Y: 0, Width: 10, Height: 10}
// b := Box{X: 5, Y: 5, Width: 10, Height: 10}
// area := a.Intersection(b) // Returns 25 (5x5 overlap)
func (b Box) Intersection(other Box) int {
	overlapW := max(0, min(b.Right(), other.Right())-max(b.X, other.X))
	overlapH := max(0, min(b.Bottom(), other.Bottom())-max(b.Y, other.Y))
	return overlapW * overlapH
}

// Union calculates the union of the two boxes from their Area fields.
//
// The stored areas are used instead of Width*Height so that component boxes
// are compared by their real pixel counts.
//
// @example
// a := Box{X: 0, Y: 0, Width: 10, Height: 10, Area: 100}
// b := Box{X: 5, Y: 5, Width: 10, Height: 10, Area: 100}
// area := a.Union(b) // Returns 175
func (b Box) Union(other Box) int {
	return b.Area + other.Area - b.Intersection(other)
}

// IoU calculates the Intersection over Union between two boxes.
//
// A non-positive union yields 0 rather than a division by zero.
//
// Arguments:
// - other: The other box to calculate IoU with.
//
// Returns:
// - The IoU value, 0 for boxes with no spatial overlap.
//
// @example
// a := Box{X: 0, Y: 0, Width: 10, Height: 10, Area: 100}
// b := Box{X: 5, Y: 5, Width: 10, Height: 10, Area: 100}
// iou := a.IoU(b) // Returns ~0.143 (25/175)
func (b Box) IoU(other Box) float32 {
	intersection := b.Intersection(other)
	if intersection == 0 {
		return 0
	}
	union := b.Area + other.Area - intersection
	if union <= 0 {
		return 0
	}
	return float32(intersection) / float32(union)
}
