// Package images - Frame differencing and binary mask utilities.
//
// Frames are single-channel *image.Gray values that have already been
// converted to grayscale and blurred by the caller. The pixel work runs in
// OpenCV through gocv; Mats are created and closed within each call, so the
// API only exchanges *image.Gray frames and *Mask values.
package images

import (
	"image"
	"image/draw"

	"github.com/nvr-ai/go-motion/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Mask is a binary image where true marks a changed pixel.
//
// Pix is stored row-major with a stride equal to Width.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether the pixel at (x, y) is set. Coordinates outside the mask
// read as false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks or clears the pixel at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Diff computes the absolute difference of two grayscale frames and
// binarizes it: a pixel is set when |curr - prev| > threshold.
//
// Arguments:
//   - prev: The earlier frame.
//   - curr: The current frame, same size as prev.
//   - threshold: Differences strictly above this value mark a change.
//
// Returns:
//   - *Mask: A fresh mask with the frames' dimensions.
//   - error: common.ErrPrecondition when a frame is nil or the sizes differ.
func Diff(prev, curr *image.Gray, threshold uint8) (*Mask, error) {
	if prev == nil || curr == nil {
		return nil, errors.Wrap(common.ErrPrecondition, "frame is nil")
	}

	pb, cb := prev.Bounds(), curr.Bounds()
	if pb.Dx() != cb.Dx() || pb.Dy() != cb.Dy() {
		return nil, errors.Wrapf(common.ErrPrecondition,
			"frame size mismatch: %dx%d vs %dx%d", pb.Dx(), pb.Dy(), cb.Dx(), cb.Dy())
	}

	width, height := cb.Dx(), cb.Dy()
	if width == 0 || height == 0 {
		return NewMask(width, height), nil
	}

	prevMat, err := grayMat(prev)
	if err != nil {
		return nil, errors.Wrap(err, "convert previous frame")
	}
	defer prevMat.Close()

	currMat, err := grayMat(curr)
	if err != nil {
		return nil, errors.Wrap(err, "convert current frame")
	}
	defer currMat.Close()

	delta := gocv.NewMat()
	defer delta.Close()
	gocv.AbsDiff(currMat, prevMat, &delta)

	// THRESH_BINARY sets pixels strictly above the threshold.
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(delta, &binary, float32(threshold), 255, gocv.ThresholdBinary)

	return maskFromMat(binary), nil
}

// grayMat copies a frame into a single-channel Mat. Sub-images are compacted
// first so the Mat starts at the frame's top-left pixel.
func grayMat(img *image.Gray) (gocv.Mat, error) {
	b := img.Bounds()
	if b.Min != (image.Point{}) || img.Stride != b.Dx() || len(img.Pix) != b.Dx()*b.Dy() {
		compact := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(compact, compact.Bounds(), img, b.Min, draw.Src)
		img = compact
	}
	return gocv.ImageGrayToMatGray(img)
}

// toMat copies the mask into an 8-bit Mat with set pixels at 255.
func (m *Mask) toMat() (gocv.Mat, error) {
	buf := make([]byte, len(m.Pix))
	for i, v := range m.Pix {
		if v {
			buf[i] = 255
		}
	}
	return gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, buf)
}

// maskFromMat reads an 8-bit single-channel Mat; non-zero pixels are set.
func maskFromMat(mat gocv.Mat) *Mask {
	mask := NewMask(mat.Cols(), mat.Rows())
	for i, v := range mat.ToBytes() {
		mask.Pix[i] = v != 0
	}
	return mask
}
