package images

import (
	"image"

	"github.com/nvr-ai/go-motion/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Dilate expands the set pixels of a mask with a size×size rectangular
// structuring element anchored at its centre (size/2). Samples outside the
// mask are treated as unset, so dilation never grows from the border.
//
// Arguments:
//   - mask: The source mask. It is not modified.
//   - size: Kernel width and height in pixels, at least 1.
//
// Returns:
//   - *Mask: A new dilated mask.
//   - error: common.ErrPrecondition when size < 1.
//
// @example
// dilated, err := Dilate(mask, 7)
func Dilate(mask *Mask, size int) (*Mask, error) {
	if size < 1 {
		return nil, errors.Wrapf(common.ErrPrecondition, "dilation kernel size %d must be at least 1", size)
	}
	if mask.Width == 0 || mask.Height == 0 {
		return NewMask(mask.Width, mask.Height), nil
	}

	src, err := mask.toMat()
	if err != nil {
		return nil, errors.Wrap(err, "convert mask")
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	if err := gocv.Dilate(src, &dilated, kernel); err != nil {
		return nil, errors.Wrap(err, "dilate mask")
	}

	return maskFromMat(dilated), nil
}
