package images

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Component is a maximal 8-connected group of set mask pixels.
type Component struct {
	// Label is the 1-based label assigned in raster order of the group's
	// first pixel. Label 0 is the background and is never reported.
	Label int
	// Bounds is the bounding rectangle of the group's pixels (Max exclusive).
	Bounds image.Rectangle
	// Area is the number of pixels in the group.
	Area int
}

// LabelComponents assigns a label to every set pixel of the mask so that two
// pixels share a label exactly when they are 8-connected.
//
// Arguments:
//   - mask: The binary mask to label.
//
// Returns:
//   - []int32: Per-pixel labels, row-major with stride mask.Width; 0 is background.
//   - []Component: One entry per label, ordered by label.
//   - error: If the mask cannot be handed to OpenCV.
func LabelComponents(mask *Mask) ([]int32, []Component, error) {
	labels := make([]int32, len(mask.Pix))
	components := make([]Component, 0)
	if mask.Width == 0 || mask.Height == 0 {
		return labels, components, nil
	}

	src, err := mask.toMat()
	if err != nil {
		return nil, nil, errors.Wrap(err, "convert mask")
	}
	defer src.Close()

	cvLabels := gocv.NewMat()
	defer cvLabels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	// 8-connectivity, CV_32S labels.
	gocv.ConnectedComponentsWithStats(src, &cvLabels, &stats, &centroids)

	raw, err := cvLabels.DataPtrInt32()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read component labels")
	}

	// OpenCV numbers labels in scan-block order; renumber by first pixel.
	remap := make([]int32, stats.Rows())
	for i, l := range raw {
		if l == 0 {
			continue
		}
		if remap[l] == 0 {
			row := int(l)
			left := int(stats.GetIntAt(row, int(gocv.CC_STAT_LEFT)))
			top := int(stats.GetIntAt(row, int(gocv.CC_STAT_TOP)))
			width := int(stats.GetIntAt(row, int(gocv.CC_STAT_WIDTH)))
			height := int(stats.GetIntAt(row, int(gocv.CC_STAT_HEIGHT)))

			remap[l] = int32(len(components) + 1)
			components = append(components, Component{
				Label:  len(components) + 1,
				Bounds: image.Rect(left, top, left+width, top+height),
				Area:   int(stats.GetIntAt(row, int(gocv.CC_STAT_AREA))),
			})
		}
		labels[i] = remap[l]
	}

	return labels, components, nil
}

// ConnectedComponents returns the 8-connected groups of set pixels in the
// mask, ordered by the raster position of each group's first pixel.
func ConnectedComponents(mask *Mask) ([]Component, error) {
	_, components, err := LabelComponents(mask)
	return components, err
}
