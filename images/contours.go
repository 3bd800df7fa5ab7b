package images

import (
	"image"
	"slices"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Contour is the outer boundary of a connected region, in tracing order.
// Regions one pixel wide visit some boundary points twice.
type Contour []image.Point

// BoundingRect returns the smallest rectangle (Max exclusive) containing all
// contour points. An empty contour yields the zero rectangle.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	points := gocv.NewPointVectorFromPoints(c)
	defer points.Close()
	return gocv.BoundingRect(points)
}

// FindExternalContours returns the external boundaries of the 8-connected
// regions of a mask.
//
// The area outside the mask counts as background. A region lying inside a
// hole of another region has no external boundary and is not reported.
//
// Arguments:
//   - mask: The binary mask to analyse. It is not modified.
//
// Returns:
//   - []Contour: One contour per external region, ordered by the raster
//     position of the region's first pixel. Empty for an empty mask.
//   - error: If the mask cannot be handed to OpenCV.
func FindExternalContours(mask *Mask) ([]Contour, error) {
	contours := make([]Contour, 0)
	if mask.Width == 0 || mask.Height == 0 {
		return contours, nil
	}

	src, err := mask.toMat()
	if err != nil {
		return nil, errors.Wrap(err, "convert mask")
	}
	defer src.Close()

	found := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer found.Close()

	type traced struct {
		first   image.Point
		contour Contour
	}
	all := make([]traced, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		points := found.At(i).ToPoints()
		if len(points) == 0 {
			continue
		}
		all = append(all, traced{first: rasterFirst(points), contour: points})
	}

	slices.SortFunc(all, func(a, b traced) int {
		if a.first.Y != b.first.Y {
			return a.first.Y - b.first.Y
		}
		return a.first.X - b.first.X
	})
	for _, t := range all {
		contours = append(contours, t.contour)
	}
	return contours, nil
}

// rasterFirst returns the top-most, then left-most point.
func rasterFirst(points []image.Point) image.Point {
	first := points[0]
	for _, p := range points[1:] {
		if p.Y < first.Y || (p.Y == first.Y && p.X < first.X) {
			first = p
		}
	}
	return first
}
