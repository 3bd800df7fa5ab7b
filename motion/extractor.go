package motion

import (
	"image"

	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
)

// Extractor converts a change mask into candidate boxes.
//
// Implementations return an empty, non-nil slice when the mask has no set
// pixels. They never modify the mask.
type Extractor interface {
	Extract(mask *images.Mask) ([]common.Box, error)
}

// NewExtractor returns the extractor selected by cfg.Strategy.
//
// Arguments:
//   - cfg: The detection configuration. Only the strategy and its size
//     parameter are read.
//
// Returns:
//   - Extractor: A ComponentExtractor or a ContourExtractor.
//   - error: common.ErrPrecondition for an unknown strategy.
func NewExtractor(cfg Config) (Extractor, error) {
	switch cfg.Strategy {
	case StrategyComponents:
		return ComponentExtractor{DilationSize: cfg.DilationSize}, nil
	case StrategyContours:
		return ContourExtractor{Padding: cfg.Padding}, nil
	}
	return nil, errors.Wrapf(common.ErrPrecondition, "unknown strategy %q", cfg.Strategy)
}

// ComponentExtractor dilates the mask with a square kernel and emits one box
// per 8-connected component. Box.Area is the component's pixel count.
type ComponentExtractor struct {
	DilationSize int
}

// Extract implements Extractor.
func (e ComponentExtractor) Extract(mask *images.Mask) ([]common.Box, error) {
	dilated, err := images.Dilate(mask, e.DilationSize)
	if err != nil {
		return nil, err
	}

	components, err := images.ConnectedComponents(dilated)
	if err != nil {
		return nil, err
	}
	boxes := make([]common.Box, 0, len(components))
	for _, c := range components {
		boxes = append(boxes, common.Box{
			X:      c.Bounds.Min.X,
			Y:      c.Bounds.Min.Y,
			Width:  c.Bounds.Dx(),
			Height: c.Bounds.Dy(),
			Area:   c.Area,
		})
	}
	return boxes, nil
}

// ContourExtractor boxes each external contour of the mask and grows the box
// by Padding on every side. Padded boxes are clipped to the frame before Area
// is computed, so Box.Area is Width*Height of the clipped rectangle.
type ContourExtractor struct {
	Padding int
}

// Extract implements Extractor.
func (e ContourExtractor) Extract(mask *images.Mask) ([]common.Box, error) {
	if e.Padding < 0 {
		return nil, errors.Wrapf(common.ErrPrecondition, "padding %d must not be negative", e.Padding)
	}

	frame := image.Rect(0, 0, mask.Width, mask.Height)
	contours, err := images.FindExternalContours(mask)
	if err != nil {
		return nil, err
	}
	boxes := make([]common.Box, 0, len(contours))
	for _, contour := range contours {
		r := contour.BoundingRect().Inset(-e.Padding).Intersect(frame)
		boxes = append(boxes, common.NewBox(r.Min.X, r.Min.Y, r.Dx(), r.Dy()))
	}
	return boxes, nil
}
