// Package postprocess - provides Non-Maximum Suppression for motion boxes.
package postprocess

import "github.com/nvr-ai/go-motion/common"

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold float32 // Overlap above which the smaller box is suppressed.
}

// Suppress is a shorthand for ApplyGreedyNMS with the given IoU threshold.
func Suppress(boxes []common.Box, threshold float32) []common.Box {
	return ApplyGreedyNMS(boxes, &NMSConfig{IoUThreshold: threshold})
}

// ApplyGreedyNMS performs pairwise greedy Non-Maximum Suppression where the
// larger Area wins each conflict.
//
// Boxes are visited in input order. Each surviving anchor i is compared with
// every surviving box j after it; when IoU(i, j) exceeds the threshold the box
// with the smaller Area is marked removed, and ties keep i. Once i is removed
// its scan stops and the next surviving box becomes the anchor. Removals are
// recorded as tombstones and the survivors are compacted at the end, so no
// index ever shifts during the scan.
//
// Arguments:
//   - boxes: Candidate boxes in extraction order. The slice is not modified.
//   - config: NMS configuration.
//
// Returns:
//   - A new slice holding the surviving boxes in their original order. Every
//     pair of survivors has IoU <= config.IoUThreshold.
func ApplyGreedyNMS(boxes []common.Box, config *NMSConfig) []common.Box {
	n := len(boxes)
	filtered := make([]common.Box, 0, n)
	if n < 2 {
		return append(filtered, boxes...)
	}

	removed := make([]bool, n)

	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}

		for j := i + 1; j < n; j++ {
			if removed[j] {
				continue
			}

			if boxes[i].IoU(boxes[j]) <= config.IoUThreshold {
				continue
			}

			if boxes[i].Area >= boxes[j].Area {
				removed[j] = true
				continue
			}

			removed[i] = true
			break
		}
	}

	for i, box := range boxes {
		if !removed[i] {
			filtered = append(filtered, box)
		}
	}

	return filtered
}

// FilterDegenerate drops boxes with zero (or negative) width or height.
//
// Returns:
//   - A new slice; the input is not modified.
func FilterDegenerate(boxes []common.Box) []common.Box {
	kept := make([]common.Box, 0, len(boxes))
	for _, box := range boxes {
		if !box.Degenerate() {
			kept = append(kept, box)
		}
	}
	return kept
}
