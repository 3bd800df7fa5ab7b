package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// ComputeChecksum generates a deterministic checksum of a grayscale frame's
// visible pixels. It is used to verify that detection never mutates its
// inputs.
//
// Arguments:
// - frame: The frame to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a nil or empty frame.
//
// Example:
//
// ```go
//
//	before := ComputeChecksum(frame)
//	_, _ = motion.Detect(prev, frame, cfg)
//	fmt.Println(before == ComputeChecksum(frame)) // true
//
// ```
func ComputeChecksum(frame *image.Gray) string {
	if frame == nil || frame.Bounds().Empty() {
		return "empty"
	}

	b := frame.Bounds()
	hash := md5.New()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := frame.PixOffset(b.Min.X, y)
		hash.Write(frame.Pix[off : off+b.Dx()])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
