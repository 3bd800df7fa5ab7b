package images

import "strings"

// ImageFormat represents the supported formats for persisted frames.
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// ParseImageFormat maps a format name or file extension ("jpg", ".png") to an
// ImageFormat. The boolean is false for unsupported formats.
func ParseImageFormat(s string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	}
	return "", false
}

// Extension returns the file extension, including the dot, used when
// writing frames in this format.
func (f ImageFormat) Extension() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}
