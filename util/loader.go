package util

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SupportedImageExtensions lists the still-frame extensions that can be loaded.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// frameNumber matches the trailing digits of a file name such as frame_0042.
var frameNumber = regexp.MustCompile(`(\d+)$`)

// ImageFile represents a numbered frame file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file, filled by Read.
	Data []byte
	// Frame is the frame number parsed from the file name.
	Frame int
}

// Read loads the file contents into Data.
func (f *ImageFile) Read() error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return errors.Wrapf(err, "read frame %d", f.Frame)
	}
	f.Data = data
	return nil
}

// ListDirectoryImageFiles lists the numbered image files of a directory,
// ordered by frame number. File contents are not read.
//
// Arguments:
// - dir: Directory path containing image files named like frame_0001.jpg.
//
// Returns:
// - []ImageFile: One entry per image file, Data left empty.
// - error: Error if the directory cannot be read or a file name carries no frame number.
func ListDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list frames in %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}

		name := entry.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		match := frameNumber.FindString(stem)
		if match == "" {
			return nil, errors.Errorf("file %s has no frame number", name)
		}
		frame, err := strconv.Atoi(match)
		if err != nil {
			return nil, errors.Wrapf(err, "parse frame number of %s", name)
		}

		files = append(files, ImageFile{
			Path:  filepath.Join(dir, name),
			Frame: frame,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Frame < files[j].Frame
	})

	return files, nil
}

// IsImageFile reports whether the name has a supported image extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedImageExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
