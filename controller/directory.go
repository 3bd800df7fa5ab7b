package controller

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"io"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/util"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DirectorySource reads numbered still frames, such as frame_0001.png, from a
// directory in frame-number order.
type DirectorySource struct {
	files       []util.ImageFile
	blurSize    int
	resizeWidth int
	next        int
}

// OpenDirectory lists the frames of dir.
//
// Arguments:
//   - dir: The directory holding the frames.
//   - blurSize: The odd side of the Gaussian kernel applied to each gray frame.
//   - resizeWidth: When positive, wider frames are downscaled to this width.
//
// Returns:
//   - *DirectorySource: The source positioned at the first frame.
//   - error: An error if the directory cannot be listed.
func OpenDirectory(dir string, blurSize, resizeWidth int) (*DirectorySource, error) {
	files, err := util.ListDirectoryImageFiles(dir)
	if err != nil {
		return nil, err
	}
	return &DirectorySource{files: files, blurSize: blurSize, resizeWidth: resizeWidth}, nil
}

// Len returns the number of frames in the directory.
func (s *DirectorySource) Len() int {
	return len(s.files)
}

// Read decodes the next frame.
func (s *DirectorySource) Read() (Frame, error) {
	if s.next >= len(s.files) {
		return Frame{}, io.EOF
	}
	file := s.files[s.next]
	s.next++

	if err := file.Read(); err != nil {
		return Frame{}, err
	}
	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return Frame{}, errors.Wrapf(err, "decode %s", file.Path)
	}
	if s.resizeWidth > 0 && img.Bounds().Dx() > s.resizeWidth {
		img = resize.Resize(uint(s.resizeWidth), 0, img, resize.Lanczos3)
	}

	return Frame{
		ID:        file.Frame,
		Timestamp: time.Now(),
		Gray:      Preprocess(img, s.blurSize),
		Canvas:    &imageCanvas{img: imaging.Clone(img)},
	}, nil
}

// Close implements Source.
func (s *DirectorySource) Close() error {
	return nil
}

// Preprocess converts img to grayscale and applies a Gaussian blur with a
// kernel of blurSize pixels. The result starts at the origin.
func Preprocess(img image.Image, blurSize int) *image.Gray {
	rgba := effect.Grayscale(img)
	if blurSize > 1 {
		rgba = blur.Gaussian(rgba, gaussianRadius(blurSize))
	}

	b := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), rgba, b.Min, draw.Src)
	return gray
}

// gaussianRadius maps a kernel size to the blur radius, using the standard
// deviation OpenCV derives for that size.
func gaussianRadius(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// imageCanvas draws on an in-memory NRGBA image.
type imageCanvas struct {
	img *image.NRGBA
}

func (c *imageCanvas) DrawBoxes(boxes []common.Box, col color.RGBA, thickness int) {
	for _, b := range boxes {
		strokeRect(c.img, b.ToRect().Add(c.img.Bounds().Min), col, thickness)
	}
}

func (c *imageCanvas) DrawText(text string, pt image.Point, col color.RGBA) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(text)
}

func (c *imageCanvas) Save(path string) error {
	if err := imaging.Save(c.img, path); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func (c *imageCanvas) Show(window *gocv.Window, delayMs int) error {
	mat, err := gocv.ImageToMatRGB(c.img)
	if err != nil {
		return errors.Wrap(err, "convert canvas")
	}
	defer mat.Close()
	window.IMShow(mat)
	window.WaitKey(delayMs)
	return nil
}

func (c *imageCanvas) Close() error {
	return nil
}

// strokeRect draws the outline of r, thickness pixels wide and grown inwards,
// clipped to the image.
func strokeRect(img draw.Image, r image.Rectangle, col color.Color, thickness int) {
	src := image.NewUniform(col)
	t := min(thickness, (r.Dx()+1)/2, (r.Dy()+1)/2)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}
