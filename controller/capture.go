package controller

import (
	"image"
	"image/color"
	"io"
	"time"

	"github.com/nvr-ai/go-motion/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// CaptureSource reads frames from a video file or a capture device.
type CaptureSource struct {
	capture  *gocv.VideoCapture
	name     string
	blurSize int
	next     int
}

// OpenVideo opens a video file.
//
// Arguments:
//   - path: The video file path.
//   - blurSize: The odd side of the Gaussian kernel applied to each gray frame.
//
// Returns:
//   - *CaptureSource: The opened source.
//   - error: An error if the file cannot be opened.
func OpenVideo(path string, blurSize int) (*CaptureSource, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open video %s", path)
	}
	return &CaptureSource{capture: capture, name: path, blurSize: blurSize}, nil
}

// OpenDevice opens a capture device such as a webcam.
func OpenDevice(id int, blurSize int) (*CaptureSource, error) {
	capture, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, errors.Wrapf(err, "open capture device %d", id)
	}
	return &CaptureSource{capture: capture, name: "device", blurSize: blurSize}, nil
}

// Read grabs the next frame, keeps the color image as the canvas and
// produces a blurred grayscale copy for detection.
func (s *CaptureSource) Read() (Frame, error) {
	img := gocv.NewMat()
	if ok := s.capture.Read(&img); !ok || img.Empty() {
		img.Close()
		return Frame{}, io.EOF
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	if s.blurSize > 1 {
		gocv.GaussianBlur(gray, &gray, image.Pt(s.blurSize, s.blurSize), 0, 0, gocv.BorderDefault)
	}

	out, err := gray.ToImage()
	if err != nil {
		img.Close()
		return Frame{}, errors.Wrapf(err, "convert frame %d from %s", s.next, s.name)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		img.Close()
		return Frame{}, errors.Errorf("frame %d from %s: unexpected image type %T", s.next, s.name, out)
	}

	frame := Frame{
		ID:        s.next,
		Timestamp: time.Now(),
		Gray:      g,
		Canvas:    &matCanvas{mat: img},
	}
	s.next++
	return frame, nil
}

// Close releases the capture.
func (s *CaptureSource) Close() error {
	return s.capture.Close()
}

// matCanvas draws on the captured BGR Mat.
type matCanvas struct {
	mat gocv.Mat
}

func (c *matCanvas) DrawBoxes(boxes []common.Box, col color.RGBA, thickness int) {
	for _, b := range boxes {
		gocv.Rectangle(&c.mat, b.ToRect(), col, thickness)
	}
}

func (c *matCanvas) DrawText(text string, pt image.Point, col color.RGBA) {
	gocv.PutText(&c.mat, text, pt, gocv.FontHersheyPlain, 1.2, col, 2)
}

func (c *matCanvas) Save(path string) error {
	if ok := gocv.IMWrite(path, c.mat); !ok {
		return errors.Errorf("write %s", path)
	}
	return nil
}

func (c *matCanvas) Show(window *gocv.Window, delayMs int) error {
	window.IMShow(c.mat)
	window.WaitKey(delayMs)
	return nil
}

func (c *matCanvas) Close() error {
	return c.mat.Close()
}
