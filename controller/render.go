package controller

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// Color is the box outline color.
	Color color.RGBA
	// Thickness is the outline width in pixels.
	Thickness int
	// Window shows each frame in an on-screen window.
	Window bool
	// Title is the window title.
	Title string
	// DelayMs is how long the window waits after each frame.
	DelayMs int
	// Persist writes each frame to Dir.
	Persist bool
	// Dir receives frame_0000.<ext>, frame_0001.<ext>, ...
	Dir string
	// Format selects the file type of persisted frames.
	Format images.ImageFormat
	// Overlay writes the frame id and box count in the top-left corner.
	Overlay bool
}

// Renderer is the Sink that draws boxes on each frame, then displays and
// saves it as configured.
type Renderer struct {
	opts   RendererOptions
	window *gocv.Window
	count  int
}

// NewRenderer creates the output directory and window as needed.
func NewRenderer(opts RendererOptions) (*Renderer, error) {
	if opts.Thickness < 1 {
		opts.Thickness = 2
	}
	if opts.Format == "" {
		opts.Format = images.FormatJPEG
	}
	if opts.Persist {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create output directory %s", opts.Dir)
		}
	}

	r := &Renderer{opts: opts}
	if opts.Window {
		r.window = gocv.NewWindow(opts.Title)
	}
	return r, nil
}

// Render implements Sink.
func (r *Renderer) Render(frame Frame, boxes []common.Box) error {
	if frame.Canvas == nil {
		return errors.Wrapf(common.ErrPrecondition, "frame %d has no canvas", frame.ID)
	}

	frame.Canvas.DrawBoxes(boxes, r.opts.Color, r.opts.Thickness)
	if r.opts.Overlay {
		frame.Canvas.DrawText(fmt.Sprintf("frame %d | motion boxes: %d", frame.ID, len(boxes)), image.Pt(10, 20), r.opts.Color)
	}

	if r.window != nil {
		if err := frame.Canvas.Show(r.window, r.opts.DelayMs); err != nil {
			return err
		}
	}

	if r.opts.Persist {
		if err := frame.Canvas.Save(r.Path(r.count)); err != nil {
			return err
		}
	}
	r.count++
	return nil
}

// Path returns the file a rendered frame with the given sequence number is
// persisted to.
func (r *Renderer) Path(n int) string {
	return filepath.Join(r.opts.Dir, fmt.Sprintf("frame_%04d%s", n, r.opts.Format.Extension()))
}

// Rendered returns the number of frames rendered so far.
func (r *Renderer) Rendered() int {
	return r.count
}

// Close closes the window, if any.
func (r *Renderer) Close() error {
	if r.window == nil {
		return nil
	}
	return r.window.Close()
}
