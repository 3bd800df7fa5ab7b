package controller

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var green = color.RGBA{G: 255, A: 255}

func blankFrame(id int) Frame {
	return Frame{
		ID:     id,
		Gray:   image.NewGray(image.Rect(0, 0, 20, 20)),
		Canvas: &imageCanvas{img: imaging.New(20, 20, color.Black)},
	}
}

func TestRenderer_PersistsNumberedFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r, err := NewRenderer(RendererOptions{Color: green, Thickness: 2, Persist: true, Dir: dir, Format: images.FormatPNG})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Render(blankFrame(7), []common.Box{common.NewBox(2, 2, 10, 10)}))
	require.NoError(t, r.Render(blankFrame(8), nil))

	assert.Equal(t, filepath.Join(dir, "frame_0000.png"), r.Path(0))
	assert.Equal(t, 2, r.Rendered())

	img, err := imaging.Open(r.Path(0))
	require.NoError(t, err)
	nrgba := imaging.Clone(img)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, nrgba.NRGBAAt(2, 2))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, nrgba.NRGBAAt(11, 11))
	assert.Equal(t, color.NRGBA{A: 255}, nrgba.NRGBAAt(6, 6))
	assert.Equal(t, color.NRGBA{A: 255}, nrgba.NRGBAAt(12, 12))

	assert.FileExists(t, r.Path(1))
}

func TestRenderer_CountsWithoutPersisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "unused")
	r, err := NewRenderer(RendererOptions{Color: green, Dir: dir})
	require.NoError(t, err)

	require.NoError(t, r.Render(blankFrame(1), nil))
	assert.Equal(t, 1, r.Rendered())
	assert.NoDirExists(t, dir)
	assert.Equal(t, ".jpg", filepath.Ext(r.Path(0)))
}

func TestRenderer_RequiresCanvas(t *testing.T) {
	r, err := NewRenderer(RendererOptions{})
	require.NoError(t, err)

	err = r.Render(Frame{ID: 3}, nil)
	assert.ErrorIs(t, err, common.ErrPrecondition)
	assert.Equal(t, 0, r.Rendered())
}

func TestStrokeRect_ClipsAndHandlesTinyBoxes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	strokeRect(img, image.Rect(8, 8, 14, 14), green, 2)
	assert.Equal(t, uint8(255), img.NRGBAAt(9, 9).G)
	assert.Equal(t, uint8(255), img.NRGBAAt(8, 8).G)

	strokeRect(img, image.Rect(2, 2, 3, 3), green, 2)
	assert.Equal(t, uint8(255), img.NRGBAAt(2, 2).G)
	assert.Equal(t, uint8(0), img.NRGBAAt(3, 3).G)
}

func TestRenderer_Overlay(t *testing.T) {
	r, err := NewRenderer(RendererOptions{Color: green, Overlay: true})
	require.NoError(t, err)

	frame := Frame{ID: 1, Canvas: &imageCanvas{img: imaging.New(200, 40, color.Black)}}
	require.NoError(t, r.Render(frame, nil))

	img := frame.Canvas.(*imageCanvas).img
	lit := 0
	for y := 7; y < 24; y++ {
		for x := 10; x < 200; x++ {
			if img.NRGBAAt(x, y).G == 255 {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
	assert.Equal(t, uint8(0), img.NRGBAAt(5, 30).G)
}
