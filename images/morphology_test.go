package images

import (
	"image/color"
	"testing"

	"github.com/nvr-ai/go-motion/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func colorGray(v uint8) color.Gray {
	return color.Gray{Y: v}
}

// bounds returns the bounding rectangle of the set pixels as x0, y0, x1, y1 (inclusive).
func bounds(m *Mask) (int, int, int, int) {
	x0, y0, x1, y1 := m.Width, m.Height, -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) {
				x0, y0 = min(x0, x), min(y0, y)
				x1, y1 = max(x1, x), max(y1, y)
			}
		}
	}
	return x0, y0, x1, y1
}

func TestDilate_SinglePixel(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		expect [4]int
	}{
		{"Identity kernel", 1, [4]int{10, 10, 10, 10}},
		{"3x3 kernel", 3, [4]int{9, 9, 11, 11}},
		{"7x7 kernel", 7, [4]int{7, 7, 13, 13}},
		// Even kernels are anchored at size/2, so they grow further down/right.
		{"4x4 kernel", 4, [4]int{9, 9, 12, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := NewMask(21, 21)
			mask.Set(10, 10, true)

			out, err := Dilate(mask, tt.size)
			require.NoError(t, err)

			x0, y0, x1, y1 := bounds(out)
			assert.Equal(t, tt.expect, [4]int{x0, y0, x1, y1})

			side := tt.size
			assert.Equal(t, side*side, out.Count(), "dilated pixel must become a full square")
			assert.Equal(t, 1, mask.Count(), "source mask must not change")
		})
	}
}

func TestDilate_ClipsAtBorder(t *testing.T) {
	mask := NewMask(5, 5)
	mask.Set(0, 0, true)

	out, err := Dilate(mask, 7)
	require.NoError(t, err)

	// Offsets -3..3 around (0,0) clipped to the 5x5 frame.
	x0, y0, x1, y1 := bounds(out)
	assert.Equal(t, [4]int{0, 0, 3, 3}, [4]int{x0, y0, x1, y1})
	assert.Equal(t, 16, out.Count())
}

func TestDilate_MergesNearbyFragments(t *testing.T) {
	mask := NewMask(30, 10)
	mask.Set(5, 5, true)
	mask.Set(11, 5, true)

	out, err := Dilate(mask, 7)
	require.NoError(t, err)

	// Gap of 5 pixels is closed by two radius-3 expansions.
	for x := 5; x <= 11; x++ {
		assert.True(t, out.At(x, 5), "x=%d", x)
	}
}

func TestDilate_InvalidKernel(t *testing.T) {
	_, err := Dilate(NewMask(3, 3), 0)
	assert.ErrorIs(t, err, common.ErrPrecondition)
}

func TestDilate_ZeroSizedMask(t *testing.T) {
	out, err := Dilate(NewMask(0, 4), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Width)
	assert.Equal(t, 4, out.Height)
	assert.Empty(t, out.Pix)
}
