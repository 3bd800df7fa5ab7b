package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIoU_Correctness validates the IoU implementation against known test cases
func TestIoU_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		a        Box
		b        Box
		expected float32
	}{
		{
			name:     "Identical boxes",
			a:        NewBox(0, 0, 100, 100),
			b:        NewBox(0, 0, 100, 100),
			expected: 1.0,
		},
		{
			name:     "No overlap",
			a:        NewBox(0, 0, 100, 100),
			b:        NewBox(200, 200, 100, 100),
			expected: 0.0,
		},
		{
			name:     "Touching edges",
			a:        NewBox(0, 0, 100, 100),
			b:        NewBox(100, 0, 100, 100),
			expected: 0.0,
		},
		{
			name:     "Quarter overlap",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(5, 5, 10, 10),
			expected: 25.0 / 175.0,
		},
		{
			name:     "One inside other",
			a:        NewBox(0, 0, 100, 100),
			b:        NewBox(25, 25, 50, 50),
			expected: 0.25,
		},
		{
			name:     "Pixel count area",
			a:        Box{X: 0, Y: 0, Width: 10, Height: 10, Area: 50},
			b:        Box{X: 0, Y: 0, Width: 10, Height: 10, Area: 60},
			expected: 100.0 / 10.0,
		},
		{
			name:     "Non-positive union",
			a:        Box{X: 0, Y: 0, Width: 10, Height: 10, Area: 10},
			b:        Box{X: 0, Y: 0, Width: 10, Height: 10, Area: 10},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.IoU(tt.b)
			assert.InDelta(t, tt.expected, result, 0.001)

			// IoU(A, B) should equal IoU(B, A)
			assert.InDelta(t, result, tt.b.IoU(tt.a), 0.0001)
		})
	}
}

func TestIoU_ZeroOverlapIgnoresArea(t *testing.T) {
	a := Box{X: 0, Y: 0, Width: 4, Height: 4, Area: 1}
	b := Box{X: 50, Y: 50, Width: 4, Height: 4, Area: 1000}

	assert.Equal(t, float32(0), a.IoU(b))
	assert.Equal(t, 0, a.Intersection(b))
}

// TestIntersection_vs_ImageRectangle compares the overlap against image.Rectangle
func TestIntersection_vs_ImageRectangle(t *testing.T) {
	testCases := []struct {
		name string
		a    Box
		b    Box
	}{
		{"No overlap", NewBox(0, 0, 100, 100), NewBox(200, 200, 100, 100)},
		{"Partial overlap", NewBox(0, 0, 100, 100), NewBox(50, 50, 100, 100)},
		{"Full overlap", NewBox(50, 50, 100, 100), NewBox(50, 50, 100, 100)},
		{"One inside other", NewBox(0, 0, 100, 100), NewBox(25, 25, 50, 50)},
		{"Large boxes", NewBox(0, 0, 1920, 1080), NewBox(960, 540, 960, 540)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			overlap := tc.a.ToRect().Intersect(tc.b.ToRect())
			expected := 0
			if !overlap.Empty() {
				expected = overlap.Dx() * overlap.Dy()
			}
			assert.Equal(t, expected, tc.a.Intersection(tc.b))
		})
	}
}

func TestBox_Geometry(t *testing.T) {
	box := NewBox(10, 20, 30, 40)

	assert.Equal(t, 1200, box.Area)
	assert.Equal(t, 40, box.Right())
	assert.Equal(t, 60, box.Bottom())
	assert.Equal(t, image.Rect(10, 20, 40, 60), box.ToRect())
	assert.False(t, box.Degenerate())
	assert.True(t, NewBox(1, 1, 0, 5).Degenerate())
	assert.True(t, NewBox(1, 1, 5, 0).Degenerate())
	assert.Equal(t, 175, NewBox(0, 0, 10, 10).Union(NewBox(5, 5, 10, 10)))
}
