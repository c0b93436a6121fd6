package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxArea(t *testing.T) {
	tests := []struct {
		name     string
		box      BoundingBox
		expected float32
	}{
		{
			name:     "horse from 2008_000008",
			box:      BoundingBox{X1: 53, Y1: 87, X2: 471, Y2: 420},
			expected: 139194,
		},
		{
			name:     "fractional corners",
			box:      BoundingBox{X1: 0.5, Y1: 1.5, X2: 2.5, Y2: 4.5},
			expected: 6,
		},
		{
			name:     "degenerate box",
			box:      BoundingBox{X1: 10, Y1: 10, X2: 10, Y2: 30},
			expected: 0,
		},
		{
			name:     "inverted box keeps the raw sign",
			box:      BoundingBox{X1: 20, Y1: 0, X2: 10, Y2: 5},
			expected: -50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.box.Area(), 1e-3)
		})
	}
}

func TestBoundingBoxCornersAndString(t *testing.T) {
	box := BoundingBox{X1: 53, Y1: 87, X2: 471, Y2: 420}

	assert.Equal(t, [4]float32{53, 87, 471, 420}, box.Corners())
	assert.Equal(t, float32(418), box.Width())
	assert.Equal(t, float32(333), box.Height())
	assert.Equal(t, "(53.00, 87.00), (471.00, 420.00)", box.String())
}

func TestBoundingBoxToRectAndWithin(t *testing.T) {
	box := BoundingBox{X1: 100.5, Y1: 100.5, X2: 200.5, Y2: 300.5}
	assert.Equal(t, image.Rect(100, 100, 200, 300), box.ToRect())

	assert.True(t, box.Within(500, 442))
	assert.False(t, box.Within(150, 442))
	assert.True(t, BoundingBox{X1: 0, Y1: 0, X2: 500, Y2: 442}.Within(500, 442))
}
