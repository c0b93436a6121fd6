package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputSizesOrdered(t *testing.T) {
	all := InputSizes()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Pixels(), all[i].Pixels())
	}
	assert.Equal(t, "ssd-300", all[0].Name)
}

func TestLookupInputSize(t *testing.T) {
	s, ok := LookupInputSize("yolo-640")
	require.True(t, ok)
	assert.Equal(t, 640, s.Width)
	assert.Equal(t, "yolo-640 (640x640)", s.String())

	_, ok = LookupInputSize("yolo-9000")
	assert.False(t, ok)
}

func TestLargestInputSizeWithin(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   string
		found  bool
	}{
		{name: "voc sized image", width: 500, height: 442, want: "yolo-416", found: true},
		{name: "exact fit", width: 640, height: 640, want: "yolo-640", found: true},
		{name: "wide image", width: 1200, height: 700, want: "frcnn-1000", found: true},
		{name: "too small", width: 200, height: 200, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := LargestInputSizeWithin(tt.width, tt.height)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, s.Name)
			}
		})
	}
}
