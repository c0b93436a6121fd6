package transform

import (
	"fmt"
	"sort"
)

// InputSize is a named network input geometry that images are resized or
// letterboxed to before packing.
type InputSize struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Pixels returns Width * Height.
func (s InputSize) Pixels() int {
	return s.Width * s.Height
}

// String returns a human-readable summary of the size.
func (s InputSize) String() string {
	return fmt.Sprintf("%s (%dx%d)", s.Name, s.Width, s.Height)
}

// inputSizes holds the input geometries of common detection networks,
// keyed by name.
var inputSizes = map[string]InputSize{
	"ssd-300":    {Name: "ssd-300", Width: 300, Height: 300},
	"yolo-320":   {Name: "yolo-320", Width: 320, Height: 320},
	"yolo-416":   {Name: "yolo-416", Width: 416, Height: 416},
	"ssd-512":    {Name: "ssd-512", Width: 512, Height: 512},
	"yolo-608":   {Name: "yolo-608", Width: 608, Height: 608},
	"yolo-640":   {Name: "yolo-640", Width: 640, Height: 640},
	"detr-800":   {Name: "detr-800", Width: 800, Height: 800},
	"frcnn-1000": {Name: "frcnn-1000", Width: 1000, Height: 600},
}

// InputSizes returns every preset ordered by pixel count, then name.
func InputSizes() []InputSize {
	all := make([]InputSize, 0, len(inputSizes))
	for _, s := range inputSizes {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Pixels() != all[j].Pixels() {
			return all[i].Pixels() < all[j].Pixels()
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// LookupInputSize retrieves a preset by name.
func LookupInputSize(name string) (InputSize, bool) {
	s, ok := inputSizes[name]
	return s, ok
}

// LargestInputSizeWithin returns the preset with the most pixels that fits
// inside width x height.
//
// Arguments:
//   - width: The maximum width.
//   - height: The maximum height.
//
// Returns:
//   - InputSize: The largest fitting preset.
//   - bool: False if no preset fits.
func LargestInputSizeWithin(width, height int) (InputSize, bool) {
	var best InputSize
	var found bool
	for _, s := range InputSizes() {
		if s.Width <= width && s.Height <= height {
			best, found = s, true
		}
	}
	return best, found
}
