package transform

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Resize scales the image to exactly Width x Height with Lanczos3.
type Resize struct {
	Width  int
	Height int
}

// Apply resizes img.
func (r Resize) Apply(img image.Image) (image.Image, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, errors.Errorf("invalid resize dimensions: %dx%d", r.Width, r.Height)
	}
	return resize.Resize(uint(r.Width), uint(r.Height), img, resize.Lanczos3), nil
}

// Letterbox scales the image to fit inside Width x Height keeping its aspect
// ratio and pads the remainder with Color, centring the scaled image.
type Letterbox struct {
	Width  int
	Height int
	// Color defaults to black.
	Color color.Color
}

// Apply letterboxes img.
func (l Letterbox) Apply(img image.Image) (image.Image, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return nil, errors.Errorf("invalid letterbox dimensions: %dx%d", l.Width, l.Height)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("cannot letterbox an empty image")
	}

	scale := math.Min(float64(l.Width)/float64(bounds.Dx()), float64(l.Height)/float64(bounds.Dy()))
	newWidth := max(1, int(float64(bounds.Dx())*scale))
	newHeight := max(1, int(float64(bounds.Dy())*scale))
	resized := resize.Resize(uint(newWidth), uint(newHeight), img, resize.Lanczos3)

	padLeft := (l.Width - newWidth) / 2
	padTop := (l.Height - newHeight) / 2

	fill := l.Color
	if fill == nil {
		fill = color.Black
	}
	out := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(out, out.Bounds(), &image.Uniform{fill}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(padLeft, padTop, padLeft+newWidth, padTop+newHeight),
		resized, resized.Bounds().Min, draw.Src)
	return out, nil
}

// HorizontalFlip mirrors the image left to right with probability P.
type HorizontalFlip struct {
	P float64
	// Rand returns a number in [0, 1). Defaults to math/rand.Float64,
	// which is safe for concurrent use.
	Rand func() float64
}

// Apply flips img with probability P.
func (h HorizontalFlip) Apply(img image.Image) (image.Image, error) {
	sample := rand.Float64
	if h.Rand != nil {
		sample = h.Rand
	}
	if sample() >= h.P {
		return img, nil
	}
	return imaging.FlipH(img), nil
}

// Grayscale converts the image to grayscale.
type Grayscale struct{}

// Apply converts img.
func (Grayscale) Apply(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

// Blur applies a Gaussian blur with the given sigma.
type Blur struct {
	Sigma float64
}

// Apply blurs img.
func (b Blur) Apply(img image.Image) (image.Image, error) {
	if b.Sigma <= 0 {
		return nil, errors.Errorf("blur sigma must be positive, got %g", b.Sigma)
	}
	return imaging.Blur(img, b.Sigma), nil
}
