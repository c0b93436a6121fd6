// Package transform - Image transforms applied to dataset samples.
//
// Transforms touch the image only; annotation targets are never adjusted.
package transform

import (
	"image"

	"github.com/pkg/errors"
)

// Transform maps a decoded image to the image handed to the training loop.
type Transform interface {
	Apply(img image.Image) (image.Image, error)
}

// Func adapts a function to the Transform interface.
type Func func(img image.Image) (image.Image, error)

// Apply calls f(img).
func (f Func) Apply(img image.Image) (image.Image, error) {
	return f(img)
}

// Pipeline applies its steps in order.
type Pipeline []Transform

// Compose builds a pipeline from steps, skipping nil entries.
//
// @example
// t := Compose(Resize{Width: 416, Height: 416}, HorizontalFlip{P: 0.5})
// out, err := t.Apply(img)
func Compose(steps ...Transform) Pipeline {
	p := make(Pipeline, 0, len(steps))
	for _, s := range steps {
		if s != nil {
			p = append(p, s)
		}
	}
	return p
}

// Apply runs every step on the output of the previous one.
func (p Pipeline) Apply(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	for i, step := range p {
		out, err := step.Apply(img)
		if err != nil {
			return nil, errors.Wrapf(err, "transform step %d", i)
		}
		img = out
	}
	return img, nil
}
