package dataset

import (
	"image"

	"github.com/nvr-ai/go-voc/common"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Target is the detection target of one sample. Boxes, Labels, Area and
// IsCrowd are positionally aligned and follow the <object> order of the
// annotation file.
type Target struct {
	// Boxes are [xmin, ymin, xmax, ymax] corners in pixels.
	Boxes []common.BoundingBox
	// Labels are class table indices.
	Labels []int64
	// ImageID is the dataset index of the sample.
	ImageID int64
	// Area is (ymax - ymin) * (xmax - xmin) per box.
	Area []float32
	// IsCrowd is the annotation's difficult flag, taken verbatim.
	IsCrowd []int64
}

// Len returns the number of objects.
func (t *Target) Len() int {
	return len(t.Boxes)
}

// Sample is one (image, target) pair.
type Sample struct {
	Image  image.Image
	Target Target
}

// TargetTensors holds a target packed into dense tensors.
type TargetTensors struct {
	// Boxes is (N, 4) float32.
	Boxes *tensor.Dense
	// Labels is (N) int64.
	Labels *tensor.Dense
	// ImageID is (1) int64.
	ImageID *tensor.Dense
	// Area is (N) float32.
	Area *tensor.Dense
	// IsCrowd is (N) int64.
	IsCrowd *tensor.Dense
}

// Tensors packs the target into dense tensors for the training loop. A
// target without objects packs into (0, 4) boxes and (0) sequences.
//
// Returns:
//   - *TargetTensors: The packed target.
//   - error: An error if the sequences are not aligned.
//
// @example
// s, _ := ds.Get(0)
// tt, err := s.Target.Tensors()
// tt.Boxes.Shape() // (N, 4)
func (t *Target) Tensors() (*TargetTensors, error) {
	n := t.Len()
	if len(t.Labels) != n || len(t.Area) != n || len(t.IsCrowd) != n {
		return nil, errors.Errorf("misaligned target: %d boxes, %d labels, %d areas, %d iscrowd",
			n, len(t.Labels), len(t.Area), len(t.IsCrowd))
	}

	boxes := make([]float32, 0, n*4)
	for _, b := range t.Boxes {
		c := b.Corners()
		boxes = append(boxes, c[:]...)
	}

	return &TargetTensors{
		Boxes:   tensor.New(tensor.WithShape(n, 4), tensor.WithBacking(boxes)),
		Labels:  tensor.New(tensor.WithShape(n), tensor.WithBacking(append(make([]int64, 0, n), t.Labels...))),
		ImageID: tensor.New(tensor.WithShape(1), tensor.WithBacking([]int64{t.ImageID})),
		Area:    tensor.New(tensor.WithShape(n), tensor.WithBacking(append(make([]float32, 0, n), t.Area...))),
		IsCrowd: tensor.New(tensor.WithShape(n), tensor.WithBacking(append(make([]int64, 0, n), t.IsCrowd...))),
	}, nil
}
