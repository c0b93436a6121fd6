package transform

import (
	"image"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// NormalizationType defines how pixel values are normalized.
type NormalizationType int

const (
	// NormalizeNone keeps pixel values as 0-255.
	NormalizeNone NormalizationType = iota
	// NormalizeZeroToOne scales pixel values to [0, 1].
	NormalizeZeroToOne
	// NormalizeMinusOneToOne scales pixel values to [-1, 1].
	NormalizeMinusOneToOne
	// NormalizeStandardize scales to [0, 1] then applies per-channel mean and std.
	NormalizeStandardize
)

// ChannelOrder defines the ordering of image channels.
type ChannelOrder int

const (
	// ChannelOrderCHW is Channel-Height-Width ordering.
	ChannelOrderCHW ChannelOrder = iota
	// ChannelOrderHWC is Height-Width-Channel ordering.
	ChannelOrderHWC
)

// ColorMode defines the color space of the tensor.
type ColorMode int

const (
	// ColorModeRGB is standard RGB color mode.
	ColorModeRGB ColorMode = iota
	// ColorModeBGR is BGR color mode.
	ColorModeBGR
	// ColorModeGrayscale is single channel grayscale.
	ColorModeGrayscale
)

// TensorConfig defines how an image is packed into a tensor.
type TensorConfig struct {
	ChannelOrder  ChannelOrder
	ColorMode     ColorMode
	Normalization NormalizationType
	// Mean and Std are per-channel, used by NormalizeStandardize.
	Mean []float32
	Std  []float32
}

// Channels returns 1 for grayscale and 3 otherwise.
func (c TensorConfig) Channels() int {
	if c.ColorMode == ColorModeGrayscale {
		return 1
	}
	return 3
}

// ZeroToOneConfig returns the CHW RGB [0, 1] layout.
func ZeroToOneConfig() TensorConfig {
	return TensorConfig{
		ChannelOrder:  ChannelOrderCHW,
		ColorMode:     ColorModeRGB,
		Normalization: NormalizeZeroToOne,
	}
}

// ImageNetConfig returns the CHW RGB layout standardized with ImageNet
// statistics.
func ImageNetConfig() TensorConfig {
	return TensorConfig{
		ChannelOrder:  ChannelOrderCHW,
		ColorMode:     ColorModeRGB,
		Normalization: NormalizeStandardize,
		Mean:          []float32{0.485, 0.456, 0.406},
		Std:           []float32{0.229, 0.224, 0.225},
	}
}

// Tensorizer packs images into float32 tensors.
type Tensorizer struct {
	config TensorConfig
}

// NewTensorizer validates config and returns a Tensorizer.
//
// Arguments:
//   - config: The tensor layout.
//
// Returns:
//   - *Tensorizer: The tensorizer.
//   - error: An error if standardization statistics do not match the channel
//     count or a std value is zero.
func NewTensorizer(config TensorConfig) (*Tensorizer, error) {
	if config.Normalization == NormalizeStandardize {
		ch := config.Channels()
		if len(config.Mean) != ch || len(config.Std) != ch {
			return nil, errors.Errorf("standardize needs %d mean and std values, got %d and %d",
				ch, len(config.Mean), len(config.Std))
		}
		for c, std := range config.Std {
			if std == 0 {
				return nil, errors.Errorf("std of channel %d is zero", c)
			}
		}
	}
	return &Tensorizer{config: config}, nil
}

// ToTensor converts an image to a float32 tensor shaped (C, H, W) or
// (H, W, C) depending on the channel order.
//
// @example
// tz, _ := NewTensorizer(ZeroToOneConfig())
// t, err := tz.ToTensor(img) // t.Shape() == (3, h, w)
func (tz *Tensorizer) ToTensor(img image.Image) (*tensor.Dense, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid image dimensions: %dx%d", width, height)
	}

	data := tz.pixels(img)
	tz.normalize(data)

	channels := tz.config.Channels()
	shape := []int{channels, height, width}
	if tz.config.ChannelOrder == ChannelOrderHWC {
		shape = []int{height, width, channels}
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data)), nil
}

// pixels reads img into a float32 buffer with values in 0-255.
func (tz *Tensorizer) pixels(img image.Image) []float32 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	channels := tz.config.Channels()
	plane := width * height
	data := make([]float32, plane*channels)

	idx := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r8, g8, b8 := float32(r>>8), float32(g>>8), float32(b>>8)

			if channels == 1 {
				data[y*width+x] = 0.299*r8 + 0.587*g8 + 0.114*b8
				continue
			}

			ch0, ch1, ch2 := r8, g8, b8
			if tz.config.ColorMode == ColorModeBGR {
				ch0, ch2 = b8, r8
			}
			if tz.config.ChannelOrder == ChannelOrderCHW {
				data[0*plane+y*width+x] = ch0
				data[1*plane+y*width+x] = ch1
				data[2*plane+y*width+x] = ch2
			} else {
				data[idx] = ch0
				data[idx+1] = ch1
				data[idx+2] = ch2
				idx += 3
			}
		}
	}
	return data
}

// normalize applies the configured normalization in place.
func (tz *Tensorizer) normalize(data []float32) {
	switch tz.config.Normalization {
	case NormalizeZeroToOne:
		for i := range data {
			data[i] /= 255.0
		}
	case NormalizeMinusOneToOne:
		for i := range data {
			data[i] = data[i]/127.5 - 1.0
		}
	case NormalizeStandardize:
		channels := tz.config.Channels()
		plane := len(data) / channels
		for c := 0; c < channels; c++ {
			mean, std := tz.config.Mean[c], tz.config.Std[c]
			if tz.config.ChannelOrder == ChannelOrderCHW {
				for i := c * plane; i < (c+1)*plane; i++ {
					data[i] = (data[i]/255.0 - mean) / std
				}
			} else {
				for i := c; i < len(data); i += channels {
					data[i] = (data[i]/255.0 - mean) / std
				}
			}
		}
	}
}
