// Package config - YAML configuration for the dataset tools.
package config

import (
	"image/color"

	"github.com/nvr-ai/go-voc/dataset"
	"github.com/nvr-ai/go-voc/transform"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds the tool configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Transform TransformConfig `yaml:"transform"`
	Tensor    TensorConfig    `yaml:"tensor"`
	LogLevel  string          `yaml:"log_level"`
}

// DatasetConfig locates the dataset.
type DatasetConfig struct {
	Root       string `yaml:"root"`
	ClassTable string `yaml:"class_table"`
	Split      string `yaml:"split"`
}

// Size is a width and height in pixels, or the name of a
// transform.InputSize preset.
type Size struct {
	Preset string `yaml:"preset,omitempty"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// resolve fills Width and Height from Preset when it is set.
func (s *Size) resolve() error {
	if s.Preset == "" {
		return nil
	}
	p, ok := transform.LookupInputSize(s.Preset)
	if !ok {
		return errors.Errorf("unknown input size preset %q", s.Preset)
	}
	s.Width, s.Height = p.Width, p.Height
	return nil
}

// TransformConfig selects the image transform steps, applied in field order.
type TransformConfig struct {
	Resize    *Size `yaml:"resize,omitempty"`
	Letterbox *Size `yaml:"letterbox,omitempty"`
	// PadColor is the letterbox padding as [r, g, b].
	PadColor  []int   `yaml:"pad_color,omitempty"`
	FlipP     float64 `yaml:"flip_probability"`
	Grayscale bool    `yaml:"grayscale"`
	BlurSigma float64 `yaml:"blur_sigma"`
}

// TensorConfig selects a tensor layout preset.
type TensorConfig struct {
	// Preset is "zero_to_one", "imagenet" or "none".
	Preset string `yaml:"preset"`
	// Layout is "chw" or "hwc".
	Layout string `yaml:"layout"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Root:       ".",
			ClassTable: "pascal_voc_classes.json",
			Split:      string(dataset.SplitTrain),
		},
		Tensor: TensorConfig{
			Preset: "zero_to_one",
			Layout: "chw",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
//
// Arguments:
//   - fs: The filesystem to read from.
//   - path: The YAML file path.
//
// Returns:
//   - *Config: The configuration.
//   - error: An error if the file cannot be read, parsed or validated.
//
// @example
// cfg, err := config.Load(afero.NewOsFs(), "vocinspect.yaml")
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dataset.Root == "" {
		return errors.New("dataset.root must be set")
	}
	if c.Dataset.ClassTable == "" {
		return errors.New("dataset.class_table must be set")
	}
	if _, err := dataset.ParseSplit(c.Dataset.Split); err != nil {
		return errors.Wrap(err, "dataset.split")
	}
	if c.Transform.Resize != nil && c.Transform.Letterbox != nil {
		return errors.New("transform.resize and transform.letterbox are exclusive")
	}
	for name, s := range map[string]*Size{"resize": c.Transform.Resize, "letterbox": c.Transform.Letterbox} {
		if s == nil {
			continue
		}
		if err := s.resolve(); err != nil {
			return errors.Wrapf(err, "transform.%s", name)
		}
		if s.Width <= 0 || s.Height <= 0 {
			return errors.Errorf("transform.%s must be positive, got %dx%d", name, s.Width, s.Height)
		}
	}
	if n := len(c.Transform.PadColor); n != 0 && n != 3 {
		return errors.Errorf("transform.pad_color needs 3 values, got %d", n)
	}
	for _, v := range c.Transform.PadColor {
		if v < 0 || v > 255 {
			return errors.Errorf("transform.pad_color value %d outside [0, 255]", v)
		}
	}
	if c.Transform.FlipP < 0 || c.Transform.FlipP > 1 {
		return errors.Errorf("transform.flip_probability must be in [0, 1], got %v", c.Transform.FlipP)
	}
	if c.Transform.BlurSigma < 0 {
		return errors.Errorf("transform.blur_sigma must not be negative, got %v", c.Transform.BlurSigma)
	}
	if _, err := c.Tensor.Build(); err != nil {
		return err
	}
	return nil
}

// Split returns the configured dataset split.
func (c *Config) Split() dataset.Split {
	return dataset.Split(c.Dataset.Split)
}

// BuildTransform assembles the configured steps, or returns nil when none
// is enabled.
func (c *Config) BuildTransform() transform.Transform {
	t := c.Transform
	var steps []transform.Transform
	if t.Resize != nil {
		steps = append(steps, transform.Resize{Width: t.Resize.Width, Height: t.Resize.Height})
	}
	if t.Letterbox != nil {
		lb := transform.Letterbox{Width: t.Letterbox.Width, Height: t.Letterbox.Height}
		if len(t.PadColor) == 3 {
			lb.Color = color.RGBA{R: uint8(t.PadColor[0]), G: uint8(t.PadColor[1]), B: uint8(t.PadColor[2]), A: 255}
		}
		steps = append(steps, lb)
	}
	if t.FlipP > 0 {
		steps = append(steps, transform.HorizontalFlip{P: t.FlipP})
	}
	if t.Grayscale {
		steps = append(steps, transform.Grayscale{})
	}
	if t.BlurSigma > 0 {
		steps = append(steps, transform.Blur{Sigma: t.BlurSigma})
	}
	if len(steps) == 0 {
		return nil
	}
	return transform.Compose(steps...)
}

// Build converts the preset to a transform.TensorConfig.
func (t TensorConfig) Build() (transform.TensorConfig, error) {
	var tc transform.TensorConfig
	switch t.Preset {
	case "", "zero_to_one":
		tc = transform.ZeroToOneConfig()
	case "imagenet":
		tc = transform.ImageNetConfig()
	case "none":
		tc = transform.TensorConfig{Normalization: transform.NormalizeNone}
	default:
		return tc, errors.Errorf("unknown tensor.preset %q", t.Preset)
	}

	switch t.Layout {
	case "", "chw":
		tc.ChannelOrder = transform.ChannelOrderCHW
	case "hwc":
		tc.ChannelOrder = transform.ChannelOrderHWC
	default:
		return tc, errors.Errorf("unknown tensor.layout %q", t.Layout)
	}
	return tc, nil
}
