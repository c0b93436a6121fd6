package config

import (
	"image"
	"testing"

	"github.com/nvr-ai/go-voc/dataset"
	"github.com/nvr-ai/go-voc/transform"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, dataset.SplitTrain, cfg.Split())
	assert.Nil(t, cfg.BuildTransform())
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `
dataset:
  root: /data
  class_table: /data/classes.json
  split: val
transform:
  letterbox: {width: 64, height: 32}
  pad_color: [114, 114, 114]
  grayscale: true
tensor:
  preset: imagenet
  layout: hwc
log_level: debug
`
	require.NoError(t, afero.WriteFile(fs, "/etc/vocinspect.yaml", []byte(doc), 0o644))

	cfg, err := Load(fs, "/etc/vocinspect.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.Dataset.Root)
	assert.Equal(t, dataset.SplitVal, cfg.Split())
	assert.Equal(t, "debug", cfg.LogLevel)

	tr := cfg.BuildTransform()
	require.NotNil(t, tr)
	out, err := tr.Apply(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), out.Bounds())

	tc, err := cfg.Tensor.Build()
	require.NoError(t, err)
	assert.Equal(t, transform.ChannelOrderHWC, tc.ChannelOrder)
	assert.Equal(t, transform.NormalizeStandardize, tc.Normalization)
}

func TestLoadKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "c.yaml", []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(fs, "c.yaml")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, Default().Dataset, cfg.Dataset)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("dataset: [\n"), 0o644))

	_, err := Load(fs, "missing.yaml")
	assert.Error(t, err)
	_, err = Load(fs, "bad.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty root", mutate: func(c *Config) { c.Dataset.Root = "" }},
		{name: "empty class table", mutate: func(c *Config) { c.Dataset.ClassTable = "" }},
		{name: "unknown split", mutate: func(c *Config) { c.Dataset.Split = "test" }},
		{name: "resize and letterbox", mutate: func(c *Config) {
			c.Transform.Resize = &Size{Width: 1, Height: 1}
			c.Transform.Letterbox = &Size{Width: 1, Height: 1}
		}},
		{name: "unknown preset size", mutate: func(c *Config) { c.Transform.Letterbox = &Size{Preset: "yolo-9000"} }},
		{name: "zero resize", mutate: func(c *Config) { c.Transform.Resize = &Size{Width: 0, Height: 1} }},
		{name: "short pad color", mutate: func(c *Config) { c.Transform.PadColor = []int{1} }},
		{name: "pad color above 255", mutate: func(c *Config) { c.Transform.PadColor = []int{0, 0, 256} }},
		{name: "flip above one", mutate: func(c *Config) { c.Transform.FlipP = 1.5 }},
		{name: "negative blur", mutate: func(c *Config) { c.Transform.BlurSigma = -1 }},
		{name: "unknown preset", mutate: func(c *Config) { c.Tensor.Preset = "minmax" }},
		{name: "unknown layout", mutate: func(c *Config) { c.Tensor.Layout = "nchw" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBuildTransformSteps(t *testing.T) {
	cfg := Default()
	cfg.Transform = TransformConfig{
		Resize:    &Size{Width: 8, Height: 4},
		FlipP:     1,
		BlurSigma: 0.5,
	}
	require.NoError(t, cfg.Validate())

	tr := cfg.BuildTransform()
	pipeline, ok := tr.(transform.Pipeline)
	require.True(t, ok)
	assert.Len(t, pipeline, 3)
}

func TestSizePreset(t *testing.T) {
	cfg := Default()
	cfg.Transform.Letterbox = &Size{Preset: "yolo-416"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 416, cfg.Transform.Letterbox.Width)
	assert.Equal(t, 416, cfg.Transform.Letterbox.Height)

	out, err := cfg.BuildTransform().Apply(image.NewRGBA(image.Rect(0, 0, 50, 44)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 416, 416), out.Bounds())
}
