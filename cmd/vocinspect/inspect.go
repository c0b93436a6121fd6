package main

import (
	"context"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/nvr-ai/go-voc/dataset"
	"github.com/nvr-ai/go-voc/images"
	"github.com/nvr-ai/go-voc/profiler"
	"github.com/nvr-ai/go-voc/sampler"
	"github.com/nvr-ai/go-voc/transform"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type dumpLine struct {
	Index       int          `json:"index"`
	ID          string       `json:"id"`
	ImageID     int64        `json:"image_id"`
	TensorShape []int        `json:"tensor_shape"`
	Boxes       [][4]float32 `json:"boxes"`
	Labels      []int64      `json:"labels"`
	Names       []string     `json:"names"`
	Area        []float32    `json:"area"`
	IsCrowd     []int64      `json:"iscrowd"`
}

// dump writes one JSON line per sample with its target and the shape of the
// packed image tensor.
func dump(ds *dataset.VOCDataset, n int, tc transform.TensorConfig, out io.Writer) error {
	tz, err := transform.NewTensorizer(tc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for i := 0; i < n; i++ {
		sample, err := ds.Get(i)
		if err != nil {
			return err
		}
		id, err := ds.SampleID(i)
		if err != nil {
			return err
		}
		t, err := tz.ToTensor(sample.Image)
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}

		line := dumpLine{
			Index:       i,
			ID:          id,
			ImageID:     sample.Target.ImageID,
			TensorShape: []int(t.Shape()),
			Boxes:       make([][4]float32, 0, sample.Target.Len()),
			Labels:      sample.Target.Labels,
			Names:       make([]string, 0, sample.Target.Len()),
			Area:        sample.Target.Area,
			IsCrowd:     sample.Target.IsCrowd,
		}
		for j, b := range sample.Target.Boxes {
			line.Boxes = append(line.Boxes, b.Corners())
			name, err := ds.Classes().Name(sample.Target.Labels[j])
			if err != nil {
				return err
			}
			line.Names = append(line.Names, name)
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// check compares every annotation with the header of its image, logs a
// warning per mismatch and returns the number of mismatches. Unreadable
// annotations abort the check.
func check(fs afero.Fs, ds *dataset.VOCDataset, n int, logger *zap.Logger) (int, error) {
	problems := 0
	for i := 0; i < n; i++ {
		ann, err := ds.Annotation(i)
		if err != nil {
			return problems, err
		}
		path := ds.ImagePath(ann.Filename)

		cfg, format, err := images.DecodeConfig(fs, path)
		if err != nil {
			problems++
			logger.Warn("image unreadable", zap.Int("index", i), zap.String("path", path), zap.Error(err))
			continue
		}
		if format != images.FormatJPEG {
			problems++
			logger.Warn("image not jpeg", zap.Int("index", i), zap.String("path", path), zap.String("format", string(format)))
		}
		if cfg.Width != ann.Size.Width || cfg.Height != ann.Size.Height {
			problems++
			logger.Warn("size mismatch",
				zap.Int("index", i),
				zap.String("path", path),
				zap.Int("annotated_width", ann.Size.Width),
				zap.Int("annotated_height", ann.Size.Height),
				zap.Int("width", cfg.Width),
				zap.Int("height", cfg.Height),
			)
		}
		for j, obj := range ann.Objects {
			if !obj.BndBox.Within(cfg.Width, cfg.Height) {
				problems++
				logger.Warn("box outside image",
					zap.Int("index", i),
					zap.Int("object", j),
					zap.Stringer("box", obj.BndBox),
				)
			}
		}
	}
	logger.Info("check finished", zap.Int("samples", n), zap.Int("problems", problems))
	return problems, nil
}

// bench times Get against HeightWidth over the first n samples.
func bench(ds *dataset.VOCDataset, n int, logger *zap.Logger) error {
	p := profiler.New(n)
	for i := 0; i < n; i++ {
		done := p.StartOperation("get")
		sample, err := ds.Get(i)
		done()
		if err != nil {
			return err
		}
		p.RecordMetric("objects", float64(sample.Target.Len()))

		done = p.StartOperation("height_width")
		_, _, err = ds.HeightWidth(i)
		done()
		if err != nil {
			return err
		}
	}
	p.Report(logger)
	return nil
}

// firstN limits a dataset's geometry queries to its first n samples.
type firstN struct {
	sampler.Geometry
	n int
}

func (f firstN) Len() int { return f.n }

type groupLine struct {
	Group int `json:"group"`
	Count int `json:"count"`
}

// groups writes the aspect ratio group histogram as JSON lines.
func groups(ctx context.Context, ds *dataset.VOCDataset, n, k, workers int, out io.Writer) error {
	ratios, err := sampler.AspectRatios(ctx, firstN{Geometry: ds, n: n}, workers)
	if err != nil {
		return err
	}
	hist := sampler.Histogram(sampler.Quantize(ratios, k))

	ids := make([]int, 0, len(hist))
	for g := range hist {
		ids = append(ids, g)
	}
	sort.Ints(ids)

	enc := json.NewEncoder(out)
	for _, g := range ids {
		if err := enc.Encode(groupLine{Group: g, Count: hist[g]}); err != nil {
			return err
		}
	}
	return nil
}
