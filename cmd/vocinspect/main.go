package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/nvr-ai/go-voc/config"
	"github.com/nvr-ai/go-voc/dataset"
	"github.com/nvr-ai/go-voc/logging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type args struct {
	Config    string `arg:"--config" help:"YAML configuration file"`
	Root      string `arg:"--root" help:"directory containing VOCdevkit"`
	Classes   string `arg:"--classes" help:"JSON class table"`
	Split     string `arg:"--split" help:"train or val"`
	Limit     int    `arg:"--limit" help:"only visit the first N samples, 0 for all"`
	Dump      bool   `arg:"--dump" help:"print one JSON line per sample"`
	Bench     bool   `arg:"--bench" help:"time Get against HeightWidth"`
	Groups    int    `arg:"--groups" help:"aspect ratio group histogram with 2k+1 bin edges, -1 to skip"`
	Check     bool   `arg:"--check" help:"cross-check image headers against annotations"`
	Workers   int    `arg:"--workers" help:"concurrent queries for --groups"`
	Letterbox string `arg:"--letterbox" help:"letterbox images to an input size preset such as yolo-640"`
	LogLevel  string `arg:"--log-level" help:"debug, info, warn or error"`
}

func (args) Description() string {
	return "vocinspect inspects, dumps and times a PASCAL VOC split"
}

func main() {
	a := args{
		Groups:  -1,
		Workers: 8,
	}
	arg.MustParse(&a)

	if err := run(context.Background(), afero.NewOsFs(), a, os.Stdout, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig loads the configuration file, if any, and applies flag
// overrides on top of it.
func resolveConfig(fs afero.Fs, a args) (*config.Config, error) {
	cfg := config.Default()
	if a.Config != "" {
		var err error
		if cfg, err = config.Load(fs, a.Config); err != nil {
			return nil, err
		}
	}
	if a.Root != "" {
		cfg.Dataset.Root = a.Root
	}
	if a.Classes != "" {
		cfg.Dataset.ClassTable = a.Classes
	}
	if a.Split != "" {
		cfg.Dataset.Split = a.Split
	}
	if a.Letterbox != "" {
		cfg.Transform.Resize = nil
		cfg.Transform.Letterbox = &config.Size{Preset: a.Letterbox}
	}
	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes the requested inspections. Results go to out and log entries
// to logOut and logErr; a failure is returned, never logged, so main reports
// it once.
func run(ctx context.Context, fs afero.Fs, a args, out, logOut, logErr io.Writer) error {
	cfg, err := resolveConfig(fs, a)
	if err != nil {
		return err
	}

	logger, err := logging.NewWithWriters(cfg.LogLevel, logOut, logErr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := dataset.New(dataset.Config{
		Root:           cfg.Dataset.Root,
		ClassTablePath: cfg.Dataset.ClassTable,
		Split:          cfg.Split(),
		Transform:      cfg.BuildTransform(),
		Fs:             fs,
		Logger:         logger,
	})
	if err != nil {
		return errors.Wrap(err, "open dataset")
	}

	n := ds.Len()
	if a.Limit > 0 && a.Limit < n {
		n = a.Limit
	}

	if a.Dump {
		tc, err := cfg.Tensor.Build()
		if err != nil {
			return err
		}
		if err := dump(ds, n, tc, out); err != nil {
			return errors.Wrap(err, "dump")
		}
	}
	if a.Check {
		problems, err := check(fs, ds, n, logger)
		if err != nil {
			return errors.Wrap(err, "check")
		}
		if problems > 0 {
			return errors.Errorf("check found %d problems", problems)
		}
	}
	if a.Bench {
		if err := bench(ds, n, logger); err != nil {
			return errors.Wrap(err, "bench")
		}
	}
	if a.Groups >= 0 {
		if err := groups(ctx, ds, n, a.Groups, a.Workers, out); err != nil {
			return errors.Wrap(err, "groups")
		}
	}

	logger.Info("done", zap.Int("samples", n))
	return nil
}
