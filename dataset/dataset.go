// Package dataset - PASCAL VOC detection dataset adapter.
//
// A VOCDataset reads the sample IDs of one split at construction and then
// serves (image, target) pairs by index, parsing the annotation XML and
// decoding the JPEG afresh on every call. Nothing is mutated after
// construction, so a VOCDataset is safe for concurrent use by data loading
// workers.
package dataset

import (
	"path/filepath"

	"github.com/nvr-ai/go-voc/annotation"
	"github.com/nvr-ai/go-voc/classes"
	"github.com/nvr-ai/go-voc/common"
	"github.com/nvr-ai/go-voc/images"
	"github.com/nvr-ai/go-voc/transform"
	"github.com/nvr-ai/go-voc/util"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Split selects the sample list of a dataset.
type Split string

const (
	// SplitTrain reads ImageSets/Main/train.txt.
	SplitTrain Split = "train"
	// SplitVal reads ImageSets/Main/val.txt.
	SplitVal Split = "val"
)

// ParseSplit converts "train" or "val" to a Split.
func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case SplitTrain, SplitVal:
		return Split(s), nil
	default:
		return "", errors.Errorf("unknown split %q, want %q or %q", s, SplitTrain, SplitVal)
	}
}

// Directory layout below the dataset root.
const (
	DevkitDir      = "VOCdevkit"
	YearDir        = "VOC2012"
	ImagesDir      = "JPEGImages"
	AnnotationsDir = "Annotations"
)

// Config configures a VOCDataset.
type Config struct {
	// Root is the directory containing VOCdevkit.
	Root string
	// ClassTablePath is the JSON class table; ignored by NewWithTable.
	ClassTablePath string
	// Split defaults to SplitTrain.
	Split Split
	// Transform is applied to every decoded image when set.
	Transform transform.Transform
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// VOCDataset is the annotation dataset adapter.
type VOCDataset struct {
	fs             afero.Fs
	logger         *zap.Logger
	root           string
	imageRoot      string
	annotationRoot string
	split          Split
	ids            []string
	annotations    []string
	classes        *classes.Table
	transform      transform.Transform
}

// New builds a dataset for one split and loads its class table.
//
// Arguments:
//   - cfg: The dataset configuration.
//
// Returns:
//   - *VOCDataset: The dataset.
//   - error: An error if the split is unknown, the split file cannot be read
//     or the class table cannot be loaded.
//
// @example
//
//	ds, err := dataset.New(dataset.Config{
//	    Root:           "/data",
//	    ClassTablePath: "/data/pascal_voc_classes.json",
//	    Split:          dataset.SplitTrain,
//	})
func New(cfg Config) (*VOCDataset, error) {
	d, err := newDataset(cfg)
	if err != nil {
		return nil, err
	}

	table, err := classes.Load(d.fs, cfg.ClassTablePath)
	if err != nil {
		return nil, errors.Wrap(err, "load class table")
	}
	d.classes = table

	d.logConstructed()
	return d, nil
}

// NewWithTable builds a dataset that uses an already loaded class table.
func NewWithTable(cfg Config, table *classes.Table) (*VOCDataset, error) {
	if table == nil {
		return nil, errors.New("class table is nil")
	}
	d, err := newDataset(cfg)
	if err != nil {
		return nil, err
	}
	d.classes = table

	d.logConstructed()
	return d, nil
}

func newDataset(cfg Config) (*VOCDataset, error) {
	split := cfg.Split
	if split == "" {
		split = SplitTrain
	}
	if _, err := ParseSplit(string(split)); err != nil {
		return nil, err
	}
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	root := filepath.Join(cfg.Root, DevkitDir, YearDir)
	d := &VOCDataset{
		fs:             fs,
		logger:         logger,
		root:           root,
		imageRoot:      filepath.Join(root, ImagesDir),
		annotationRoot: filepath.Join(root, AnnotationsDir),
		split:          split,
		transform:      cfg.Transform,
	}

	ids, err := util.LoadSampleIDs(fs, d.SplitPath())
	if err != nil {
		return nil, errors.Wrapf(err, "load %s split", split)
	}
	d.ids = ids
	d.annotations = make([]string, len(ids))
	for i, id := range ids {
		d.annotations[i] = filepath.Join(d.annotationRoot, id+".xml")
	}
	return d, nil
}

func (d *VOCDataset) logConstructed() {
	d.logger.Info("dataset ready",
		zap.String("root", d.root),
		zap.String("split", string(d.split)),
		zap.Int("samples", len(d.ids)),
		zap.Int("classes", d.classes.Len()),
	)
}

// Len returns the number of samples in the split.
func (d *VOCDataset) Len() int {
	return len(d.ids)
}

// Split returns the split the dataset was built for.
func (d *VOCDataset) Split() Split {
	return d.split
}

// SplitPath returns the path of the split file.
func (d *VOCDataset) SplitPath() string {
	return filepath.Join(d.root, "ImageSets", "Main", string(d.split)+".txt")
}

// Classes returns the class table.
func (d *VOCDataset) Classes() *classes.Table {
	return d.classes
}

func (d *VOCDataset) checkIndex(index int) error {
	if index < 0 || index >= len(d.ids) {
		return &IndexError{Index: index, Len: len(d.ids)}
	}
	return nil
}

// SampleID returns the sample ID at index.
func (d *VOCDataset) SampleID(index int) (string, error) {
	if err := d.checkIndex(index); err != nil {
		return "", err
	}
	return d.ids[index], nil
}

// AnnotationPath returns the annotation file path at index.
func (d *VOCDataset) AnnotationPath(index int) (string, error) {
	if err := d.checkIndex(index); err != nil {
		return "", err
	}
	return d.annotations[index], nil
}

// ImagePath returns the path of an image file named in an annotation.
func (d *VOCDataset) ImagePath(filename string) string {
	return filepath.Join(d.imageRoot, filename)
}

// Annotation parses the annotation at index without touching its image.
func (d *VOCDataset) Annotation(index int) (*annotation.Annotation, error) {
	if err := d.checkIndex(index); err != nil {
		return nil, err
	}
	return annotation.Load(d.fs, d.annotations[index])
}

// Get returns the sample at index.
//
// The annotation is parsed, the image named by its filename field is
// decoded and must be a JPEG, every object becomes one box, label, area and
// iscrowd entry in document order, and the configured transform, if any, is
// applied to the image. The target is never transformed.
//
// Arguments:
//   - index: The sample index in [0, Len()).
//
// Returns:
//   - *Sample: The image and its target.
//   - error: An *IndexError, an I/O or parse error, an images.FormatError
//     for non-JPEG images, a classes.UnknownClassError, or a transform error.
func (d *VOCDataset) Get(index int) (*Sample, error) {
	ann, err := d.Annotation(index)
	if err != nil {
		return nil, err
	}

	img, err := images.DecodeJPEG(d.fs, d.ImagePath(ann.Filename))
	if err != nil {
		return nil, errors.Wrapf(err, "sample %d", index)
	}

	target, err := d.target(index, ann)
	if err != nil {
		return nil, err
	}

	if d.transform != nil {
		if img, err = d.transform.Apply(img); err != nil {
			return nil, errors.Wrapf(err, "transform sample %d", index)
		}
	}

	d.logger.Debug("sample loaded",
		zap.Int("index", index),
		zap.String("id", d.ids[index]),
		zap.Int("objects", target.Len()),
	)
	return &Sample{Image: img, Target: *target}, nil
}

func (d *VOCDataset) target(index int, ann *annotation.Annotation) (*Target, error) {
	n := len(ann.Objects)
	t := &Target{
		Boxes:   make([]common.BoundingBox, 0, n),
		Labels:  make([]int64, 0, n),
		ImageID: int64(index),
		Area:    make([]float32, 0, n),
		IsCrowd: make([]int64, 0, n),
	}
	for i, obj := range ann.Objects {
		label, err := d.classes.Index(obj.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d object %d", index, i)
		}
		t.Boxes = append(t.Boxes, obj.BndBox)
		t.Labels = append(t.Labels, label)
		t.Area = append(t.Area, obj.BndBox.Area())
		t.IsCrowd = append(t.IsCrowd, obj.Difficult)
	}
	return t, nil
}

// HeightWidth returns the image height and width recorded in the annotation
// at index. The image file is never opened.
func (d *VOCDataset) HeightWidth(index int) (int, int, error) {
	if err := d.checkIndex(index); err != nil {
		return 0, 0, err
	}
	size, err := annotation.LoadSize(d.fs, d.annotations[index])
	if err != nil {
		return 0, 0, err
	}
	return size.Height, size.Width, nil
}
