package annotation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-voc/common"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// RootTag is the tag of the root element of every annotation file.
const RootTag = "annotation"

// ErrMissingField is matched by every MissingFieldError.
var ErrMissingField = errors.New("annotation field missing")

// MissingFieldError reports a required field that is absent from an annotation.
type MissingFieldError struct {
	// Path is the dotted path of the field, e.g. "object[2].bndbox.xmin".
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("annotation field %q missing", e.Path)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Annotation is the typed view of a PASCAL VOC annotation file.
type Annotation struct {
	Folder   string
	Filename string
	Size     Size
	// Objects are in document order. An annotation without <object>
	// children has an empty slice.
	Objects []Object
}

// Size is the image geometry recorded in the annotation.
type Size struct {
	Width  int
	Height int
	// Depth is zero when the annotation omits it.
	Depth int
}

// Object is one annotated instance.
type Object struct {
	Name      string
	Pose      string
	Truncated int64
	Difficult int64
	BndBox    common.BoundingBox
}

// Decode projects a parsed tree onto the annotation schema.
//
// Arguments:
//   - tree: The tree returned by Parse for the root element.
//
// Returns:
//   - *Annotation: The decoded annotation.
//   - error: An error if the root tag is wrong, a required field is missing
//     or a numeric field does not parse.
func Decode(tree Tree) (*Annotation, error) {
	rec, err := rootRecord(tree)
	if err != nil {
		return nil, err
	}

	filename, err := text(rec, "", "filename")
	if err != nil {
		return nil, err
	}
	size, err := decodeSize(rec)
	if err != nil {
		return nil, err
	}

	ann := &Annotation{
		Folder:   optionalText(rec, "folder"),
		Filename: filename,
		Size:     size,
		Objects:  make([]Object, 0, len(rec.Objects)),
	}
	for i, v := range rec.Objects {
		obj, err := decodeObject(v, fmt.Sprintf("%s[%d]", ObjectTag, i))
		if err != nil {
			return nil, err
		}
		ann.Objects = append(ann.Objects, obj)
	}
	return ann, nil
}

// DecodeSize reads only the size field of a parsed tree.
func DecodeSize(tree Tree) (Size, error) {
	rec, err := rootRecord(tree)
	if err != nil {
		return Size{}, err
	}
	return decodeSize(rec)
}

// ReadTree reads and parses the annotation file at path.
func ReadTree(fs afero.Fs, path string) (Tree, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Tree{}, errors.Wrap(err, "open annotation")
	}
	defer f.Close()

	root, err := ReadElement(f)
	if err != nil {
		return Tree{}, errors.Wrapf(err, "read annotation %s", path)
	}
	return Parse(root), nil
}

// Load reads, parses and decodes the annotation file at path.
func Load(fs afero.Fs, path string) (*Annotation, error) {
	tree, err := ReadTree(fs, path)
	if err != nil {
		return nil, err
	}
	ann, err := Decode(tree)
	if err != nil {
		return nil, errors.Wrapf(err, "decode annotation %s", path)
	}
	return ann, nil
}

// LoadSize reads the annotation file at path and decodes only its size.
func LoadSize(fs afero.Fs, path string) (Size, error) {
	tree, err := ReadTree(fs, path)
	if err != nil {
		return Size{}, err
	}
	size, err := DecodeSize(tree)
	if err != nil {
		return Size{}, errors.Wrapf(err, "decode annotation %s", path)
	}
	return size, nil
}

func rootRecord(tree Tree) (*Record, error) {
	if tree.Tag != RootTag {
		return nil, errors.Errorf("unexpected root element <%s>, want <%s>", tree.Tag, RootTag)
	}
	if tree.Value.IsLeaf() {
		return nil, errors.Errorf("root element <%s> has no fields", RootTag)
	}
	return tree.Value.Record, nil
}

func decodeSize(rec *Record) (Size, error) {
	size, err := record(rec, "", "size")
	if err != nil {
		return Size{}, err
	}

	var s Size
	if s.Height, err = integer(size, "size", "height"); err != nil {
		return Size{}, err
	}
	if s.Width, err = integer(size, "size", "width"); err != nil {
		return Size{}, err
	}
	if _, ok := size.Field("depth"); ok {
		if s.Depth, err = integer(size, "size", "depth"); err != nil {
			return Size{}, err
		}
	}
	return s, nil
}

func decodeObject(v Value, path string) (Object, error) {
	if v.IsLeaf() {
		return Object{}, errors.Errorf("annotation field %q has no fields", path)
	}
	rec := v.Record

	name, err := text(rec, path, "name")
	if err != nil {
		return Object{}, err
	}
	bndbox, err := record(rec, path, "bndbox")
	if err != nil {
		return Object{}, err
	}

	obj := Object{Name: name, Pose: optionalText(rec, "pose")}
	boxPath := join(path, "bndbox")
	for _, c := range []struct {
		tag string
		dst *float32
	}{
		{"xmin", &obj.BndBox.X1},
		{"ymin", &obj.BndBox.Y1},
		{"xmax", &obj.BndBox.X2},
		{"ymax", &obj.BndBox.Y2},
	} {
		if *c.dst, err = float(bndbox, boxPath, c.tag); err != nil {
			return Object{}, err
		}
	}

	if obj.Difficult, err = flag(rec, path, "difficult"); err != nil {
		return Object{}, err
	}
	if _, ok := rec.Field("truncated"); ok {
		if obj.Truncated, err = flag(rec, path, "truncated"); err != nil {
			return Object{}, err
		}
	}
	return obj, nil
}

func join(path, tag string) string {
	if path == "" {
		return tag
	}
	return path + "." + tag
}

func field(rec *Record, path, tag string) (Value, error) {
	v, ok := rec.Field(tag)
	if !ok {
		return Value{}, &MissingFieldError{Path: join(path, tag)}
	}
	return v, nil
}

func record(rec *Record, path, tag string) (*Record, error) {
	v, err := field(rec, path, tag)
	if err != nil {
		return nil, err
	}
	if v.IsLeaf() {
		return nil, errors.Errorf("annotation field %q has no fields", join(path, tag))
	}
	return v.Record, nil
}

func text(rec *Record, path, tag string) (string, error) {
	v, err := field(rec, path, tag)
	if err != nil {
		return "", err
	}
	if !v.IsLeaf() {
		return "", errors.Errorf("annotation field %q is not text", join(path, tag))
	}
	return v.Text, nil
}

func optionalText(rec *Record, tag string) string {
	if v, ok := rec.Field(tag); ok && v.IsLeaf() {
		return v.Text
	}
	return ""
}

func integer(rec *Record, path, tag string) (int, error) {
	s, err := text(rec, path, tag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "annotation field %q", join(path, tag))
	}
	return n, nil
}

func flag(rec *Record, path, tag string) (int64, error) {
	s, err := text(rec, path, tag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "annotation field %q", join(path, tag))
	}
	return n, nil
}

func float(rec *Record, path, tag string) (float32, error) {
	s, err := text(rec, path, tag)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, errors.Wrapf(err, "annotation field %q", join(path, tag))
	}
	return float32(f), nil
}
