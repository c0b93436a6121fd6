// Package classes - Class name to label index tables.
package classes

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrUnknownClass is matched by every UnknownClassError.
var ErrUnknownClass = errors.New("unknown class")

// UnknownClassError reports a class name or index absent from a Table.
type UnknownClassError struct {
	Name  string
	Index int64
}

func (e *UnknownClassError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown class name %q", e.Name)
	}
	return fmt.Sprintf("unknown class index %d", e.Index)
}

// Is reports whether target is ErrUnknownClass.
func (e *UnknownClassError) Is(target error) bool {
	return target == ErrUnknownClass
}

// Table maps class names to non-negative label indices. It is immutable once
// built and safe for concurrent use.
type Table struct {
	nameToIdx map[string]int64
	idxToName map[int64]string
}

// NewTable builds a table from a name to index mapping.
//
// Arguments:
//   - m: The mapping. Indices must be non-negative and unique.
//
// Returns:
//   - *Table: The table.
//   - error: An error if an index is negative or shared by two names.
func NewTable(m map[string]int64) (*Table, error) {
	t := &Table{
		nameToIdx: make(map[string]int64, len(m)),
		idxToName: make(map[int64]string, len(m)),
	}
	for name, idx := range m {
		if idx < 0 {
			return nil, errors.Errorf("class %q has negative index %d", name, idx)
		}
		if other, ok := t.idxToName[idx]; ok {
			return nil, errors.Errorf("classes %q and %q share index %d", other, name, idx)
		}
		t.nameToIdx[name] = idx
		t.idxToName[idx] = name
	}
	return t, nil
}

// Load reads a class table from a JSON object of the form {"name": index}.
//
// Arguments:
//   - fs: The filesystem to read from.
//   - path: The path of the JSON file.
//
// Returns:
//   - *Table: The table.
//   - error: An error if the file cannot be read or its content is invalid.
//
// @example
// table, err := classes.Load(afero.NewOsFs(), "pascal_voc_classes.json")
func Load(fs afero.Fs, path string) (*Table, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "read class table")
	}

	var m map[string]int64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parse class table %s", path)
	}
	if m == nil {
		return nil, errors.Errorf("class table %s is not a JSON object", path)
	}

	t, err := NewTable(m)
	if err != nil {
		return nil, errors.Wrapf(err, "class table %s", path)
	}
	return t, nil
}

// Index returns the label index of a class name.
func (t *Table) Index(name string) (int64, error) {
	idx, ok := t.nameToIdx[name]
	if !ok {
		return 0, &UnknownClassError{Name: name}
	}
	return idx, nil
}

// Name returns the class name of a label index.
func (t *Table) Name(idx int64) (string, error) {
	name, ok := t.idxToName[idx]
	if !ok {
		return "", &UnknownClassError{Index: idx}
	}
	return name, nil
}

// Len returns the number of classes.
func (t *Table) Len() int {
	return len(t.nameToIdx)
}

// Names returns the class names ordered by index.
func (t *Table) Names() []string {
	idxs := make([]int64, 0, len(t.idxToName))
	for idx := range t.idxToName {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	names := make([]string, len(idxs))
	for i, idx := range idxs {
		names[i] = t.idxToName[idx]
	}
	return names
}

var pascalVOC = []string{
	"aeroplane", "bicycle", "bird", "boat", "bottle", "bus", "car", "cat", "chair", "cow",
	"diningtable", "dog", "horse", "motorbike", "person", "pottedplant", "sheep", "sofa", "train", "tvmonitor",
}

// PascalVOC returns the 20 PASCAL VOC classes indexed from 1; index 0 is
// left for the background.
func PascalVOC() *Table {
	m := make(map[string]int64, len(pascalVOC))
	for i, name := range pascalVOC {
		m[name] = int64(i + 1)
	}
	t, _ := NewTable(m)
	return t
}
