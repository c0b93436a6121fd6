package util

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// LoadSampleIDs reads a split file with one sample ID per line.
//
// Surrounding whitespace is trimmed from every line and blank or
// whitespace-only lines are skipped. The remaining IDs keep file order.
//
// Arguments:
//   - fs: The filesystem to read from.
//   - path: Path of the split file, e.g. ImageSets/Main/train.txt.
//
// Returns:
//   - []string: The sample IDs.
//   - error: Error if the file cannot be read.
func LoadSampleIDs(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open split file")
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read split file %s", path)
	}
	return ids, nil
}
