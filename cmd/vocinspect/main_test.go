package main

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/nvr-ai/go-voc/dataset"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const horseAnnotation = `<annotation>
	<filename>2008_000008.jpg</filename>
	<size><width>500</width><height>442</height><depth>3</depth></size>
	<object>
		<name>horse</name>
		<bndbox><xmin>53</xmin><ymin>87</ymin><xmax>471</xmax><ymax>420</ymax></bndbox>
		<difficult>0</difficult>
	</object>
</annotation>`

func newFixture(t *testing.T, width, height int) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	base := filepath.Join("/data", "VOCdevkit", "VOC2012")
	write := func(path string, data []byte) {
		require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil))

	write("/data/classes.json", []byte(`{"horse": 3}`))
	write(filepath.Join(base, "ImageSets", "Main", "train.txt"), []byte("2008_000008\n"))
	write(filepath.Join(base, "Annotations", "2008_000008.xml"), []byte(horseAnnotation))
	write(filepath.Join(base, "JPEGImages", "2008_000008.jpg"), buf.Bytes())
	return fs
}

func baseArgs() args {
	return args{Root: "/data", Classes: "/data/classes.json", Groups: -1, Workers: 2, LogLevel: "error"}
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := "dataset:\n  root: /from/file\n  class_table: /from/file.json\n  split: val\n"
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(doc), 0o644))

	cfg, err := resolveConfig(fs, args{Config: "/c.yaml", Root: "/from/flag"})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Dataset.Root)
	assert.Equal(t, "/from/file.json", cfg.Dataset.ClassTable)
	assert.Equal(t, "val", cfg.Dataset.Split)

	cfg, err = resolveConfig(fs, args{Letterbox: "ssd-300"})
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Transform.Letterbox.Width)

	_, err = resolveConfig(fs, args{Split: "test"})
	assert.Error(t, err)
}

func TestRunDump(t *testing.T) {
	a := baseArgs()
	a.Dump = true

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newFixture(t, 500, 442), a, &out, io.Discard, io.Discard))

	var line dumpLine
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	assert.Equal(t, "2008_000008", line.ID)
	assert.Equal(t, []int64{3}, line.Labels)
	assert.Equal(t, []string{"horse"}, line.Names)
	assert.Equal(t, [][4]float32{{53, 87, 471, 420}}, line.Boxes)
	assert.Equal(t, []float32{139194}, line.Area)
	assert.Equal(t, []int{3, 442, 500}, line.TensorShape)
}

func TestRunGroups(t *testing.T) {
	a := baseArgs()
	a.Groups = 1

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newFixture(t, 500, 442), a, &out, io.Discard, io.Discard))
	assert.Equal(t, `{"group":2,"count":1}`, strings.TrimSpace(out.String()))
}

func TestRunBench(t *testing.T) {
	a := baseArgs()
	a.Bench = true
	a.Limit = 1
	assert.NoError(t, run(context.Background(), newFixture(t, 500, 442), a, &bytes.Buffer{}, io.Discard, io.Discard))
}

func TestCheck(t *testing.T) {
	a := baseArgs()
	a.Check = true
	assert.NoError(t, run(context.Background(), newFixture(t, 500, 442), a, &bytes.Buffer{}, io.Discard, io.Discard))

	err := run(context.Background(), newFixture(t, 400, 300), a, &bytes.Buffer{}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "problems")
}

func TestCheckCountsProblems(t *testing.T) {
	fs := newFixture(t, 400, 300)
	ds, err := dataset.New(dataset.Config{Root: "/data", ClassTablePath: "/data/classes.json", Fs: fs})
	require.NoError(t, err)

	problems, err := check(fs, ds, ds.Len(), zap.NewNop())
	require.NoError(t, err)
	// One size mismatch plus the horse box outside a 400x300 image.
	assert.Equal(t, 2, problems)
}

func TestRunOpenFailureIsNotLogged(t *testing.T) {
	a := baseArgs()
	a.Classes = "/data/missing.json"
	a.LogLevel = "debug"

	var logOut, logErr bytes.Buffer
	err := run(context.Background(), newFixture(t, 500, 442), a, &bytes.Buffer{}, &logOut, &logErr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open dataset")
	assert.Empty(t, logErr.String())
	assert.NotContains(t, logOut.String(), "missing.json")
}
