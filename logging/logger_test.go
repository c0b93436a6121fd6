package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var e map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &e))
		entries = append(entries, e)
	}
	return entries
}

func TestNewWithWritersSplitsByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger, err := NewWithWriters("debug", &out, &errOut)
	require.NoError(t, err)

	logger.Debug("fetched", zap.Int("index", 3))
	logger.Error("broken", zap.String("id", "2008_000008"))
	require.NoError(t, logger.Sync())

	info := decodeLines(t, &out)
	require.Len(t, info, 1)
	assert.Equal(t, "fetched", info[0]["msg"])
	assert.Equal(t, "debug", info[0]["level"])
	assert.EqualValues(t, 3, info[0]["index"])
	assert.Contains(t, info[0], "caller")
	assert.Contains(t, info[0], "ts")

	errs := decodeLines(t, &errOut)
	require.Len(t, errs, 1)
	assert.Equal(t, "broken", errs[0]["msg"])
}

func TestNewWithWritersLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		entries int
		wantErr bool
	}{
		{name: "default is info", level: "", entries: 2},
		{name: "warn", level: "warn", entries: 1},
		{name: "debug", level: "debug", entries: 3},
		{name: "unknown", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger, err := NewWithWriters(tt.level, &out, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			assert.Len(t, decodeLines(t, &out), tt.entries)
		})
	}
}
