package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecordOperation(t *testing.T) {
	p := New(2)
	p.RecordOperation("get", 10*time.Millisecond)
	p.RecordOperation("get", 30*time.Millisecond)
	p.RecordOperation("get", 50*time.Millisecond)
	p.RecordOperation("height_width", time.Millisecond)

	ops := p.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, OperationStats{
		Name:  "get",
		Count: 3,
		Avg:   40 * time.Millisecond,
		Min:   10 * time.Millisecond,
		Max:   50 * time.Millisecond,
	}, ops[0])
	assert.Equal(t, "height_width", ops[1].Name)
}

func TestStartOperationConcurrent(t *testing.T) {
	p := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done := p.StartOperation("get")
			done()
		}()
	}
	wg.Wait()

	ops := p.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, int64(8), ops[0].Count)
}

func TestRecordMetric(t *testing.T) {
	p := New(0)
	for _, v := range []float64{2, 4, 9} {
		p.RecordMetric("objects", v)
	}

	metrics := p.Metrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, MetricStats{Name: "objects", Count: 3, Avg: 5, Min: 2, Max: 9}, metrics[0])
}

func TestReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := New(0)
	p.RecordOperation("get", time.Millisecond)
	p.RecordMetric("objects", 1)

	p.Report(zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("profiler report").Len())
	assert.Equal(t, 1, logs.FilterMessage("operation timing").Len())
	assert.Equal(t, 1, logs.FilterMessage("metric").Len())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes uint64
		want  string
	}{
		{name: "bytes", bytes: 512, want: "512 B"},
		{name: "kilobytes", bytes: 1536, want: "1.5 KB"},
		{name: "megabytes", bytes: 3 * 1024 * 1024, want: "3.0 MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatBytes(tt.bytes))
		})
	}
}
