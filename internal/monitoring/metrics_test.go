package monitoring

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpMetricsCollector(t *testing.T) {
	collector := &NoOpMetricsCollector{}
	tags := map[string]string{"test": "value"}

	collector.IncrementCounter("test_counter", tags)
	collector.SetGauge("test_gauge", 42.5, tags)
	collector.RecordTiming("test_timing", time.Millisecond, tags)

	assert.NoError(t, collector.Flush())
}

func TestInMemoryMetricsCollector(t *testing.T) {
	collector := NewInMemoryMetricsCollector()
	tags := map[string]string{"strategy": "pooled", "env": "test"}

	collector.IncrementCounter("requests", tags)
	collector.IncrementCounter("requests", map[string]string{"env": "test", "strategy": "pooled"})
	collector.IncrementCounter("requests", nil)
	collector.SetGauge("active", 3, tags)
	collector.SetGauge("active", 5, tags)
	collector.RecordTiming("latency", time.Millisecond, tags)
	collector.RecordTiming("latency", 2*time.Millisecond, tags)

	assert.Equal(t, int64(2), collector.GetCounter("requests", tags))
	assert.Equal(t, int64(1), collector.GetCounter("requests", nil))
	assert.Equal(t, 5.0, collector.GetGauge("active", tags))
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, collector.GetTimings("latency", tags))
	assert.NoError(t, collector.Flush())

	collector.Reset()
	assert.Zero(t, collector.GetCounter("requests", tags))
	assert.Empty(t, collector.GetTimings("latency", tags))
}

func TestInMemoryMetricsCollector_Concurrent(t *testing.T) {
	collector := NewInMemoryMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				collector.IncrementCounter("hits", map[string]string{"k": "v"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), collector.GetCounter("hits", map[string]string{"k": "v"}))
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "name", seriesKey("name", nil))
	assert.Equal(t, "name,a=1,b=2", seriesKey("name", map[string]string{"b": "2", "a": "1"}))
}

func TestMetricsObservabilityHook(t *testing.T) {
	collector := NewInMemoryMetricsCollector()
	hook := NewMetricsObservabilityHook(collector)
	meta := map[string]any{"strategy": "default"}
	tags := map[string]string{"strategy": "default"}

	hook.OnOperationStart("encrypt", meta)
	hook.OnOperationComplete("encrypt", time.Millisecond, nil, meta)
	hook.OnOperationComplete("decrypt", time.Millisecond, errors.New("bad tag"),
		map[string]any{"strategy": "default", "error_kind": "wrong_key"})
	hook.OnPoolEvent("created", map[string]any{"strategy": "default", "active": 2, "idle": 1})

	assert.Equal(t, int64(1), collector.GetCounter("confcrypt.encrypt.succeeded", tags))
	assert.Equal(t, int64(1), collector.GetCounter("confcrypt.decrypt.failed",
		map[string]string{"strategy": "default", "error_kind": "wrong_key"}))
	assert.Len(t, collector.GetTimings("confcrypt.encrypt.duration", tags), 1)
	assert.Len(t, collector.GetTimings("confcrypt.decrypt.duration", tags), 1)
	assert.Equal(t, int64(1), collector.GetCounter("confcrypt.pool.created", tags))
	assert.Equal(t, 2.0, collector.GetGauge("confcrypt.pool.active", tags))
	assert.Equal(t, 1.0, collector.GetGauge("confcrypt.pool.idle", tags))

	// nil collector falls back to no-op
	NewMetricsObservabilityHook(nil).OnOperationComplete("encrypt", 0, nil, nil)
}

func TestLoggingObservabilityHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hook := NewLoggingObservabilityHook(logger)

	hook.OnOperationStart("encrypt", map[string]any{"provider_id": "p1"})
	hook.OnOperationComplete("decrypt", time.Millisecond, errors.New("wrong key"), nil)
	hook.OnPoolEvent("created", map[string]any{"active": 1})

	out := buf.String()
	assert.Contains(t, out, `"msg":"operation started"`)
	assert.Contains(t, out, `"provider_id":"p1"`)
	assert.Contains(t, out, `"msg":"operation failed"`)
	assert.Contains(t, out, `"error":"wrong key"`)
	assert.Contains(t, out, `"event":"created"`)
}

func TestCompositeObservabilityHook(t *testing.T) {
	a := NewInMemoryMetricsCollector()
	b := NewInMemoryMetricsCollector()
	hook := NewCompositeObservabilityHook(NewMetricsObservabilityHook(a), NewMetricsObservabilityHook(b), &NoOpObservabilityHook{})

	hook.OnOperationStart("encrypt", nil)
	hook.OnOperationComplete("encrypt", time.Millisecond, nil, nil)
	hook.OnPoolEvent("reclaimed", nil)

	for _, c := range []*InMemoryMetricsCollector{a, b} {
		assert.Equal(t, int64(1), c.GetCounter("confcrypt.encrypt.succeeded", map[string]string{}))
		assert.Equal(t, int64(1), c.GetCounter("confcrypt.pool.reclaimed", nil))
	}
}
