package monitoring

import (
	"fmt"
	"log/slog"
	"time"
)

// ObservabilityHook is notified around every provider operation and on pool
// lifecycle events. Metadata never carries plaintext or key material.
type ObservabilityHook interface {
	OnOperationStart(operation string, metadata map[string]any)
	OnOperationComplete(operation string, duration time.Duration, err error, metadata map[string]any)
	OnPoolEvent(event string, metadata map[string]any)
}

// NoOpObservabilityHook ignores all events.
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnOperationStart(operation string, metadata map[string]any) {}
func (n *NoOpObservabilityHook) OnOperationComplete(operation string, duration time.Duration, err error, metadata map[string]any) {
}
func (n *NoOpObservabilityHook) OnPoolEvent(event string, metadata map[string]any) {}

// LoggingObservabilityHook writes events to a structured logger. Starts and
// pool events are logged at debug level.
type LoggingObservabilityHook struct {
	logger *slog.Logger
}

func NewLoggingObservabilityHook(logger *slog.Logger) *LoggingObservabilityHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObservabilityHook{logger: logger}
}

func (l *LoggingObservabilityHook) OnOperationStart(operation string, metadata map[string]any) {
	l.logger.Debug("operation started", append(attrs(metadata), slog.String("operation", operation))...)
}

func (l *LoggingObservabilityHook) OnOperationComplete(operation string, duration time.Duration, err error, metadata map[string]any) {
	args := append(attrs(metadata),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
	)
	if err != nil {
		l.logger.Warn("operation failed", append(args, slog.String("error", err.Error()))...)
		return
	}
	l.logger.Debug("operation completed", args...)
}

func (l *LoggingObservabilityHook) OnPoolEvent(event string, metadata map[string]any) {
	l.logger.Debug("pool event", append(attrs(metadata), slog.String("event", event))...)
}

func attrs(metadata map[string]any) []any {
	out := make([]any, 0, len(metadata))
	for k, v := range metadata {
		out = append(out, slog.Any(k, v))
	}
	return out
}

// MetricsObservabilityHook turns events into metrics:
//
//	confcrypt.<operation>.succeeded / .failed   counters
//	confcrypt.<operation>.duration              timing
//	confcrypt.pool.<event>                      counter
//	confcrypt.pool.active / .idle               gauges, when present in metadata
type MetricsObservabilityHook struct {
	collector MetricsCollector
}

func NewMetricsObservabilityHook(collector MetricsCollector) *MetricsObservabilityHook {
	if collector == nil {
		collector = &NoOpMetricsCollector{}
	}
	return &MetricsObservabilityHook{collector: collector}
}

func (m *MetricsObservabilityHook) OnOperationStart(operation string, metadata map[string]any) {}

func (m *MetricsObservabilityHook) OnOperationComplete(operation string, duration time.Duration, err error, metadata map[string]any) {
	tags := tagsFrom(metadata, "strategy")
	if err != nil {
		errTags := tagsFrom(metadata, "strategy", "error_kind")
		m.collector.IncrementCounter("confcrypt."+operation+".failed", errTags)
	} else {
		m.collector.IncrementCounter("confcrypt."+operation+".succeeded", tags)
	}
	m.collector.RecordTiming("confcrypt."+operation+".duration", duration, tags)
}

func (m *MetricsObservabilityHook) OnPoolEvent(event string, metadata map[string]any) {
	tags := tagsFrom(metadata, "strategy")
	m.collector.IncrementCounter("confcrypt.pool."+event, tags)
	for _, gauge := range []string{"active", "idle"} {
		if v, ok := metadata[gauge].(int); ok {
			m.collector.SetGauge("confcrypt.pool."+gauge, float64(v), tags)
		}
	}
}

func tagsFrom(metadata map[string]any, keys ...string) map[string]string {
	tags := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := metadata[k]; ok {
			tags[k] = fmt.Sprint(v)
		}
	}
	return tags
}

// CompositeObservabilityHook fans events out to several hooks.
type CompositeObservabilityHook struct {
	hooks []ObservabilityHook
}

func NewCompositeObservabilityHook(hooks ...ObservabilityHook) *CompositeObservabilityHook {
	return &CompositeObservabilityHook{hooks: hooks}
}

func (c *CompositeObservabilityHook) OnOperationStart(operation string, metadata map[string]any) {
	for _, hook := range c.hooks {
		hook.OnOperationStart(operation, metadata)
	}
}

func (c *CompositeObservabilityHook) OnOperationComplete(operation string, duration time.Duration, err error, metadata map[string]any) {
	for _, hook := range c.hooks {
		hook.OnOperationComplete(operation, duration, err, metadata)
	}
}

func (c *CompositeObservabilityHook) OnPoolEvent(event string, metadata map[string]any) {
	for _, hook := range c.hooks {
		hook.OnPoolEvent(event, metadata)
	}
}
