package confcrypt

import (
	"log/slog"

	"github.com/hengadev/confcrypt/internal/monitoring"
)

// MetricsCollector receives counters, gauges and timings from providers.
type MetricsCollector = monitoring.MetricsCollector

// ObservabilityHook is notified around every provider operation and on pool
// events. Metadata never carries plaintext, passwords or key material.
type ObservabilityHook = monitoring.ObservabilityHook

type (
	NoOpMetricsCollector       = monitoring.NoOpMetricsCollector
	InMemoryMetricsCollector   = monitoring.InMemoryMetricsCollector
	NoOpObservabilityHook      = monitoring.NoOpObservabilityHook
	LoggingObservabilityHook   = monitoring.LoggingObservabilityHook
	MetricsObservabilityHook   = monitoring.MetricsObservabilityHook
	CompositeObservabilityHook = monitoring.CompositeObservabilityHook
)

func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return monitoring.NewInMemoryMetricsCollector()
}

func NewLoggingObservabilityHook(logger *slog.Logger) *LoggingObservabilityHook {
	return monitoring.NewLoggingObservabilityHook(logger)
}

func NewMetricsObservabilityHook(collector MetricsCollector) *MetricsObservabilityHook {
	return monitoring.NewMetricsObservabilityHook(collector)
}

func NewCompositeObservabilityHook(hooks ...ObservabilityHook) *CompositeObservabilityHook {
	return monitoring.NewCompositeObservabilityHook(hooks...)
}
