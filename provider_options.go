package confcrypt

import "log/slog"

type providerOptions struct {
	logger  *slog.Logger
	metrics MetricsCollector
	hooks   []ObservabilityHook
	engine  []EngineOption
}

type ProviderOption func(o *providerOptions)

// WithLogger sets the logger for provider lifecycle and operation events.
// Operations are logged at debug level, failures at warn level.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(o *providerOptions) {
		o.logger = logger
	}
}

// WithMetricsCollector reports operation counters and timings, plus pool
// gauges for the pooled strategy.
func WithMetricsCollector(collector MetricsCollector) ProviderOption {
	return func(o *providerOptions) {
		o.metrics = collector
	}
}

// WithObservabilityHook adds a hook. It may be given several times.
func WithObservabilityHook(hook ObservabilityHook) ProviderOption {
	return func(o *providerOptions) {
		if hook != nil {
			o.hooks = append(o.hooks, hook)
		}
	}
}

// WithEngineOptions applies extra engine options on top of the
// configuration when NewProvider builds the engine.
func WithEngineOptions(opts ...EngineOption) ProviderOption {
	return func(o *providerOptions) {
		o.engine = append(o.engine, opts...)
	}
}

func applyProviderOptions(opts []ProviderOption) providerOptions {
	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func (o providerOptions) hook() ObservabilityHook {
	hooks := []ObservabilityHook{NewLoggingObservabilityHook(o.logger)}
	if o.metrics != nil {
		hooks = append(hooks, NewMetricsObservabilityHook(o.metrics))
	}
	hooks = append(hooks, o.hooks...)
	return NewCompositeObservabilityHook(hooks...)
}
