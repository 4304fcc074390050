package confcrypt

import (
	"fmt"
	"log/slog"

	"github.com/hengadev/confcrypt/internal/security"
)

// NewProvider validates cfg, builds an engine from it, derives the secret key
// from password and returns a provider of the configured strategy.
//
// The password slice is not retained; callers should wipe it afterwards.
//
// Example usage:
//
//	cfg, err := confcrypt.LoadConfigFromFile("confcrypt.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := confcrypt.NewProvider(cfg, password,
//	    confcrypt.WithLogger(logger),
//	    confcrypt.WithMetricsCollector(metrics),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	sealed, err := provider.Encrypt("postgres://user:secret@db/app")
func NewProvider(cfg Config, password []byte, opts ...ProviderOption) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, newConfigurationError(fmt.Errorf("password is required"))
	}

	o := applyProviderOptions(opts)
	engineOpts := append(cfg.EngineOptions(), WithEngineLogger(o.logger))
	engine, err := NewEngine(append(engineOpts, o.engine...)...)
	if err != nil {
		return nil, err
	}

	key, err := engine.CreateSecretKey(password)
	if err != nil {
		return nil, err
	}

	var provider Provider
	switch cfg.Strategy {
	case StrategyPooled:
		provider, err = NewPooledProvider(engine, key, cfg.PoolConfig(), opts...)
	default:
		provider, err = NewDefaultProvider(engine, key, opts...)
	}
	if err != nil {
		key.Destroy()
		return nil, err
	}

	o.logger.Info("confcrypt provider ready",
		slog.String("provider_id", provider.ID()),
		slog.String("strategy", cfg.Strategy),
		slog.String("kdf", cfg.KDFAlgorithm),
		slog.String("transform", cfg.Transform),
	)
	return provider, nil
}

// NewProviderFromEnv loads the configuration and password from the
// environment and returns a provider.
func NewProviderFromEnv(opts ...ProviderOption) (Provider, error) {
	cfg, err := LoadConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	password, err := PasswordFromEnvironment()
	if err != nil {
		return nil, newConfigurationError(err)
	}
	defer security.ZeroBytes(password)

	return NewProvider(cfg, password, opts...)
}
