package confcrypt

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/hengadev/confcrypt/internal/config"
	"github.com/hengadev/errsx"
)

// Config holds every knob of an engine plus the provider strategy.
//
// This struct contains only data. It can be built in code, loaded from the
// environment (LoadConfigFromEnvironment, LoadConfigFromDotEnv) or from a
// YAML file (LoadConfigFromFile), and is passed explicitly to NewProvider.
//
// Zero fields take the defaults from constants.go when Validate runs.
// Encrypting and decrypting parties must agree on every KDF and cipher
// field, and on the salt.
//
// Example usage:
//
//	cfg := confcrypt.Config{
//	    Salt:     "3q2+7w==",
//	    Strategy: confcrypt.StrategyPooled,
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := confcrypt.NewProvider(cfg, password)
type Config struct {
	// KDFAlgorithm is the key derivation function.
	// Default: PBKDF2WithHmacSHA256
	KDFAlgorithm string `yaml:"kdf_algorithm"`

	// KeyAlgorithm is the algorithm derived keys are created for.
	// Default: AES
	KeyAlgorithm string `yaml:"key_algorithm"`

	// Transform is the cipher transform.
	// Default: AES/GCM/NoPadding
	Transform string `yaml:"transform"`

	// Iterations is the PBKDF2 iteration count. Default: 65536
	Iterations int `yaml:"iterations"`

	// KeyLength is the derived key length in bits. Default: 256
	KeyLength int `yaml:"key_length"`

	// IVLength and TagLength are in bytes. Defaults: 12 and 16
	IVLength  int `yaml:"iv_length"`
	TagLength int `yaml:"tag_length"`

	// SaltLength is the length in bytes of a generated salt. Default: 8
	SaltLength int `yaml:"salt_length"`

	// Salt is the standard base64 encoded salt. When empty, each engine
	// generates and caches a random salt of SaltLength bytes.
	Salt string `yaml:"salt,omitempty"`

	// Argon2 holds the cost parameters when KDFAlgorithm is Argon2id.
	Argon2 *Argon2Params `yaml:"argon2,omitempty"`

	// Strategy is "default" or "pooled". Default: default
	Strategy string `yaml:"strategy"`

	// Pool knobs, pooled strategy only. See PoolConfig.
	PoolMaxTotal           int           `yaml:"pool_max_total,omitempty"`
	PoolMaxWait            time.Duration `yaml:"pool_max_wait,omitempty"`
	PoolBlockWhenExhausted bool          `yaml:"pool_block_when_exhausted,omitempty"`
}

// Validate applies defaults to empty fields and checks the configuration.
// The returned error wraps ErrInvalidConfiguration and an errsx.Map keyed
// by field.
func (c *Config) Validate() error {
	c.applyDefaults()

	salt, saltErr := c.SaltBytes()
	err := config.Validate(c.params(salt), true)

	errs := errsx.Map{}
	if err != nil {
		m, ok := err.(errsx.Map)
		if !ok {
			return newConfigurationError(err)
		}
		errs = m
	}
	if saltErr != nil {
		errs.Set("salt", saltErr)
	}

	if err := errs.AsError(); err != nil {
		return newConfigurationError(err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.KDFAlgorithm == "" {
		c.KDFAlgorithm = DefaultKDFAlgorithm
	}
	if c.KeyAlgorithm == "" {
		c.KeyAlgorithm = DefaultKeyAlgorithm
	}
	if c.Transform == "" {
		c.Transform = DefaultTransform
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.KeyLength == 0 {
		c.KeyLength = DefaultKeyLength
	}
	if c.IVLength == 0 {
		c.IVLength = DefaultIVLength
	}
	if c.TagLength == 0 {
		c.TagLength = DefaultTagLength
	}
	if c.SaltLength == 0 {
		c.SaltLength = DefaultSaltLength
	}
	if c.Strategy == "" {
		c.Strategy = StrategyDefault
	}
	if c.PoolBlockWhenExhausted && c.PoolMaxWait == 0 {
		c.PoolMaxWait = DefaultPoolMaxWait
	}
}

// SaltBytes decodes Salt. An empty Salt yields nil.
func (c *Config) SaltBytes() ([]byte, error) {
	if c.Salt == "" {
		return nil, nil
	}
	salt, err := base64.StdEncoding.DecodeString(c.Salt)
	if err != nil {
		return nil, fmt.Errorf("salt must be standard base64: %w", err)
	}
	return salt, nil
}

// SetSalt stores salt in its encoded form.
func (c *Config) SetSalt(salt []byte) {
	c.Salt = base64.StdEncoding.EncodeToString(salt)
}

// PoolConfig returns the pool knobs.
func (c *Config) PoolConfig() PoolConfig {
	return PoolConfig{
		MaxTotal:           c.PoolMaxTotal,
		BlockWhenExhausted: c.PoolBlockWhenExhausted,
		MaxWait:            c.PoolMaxWait,
	}
}

// EngineOptions translates the configuration into engine options. Salt is
// assumed valid; call Validate first.
func (c *Config) EngineOptions() []EngineOption {
	opts := []EngineOption{
		WithKDFAlgorithm(c.KDFAlgorithm),
		WithKeyAlgorithm(c.KeyAlgorithm),
		WithTransform(c.Transform),
		WithIterations(c.Iterations),
		WithKeyLength(c.KeyLength),
		WithIVLength(c.IVLength),
		WithTagLength(c.TagLength),
		WithSaltLength(c.SaltLength),
	}
	if salt, err := c.SaltBytes(); err == nil && len(salt) > 0 {
		opts = append(opts, WithSalt(salt))
	}
	if c.Argon2 != nil {
		opts = append(opts, WithArgon2Params(c.Argon2))
	}
	return opts
}

func (c *Config) params(salt []byte) config.Params {
	return config.Params{
		KDFAlgorithm: c.KDFAlgorithm,
		KeyAlgorithm: c.KeyAlgorithm,
		Transform:    c.Transform,
		Iterations:   c.Iterations,
		KeyLength:    c.KeyLength,
		IVLength:     c.IVLength,
		TagLength:    c.TagLength,
		SaltLength:   c.SaltLength,
		Salt:         salt,
		Argon2:       c.Argon2,
		Strategy:     c.Strategy,
		PoolMaxTotal: c.PoolMaxTotal,
		PoolMaxWait:  c.PoolMaxWait,
	}
}
