package confcrypt

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hengadev/errsx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfigFromEnvironment loads configuration from environment variables.
//
// Every variable is optional; unset ones take the defaults:
//   - CONFCRYPT_KDF_ALGORITHM, CONFCRYPT_KEY_ALGORITHM, CONFCRYPT_TRANSFORM
//   - CONFCRYPT_ITERATIONS, CONFCRYPT_KEY_LENGTH (bits)
//   - CONFCRYPT_IV_LENGTH, CONFCRYPT_TAG_LENGTH, CONFCRYPT_SALT_LENGTH (bytes)
//   - CONFCRYPT_SALT (standard base64)
//   - CONFCRYPT_ARGON2_MEMORY, CONFCRYPT_ARGON2_ITERATIONS, CONFCRYPT_ARGON2_PARALLELISM
//   - CONFCRYPT_STRATEGY ("default" or "pooled")
//   - CONFCRYPT_POOL_MAX_TOTAL, CONFCRYPT_POOL_MAX_WAIT, CONFCRYPT_POOL_BLOCK_WHEN_EXHAUSTED
//
// The returned config is validated.
//
// Example usage:
//
//	// export CONFCRYPT_SALT="AAAAAAAAAAA="
//	// export CONFCRYPT_STRATEGY=pooled
//	cfg, err := confcrypt.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	password, err := confcrypt.PasswordFromEnvironment()
//	provider, err := confcrypt.NewProvider(cfg, password)
func LoadConfigFromEnvironment() (Config, error) {
	return loadConfig(os.LookupEnv)
}

// LoadConfigFromDotEnv reads the given .env files (".env" when none are
// given) and loads configuration from them. Variables already set in the
// process environment take precedence. The process environment is not
// modified.
func LoadConfigFromDotEnv(filenames ...string) (Config, error) {
	values, err := godotenv.Read(filenames...)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}

	return loadConfig(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	})
}

func loadConfig(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	cfg := Config{
		KDFAlgorithm: get(EnvKDFAlgorithm),
		KeyAlgorithm: get(EnvKeyAlgorithm),
		Transform:    get(EnvTransform),
		Salt:         get(EnvSalt),
		Strategy:     get(EnvStrategy),
	}

	errs := errsx.Map{}
	parseInt(lookup, EnvIterations, &cfg.Iterations, &errs)
	parseInt(lookup, EnvKeyLength, &cfg.KeyLength, &errs)
	parseInt(lookup, EnvIVLength, &cfg.IVLength, &errs)
	parseInt(lookup, EnvTagLength, &cfg.TagLength, &errs)
	parseInt(lookup, EnvSaltLength, &cfg.SaltLength, &errs)
	parseInt(lookup, EnvPoolMaxTotal, &cfg.PoolMaxTotal, &errs)

	if v := get(EnvPoolMaxWait); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs.Set(EnvPoolMaxWait, err)
		}
		cfg.PoolMaxWait = d
	}
	if v := get(EnvPoolBlockWhenExhausted); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs.Set(EnvPoolBlockWhenExhausted, err)
		}
		cfg.PoolBlockWhenExhausted = b
	}

	argon2 := DefaultArgon2Params()
	var memory, iterations, parallelism int
	set := parseInt(lookup, EnvArgon2Memory, &memory, &errs)
	set = parseInt(lookup, EnvArgon2Iterations, &iterations, &errs) || set
	set = parseInt(lookup, EnvArgon2Parallelism, &parallelism, &errs) || set
	if set {
		if memory > 0 {
			argon2.Memory = uint32(memory)
		}
		if iterations > 0 {
			argon2.Iterations = uint32(iterations)
		}
		if parallelism > 0 {
			argon2.Parallelism = uint8(min(parallelism, 255))
		}
		cfg.Argon2 = argon2
	}

	if err := errs.AsError(); err != nil {
		return Config{}, newConfigurationError(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// parseInt stores the integer value of key in dst and reports whether the
// variable was set.
func parseInt(lookup func(string) (string, bool), key string, dst *int, errs *errsx.Map) bool {
	v, ok := lookup(key)
	if !ok || v == "" {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.Set(key, fmt.Errorf("must be an integer, got %q", v))
		return true
	}
	*dst = n
	return true
}

// PasswordFromEnvironment returns the password held in CONFCRYPT_PASSWORD.
func PasswordFromEnvironment() ([]byte, error) {
	v := os.Getenv(EnvPassword)
	if v == "" {
		return nil, fmt.Errorf("%s environment variable is required", EnvPassword)
	}
	return []byte(v), nil
}

// LoadConfigFromFile reads a YAML configuration file and validates it.
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML. The file is created with owner-only
// permissions since it may carry the salt.
func SaveConfig(cfg Config, path string) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
