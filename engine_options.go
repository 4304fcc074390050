package confcrypt

import (
	"log/slog"

	"github.com/hengadev/confcrypt/internal/security"
)

// RandomSource opens the strong randomness source used for IVs and salts.
type RandomSource = security.SourceFunc

type EngineOption func(e *Engine)

// WithKDFAlgorithm selects the key derivation function, e.g.
// "PBKDF2WithHmacSHA256" or "Argon2id".
func WithKDFAlgorithm(name string) EngineOption {
	return func(e *Engine) {
		e.kdfAlgorithm = name
	}
}

func WithKeyAlgorithm(name string) EngineOption {
	return func(e *Engine) {
		e.keyAlgorithm = name
	}
}

// WithTransform selects the cipher transform, e.g. "AES/GCM/NoPadding".
func WithTransform(name string) EngineOption {
	return func(e *Engine) {
		e.transformName = name
	}
}

func WithIterations(n int) EngineOption {
	return func(e *Engine) {
		e.iterations = n
	}
}

// WithKeyLength sets the derived key length in bits.
func WithKeyLength(bits int) EngineOption {
	return func(e *Engine) {
		e.keyLength = bits
	}
}

func WithIVLength(n int) EngineOption {
	return func(e *Engine) {
		e.ivLength = n
	}
}

func WithTagLength(n int) EngineOption {
	return func(e *Engine) {
		e.tagLength = n
	}
}

// WithSalt fixes the salt instead of generating one. The slice is copied.
func WithSalt(salt []byte) EngineOption {
	return func(e *Engine) {
		e.salt = security.SecureCopy(salt)
	}
}

// WithSaltLength sets the length of a generated salt.
func WithSaltLength(n int) EngineOption {
	return func(e *Engine) {
		e.saltLength = n
	}
}

func WithArgon2Params(params *Argon2Params) EngineOption {
	return func(e *Engine) {
		e.argon2 = params
	}
}

func WithRandomSource(source RandomSource) EngineOption {
	return func(e *Engine) {
		e.randomSource = source
	}
}

func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}
