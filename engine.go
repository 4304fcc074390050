package confcrypt

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/hengadev/confcrypt/internal/config"
	"github.com/hengadev/confcrypt/internal/crypto"
	"github.com/hengadev/confcrypt/internal/security"
)

// Cipher is a stateful AEAD object bound to one operation at a time by the
// Engine. It must not be shared by concurrent operations.
type Cipher = crypto.Cipher

// Engine derives secret keys from passwords, creates ciphers and performs
// the byte-level encryption with envelope framing:
//
//	base64(IV ‖ ciphertext ‖ tag)
//
// An Engine is safe for concurrent use. Ciphers it creates are not.
type Engine struct {
	kdfAlgorithm  string
	keyAlgorithm  string
	transformName string
	iterations    int
	keyLength     int // bits
	ivLength      int
	tagLength     int
	saltLength    int
	argon2        *Argon2Params

	randomSource RandomSource
	logger       *slog.Logger

	mu     sync.Mutex
	random *security.SecureRandomGenerator
	salt   []byte
}

// NewEngine creates an engine with the default parameters overridden by
// opts. Parameters are checked together; the returned error wraps
// ErrInvalidConfiguration and an errsx.Map keyed by parameter.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		kdfAlgorithm:  DefaultKDFAlgorithm,
		keyAlgorithm:  DefaultKeyAlgorithm,
		transformName: DefaultTransform,
		iterations:    DefaultIterations,
		keyLength:     DefaultKeyLength,
		ivLength:      DefaultIVLength,
		tagLength:     DefaultTagLength,
		saltLength:    DefaultSaltLength,
		randomSource:  security.SystemSource,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.randomSource == nil {
		e.randomSource = security.SystemSource
	}

	err := config.Validate(config.Params{
		KDFAlgorithm: e.kdfAlgorithm,
		KeyAlgorithm: e.keyAlgorithm,
		Transform:    e.transformName,
		Iterations:   e.iterations,
		KeyLength:    e.keyLength,
		IVLength:     e.ivLength,
		TagLength:    e.tagLength,
		SaltLength:   e.saltLength,
		Salt:         e.salt,
		Argon2:       e.argon2,
	}, true)
	if err != nil {
		return nil, newConfigurationError(err)
	}
	return e, nil
}

// Transform returns the configured cipher transform name.
func (e *Engine) Transform() string {
	return e.transformName
}

// KeyAlgorithm returns the algorithm derived keys are created for.
func (e *Engine) KeyAlgorithm() string {
	return e.keyAlgorithm
}

// SecureRandom returns the engine's strong randomness generator, creating it
// on first use.
func (e *Engine) SecureRandom() (io.Reader, error) {
	return e.secureRandom()
}

func (e *Engine) secureRandom() (*security.SecureRandomGenerator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.random != nil {
		return e.random, nil
	}
	random, err := security.NewSecureRandomGenerator(e.randomSource)
	if err != nil {
		return nil, newProviderError("create secure random", err)
	}
	e.random = random
	return random, nil
}

// CreateSalt returns size random bytes.
func (e *Engine) CreateSalt(size int) ([]byte, error) {
	random, err := e.secureRandom()
	if err != nil {
		return nil, err
	}
	salt, err := random.Generate(size)
	if err != nil {
		return nil, newProviderError("create salt", err)
	}
	return salt, nil
}

// Salt returns the configured salt, or a random salt generated on first call
// and cached for the lifetime of the engine. The result is a copy.
func (e *Engine) Salt() ([]byte, error) {
	e.mu.Lock()
	cached := e.salt
	e.mu.Unlock()
	if cached != nil {
		return security.SecureCopy(cached), nil
	}

	salt, err := e.CreateSalt(e.saltLength)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// another caller may have won the race; keep the first salt
	if e.salt == nil {
		e.salt = salt
		e.logger.Debug("generated salt", slog.Int("length", len(salt)))
	}
	return security.SecureCopy(e.salt), nil
}

// CreateSecretKey derives a key from password with the engine's KDF and
// salt. The password slice is not retained.
func (e *Engine) CreateSecretKey(password []byte) (*SecretKey, error) {
	salt, err := e.Salt()
	if err != nil {
		return nil, err
	}
	defer security.ZeroBytes(salt)

	params := crypto.KDFParams{
		Iterations: e.iterations,
		KeyLength:  e.keyLength / 8,
	}
	if e.argon2 != nil {
		params.Argon2Time = e.argon2.Iterations
		params.Argon2Memory = e.argon2.Memory
		params.Argon2Parallelism = e.argon2.Parallelism
	}

	raw, err := crypto.DeriveKey(e.kdfAlgorithm, password, salt, params)
	if err != nil {
		return nil, newProviderError("derive key", err)
	}
	defer security.ZeroBytes(raw)

	return NewSecretKey(e.keyAlgorithm, raw)
}

// CreateCipher returns a fresh, unkeyed cipher for the configured transform.
func (e *Engine) CreateCipher() (*Cipher, error) {
	transform, err := crypto.LookupTransform(e.transformName)
	if err != nil {
		return nil, newProviderError("create cipher", err)
	}
	return crypto.NewCipher(transform), nil
}

// Encrypt seals value under key with a fresh random IV and returns the
// base64 envelope. c must not be in use by another operation.
func (e *Engine) Encrypt(value string, key *SecretKey, c *Cipher) (string, error) {
	if key == nil || c == nil {
		return "", fmt.Errorf("%w: encrypt: key and cipher are required", ErrProvider)
	}

	random, err := e.secureRandom()
	if err != nil {
		return "", err
	}
	iv, err := random.Generate(e.ivLength)
	if err != nil {
		return "", newProviderError("generate iv", err)
	}

	out := make([]byte, len(iv), len(iv)+len(value)+e.tagLength)
	copy(out, iv)

	err = key.use(func(raw []byte) error {
		if err := c.Init(crypto.ModeEncrypt, raw, key.Algorithm(), iv, e.tagLength); err != nil {
			return err
		}
		out, err = c.DoFinal(out, []byte(value))
		return err
	})
	if err != nil {
		return "", newProviderError("encrypt", err)
	}
	return crypto.EncodeEnvelope(out), nil
}

// Decrypt opens a base64 envelope produced by Encrypt. A failed
// authentication check yields an error matching ErrWrongKey; every other
// failure matches ErrProvider only.
func (e *Engine) Decrypt(value string, key *SecretKey, c *Cipher) (string, error) {
	if key == nil || c == nil {
		return "", fmt.Errorf("%w: decrypt: key and cipher are required", ErrProvider)
	}

	iv, body, err := crypto.DecodeEnvelope(value, e.ivLength, e.tagLength)
	if err != nil {
		return "", newProviderError("decrypt", err)
	}

	var plaintext []byte
	err = key.use(func(raw []byte) error {
		if err := c.Init(crypto.ModeDecrypt, raw, key.Algorithm(), iv, e.tagLength); err != nil {
			return err
		}
		plaintext, err = c.DoFinal(nil, body)
		return err
	})
	switch {
	case errors.Is(err, crypto.ErrAuthentication):
		return "", newWrongKeyError(err)
	case err != nil:
		return "", newProviderError("decrypt", err)
	}
	return string(plaintext), nil
}
