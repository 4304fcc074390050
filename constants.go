package confcrypt

import (
	"time"

	"github.com/hengadev/confcrypt/internal/config"
	"github.com/hengadev/confcrypt/internal/crypto"
)

// Default engine parameters
const (
	// DefaultKDFAlgorithm is PBKDF2 with HMAC-SHA256.
	DefaultKDFAlgorithm = crypto.KDFPBKDF2SHA256

	// DefaultKeyAlgorithm is the algorithm derived keys are wrapped for.
	DefaultKeyAlgorithm = crypto.KeyAlgorithmAES

	// DefaultTransform is AES in Galois/Counter Mode.
	DefaultTransform = crypto.TransformAESGCM

	// DefaultIterations is the PBKDF2 iteration count.
	DefaultIterations = 65536

	// DefaultKeyLength is the derived key length in bits.
	DefaultKeyLength = 256

	// DefaultIVLength is the per-encryption IV length in bytes.
	DefaultIVLength = 12

	// DefaultTagLength is the authentication tag length in bytes.
	DefaultTagLength = 16

	// DefaultSaltLength is the length in bytes of a generated salt.
	DefaultSaltLength = 8
)

// Provider strategies
const (
	// StrategyDefault serializes all operations through one locked cipher.
	StrategyDefault = config.StrategyDefault

	// StrategyPooled borrows ciphers from a reclaimable pool.
	StrategyPooled = config.StrategyPooled
)

// Operation names reported to hooks and metrics
const (
	OperationEncrypt = "encrypt"
	OperationDecrypt = "decrypt"
)

// Environment variable names
const (
	// EnvPassword holds the password keys are derived from.
	EnvPassword = "CONFCRYPT_PASSWORD"

	// EnvSalt holds the salt, standard base64 encoded.
	// Without it a random salt is generated per engine, so values cannot be
	// decrypted by another process.
	EnvSalt = "CONFCRYPT_SALT"

	EnvKDFAlgorithm = "CONFCRYPT_KDF_ALGORITHM"
	EnvKeyAlgorithm = "CONFCRYPT_KEY_ALGORITHM"
	EnvTransform    = "CONFCRYPT_TRANSFORM"
	EnvIterations   = "CONFCRYPT_ITERATIONS"
	EnvKeyLength    = "CONFCRYPT_KEY_LENGTH"
	EnvIVLength     = "CONFCRYPT_IV_LENGTH"
	EnvTagLength    = "CONFCRYPT_TAG_LENGTH"
	EnvSaltLength   = "CONFCRYPT_SALT_LENGTH"

	// Argon2id cost parameters; setting any of them enables the Argon2 block.
	EnvArgon2Memory      = "CONFCRYPT_ARGON2_MEMORY"
	EnvArgon2Iterations  = "CONFCRYPT_ARGON2_ITERATIONS"
	EnvArgon2Parallelism = "CONFCRYPT_ARGON2_PARALLELISM"

	// EnvStrategy selects "default" or "pooled".
	EnvStrategy = "CONFCRYPT_STRATEGY"

	// Pool capacity knobs, used by the pooled strategy only.
	// EnvPoolMaxWait accepts Go duration syntax, e.g. "250ms".
	EnvPoolMaxTotal           = "CONFCRYPT_POOL_MAX_TOTAL"
	EnvPoolMaxWait            = "CONFCRYPT_POOL_MAX_WAIT"
	EnvPoolBlockWhenExhausted = "CONFCRYPT_POOL_BLOCK_WHEN_EXHAUSTED"

	// EnvConfigFile points the CLI at a YAML configuration file.
	EnvConfigFile = "CONFCRYPT_CONFIG"
)

// DefaultPoolMaxWait bounds the wait for a cipher when the pool blocks on
// exhaustion and no explicit wait is configured.
const DefaultPoolMaxWait = 5 * time.Second
