package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDF algorithm names accepted by DeriveKey.
const (
	KDFPBKDF2SHA1   = "PBKDF2WithHmacSHA1"
	KDFPBKDF2SHA256 = "PBKDF2WithHmacSHA256"
	KDFPBKDF2SHA512 = "PBKDF2WithHmacSHA512"
	KDFArgon2id     = "Argon2id"
)

// KDFParams carries the cost parameters of a derivation. Iterations applies
// to PBKDF2; the Argon2 fields apply to Argon2id only.
type KDFParams struct {
	Iterations int
	KeyLength  int // bytes

	Argon2Time        uint32
	Argon2Memory      uint32 // KiB
	Argon2Parallelism uint8
}

var pbkdf2Hashes = map[string]func() hash.Hash{
	strings.ToUpper(KDFPBKDF2SHA1):   sha1.New,
	strings.ToUpper(KDFPBKDF2SHA256): sha256.New,
	strings.ToUpper(KDFPBKDF2SHA512): sha512.New,
}

// SupportedKDF reports whether algorithm names a known derivation function.
func SupportedKDF(algorithm string) bool {
	name := strings.ToUpper(strings.TrimSpace(algorithm))
	if _, ok := pbkdf2Hashes[name]; ok {
		return true
	}
	return name == strings.ToUpper(KDFArgon2id)
}

// DeriveKey stretches password with salt into params.KeyLength bytes.
func DeriveKey(algorithm string, password, salt []byte, params KDFParams) ([]byte, error) {
	if params.KeyLength <= 0 {
		return nil, fmt.Errorf("%w: key length must be positive, got %d", ErrInvalidKeySize, params.KeyLength)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: salt is empty", ErrInvalidParameters)
	}

	name := strings.ToUpper(strings.TrimSpace(algorithm))
	if h, ok := pbkdf2Hashes[name]; ok {
		if params.Iterations <= 0 {
			return nil, fmt.Errorf("%w: iteration count must be positive, got %d", ErrInvalidParameters, params.Iterations)
		}
		return pbkdf2.Key(password, salt, params.Iterations, params.KeyLength, h), nil
	}

	if name == strings.ToUpper(KDFArgon2id) {
		if params.Argon2Time == 0 || params.Argon2Memory == 0 || params.Argon2Parallelism == 0 {
			return nil, fmt.Errorf("%w: argon2 time, memory and parallelism must be set", ErrInvalidParameters)
		}
		return argon2.IDKey(password, salt, params.Argon2Time, params.Argon2Memory,
			params.Argon2Parallelism, uint32(params.KeyLength)), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKDF, algorithm)
}
