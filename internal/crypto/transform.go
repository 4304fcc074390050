package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Transform names accepted by LookupTransform.
const (
	TransformAESGCM            = "AES/GCM/NoPadding"
	TransformChaCha20Poly1305  = "ChaCha20-Poly1305"
	TransformXChaCha20Poly1305 = "XChaCha20-Poly1305"
)

// Key algorithm names.
const (
	KeyAlgorithmAES      = "AES"
	KeyAlgorithmChaCha20 = "ChaCha20"
)

const (
	gcmStandardNonceSize = 12
	gcmStandardTagSize   = 16
	gcmMinimumTagSize    = 12
)

// Transform describes an AEAD construction and the parameters it accepts.
type Transform struct {
	Name         string
	KeyAlgorithm string

	newAEAD func(key []byte, ivLen, tagLen int) (cipher.AEAD, error)
	check   func(ivLen, tagLen int) error
}

var keySizes = map[string][]int{
	KeyAlgorithmAES:      {16, 24, 32},
	KeyAlgorithmChaCha20: {chacha20poly1305.KeySize},
}

var transforms = map[string]*Transform{
	normalize(TransformAESGCM): {
		Name:         TransformAESGCM,
		KeyAlgorithm: KeyAlgorithmAES,
		newAEAD:      newAESGCM,
		check:        checkGCM,
	},
	normalize(TransformChaCha20Poly1305): {
		Name:         TransformChaCha20Poly1305,
		KeyAlgorithm: KeyAlgorithmChaCha20,
		newAEAD: func(key []byte, _, _ int) (cipher.AEAD, error) {
			return chacha20poly1305.New(key)
		},
		check: fixedParameters(chacha20poly1305.NonceSize, chacha20poly1305.Overhead),
	},
	normalize(TransformXChaCha20Poly1305): {
		Name:         TransformXChaCha20Poly1305,
		KeyAlgorithm: KeyAlgorithmChaCha20,
		newAEAD: func(key []byte, _, _ int) (cipher.AEAD, error) {
			return chacha20poly1305.NewX(key)
		},
		check: fixedParameters(chacha20poly1305.NonceSizeX, chacha20poly1305.Overhead),
	},
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// LookupTransform resolves a transform by name. Matching is case-insensitive.
func LookupTransform(name string) (*Transform, error) {
	t, ok := transforms[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransform, name)
	}
	return t, nil
}

// CheckParameters reports whether the transform can run with the given IV
// and tag lengths, both in bytes.
func (t *Transform) CheckParameters(ivLen, tagLen int) error {
	return t.check(ivLen, tagLen)
}

// ValidKeySize reports whether a key of n bytes fits the transform.
func (t *Transform) ValidKeySize(n int) bool {
	return ValidKeySize(t.KeyAlgorithm, n)
}

// ValidKeySize reports whether n bytes is a legal key size for algorithm.
func ValidKeySize(algorithm string, n int) bool {
	for _, size := range keySizes[canonicalKeyAlgorithm(algorithm)] {
		if size == n {
			return true
		}
	}
	return false
}

// CanonicalKeyAlgorithm returns the registered spelling of a key algorithm.
func CanonicalKeyAlgorithm(algorithm string) (string, error) {
	canonical := canonicalKeyAlgorithm(algorithm)
	if _, ok := keySizes[canonical]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKey, algorithm)
	}
	return canonical, nil
}

func canonicalKeyAlgorithm(algorithm string) string {
	for name := range keySizes {
		if strings.EqualFold(name, strings.TrimSpace(algorithm)) {
			return name
		}
	}
	return algorithm
}

func newAESGCM(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	switch {
	case ivLen == gcmStandardNonceSize && tagLen == gcmStandardTagSize:
		return cipher.NewGCM(block)
	case ivLen == gcmStandardNonceSize:
		return cipher.NewGCMWithTagSize(block, tagLen)
	case tagLen == gcmStandardTagSize:
		return cipher.NewGCMWithNonceSize(block, ivLen)
	}
	return nil, fmt.Errorf("%w: GCM cannot combine a %d-byte iv with a %d-byte tag", ErrInvalidParameters, ivLen, tagLen)
}

func checkGCM(ivLen, tagLen int) error {
	if ivLen <= 0 {
		return fmt.Errorf("%w: iv length must be positive, got %d", ErrInvalidParameters, ivLen)
	}
	if tagLen < gcmMinimumTagSize || tagLen > gcmStandardTagSize {
		return fmt.Errorf("%w: GCM tag length must be between %d and %d bytes, got %d",
			ErrInvalidParameters, gcmMinimumTagSize, gcmStandardTagSize, tagLen)
	}
	if ivLen != gcmStandardNonceSize && tagLen != gcmStandardTagSize {
		return fmt.Errorf("%w: GCM cannot combine a %d-byte iv with a %d-byte tag", ErrInvalidParameters, ivLen, tagLen)
	}
	return nil
}

func fixedParameters(nonceSize, tagSize int) func(int, int) error {
	return func(ivLen, tagLen int) error {
		if ivLen != nonceSize {
			return fmt.Errorf("%w: iv length must be %d bytes, got %d", ErrInvalidParameters, nonceSize, ivLen)
		}
		if tagLen != tagSize {
			return fmt.Errorf("%w: tag length must be %d bytes, got %d", ErrInvalidParameters, tagSize, tagLen)
		}
		return nil
	}
}
