package confcrypt

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/hengadev/confcrypt/internal/crypto"
)

// SecretKey is symmetric key material held in locked, guarded memory. It is
// owned by exactly one provider and is never serialized.
type SecretKey struct {
	algorithm string
	size      int

	mu  sync.RWMutex
	buf *memguard.LockedBuffer
}

// NewSecretKey wraps raw as a key for algorithm. raw is copied; the caller
// keeps ownership of its buffer and should wipe it. A length the algorithm
// does not accept is rejected here rather than on first use.
func NewSecretKey(algorithm string, raw []byte) (*SecretKey, error) {
	canonical, err := crypto.CanonicalKeyAlgorithm(algorithm)
	if err != nil {
		return nil, newProviderError("create secret key", err)
	}
	if !crypto.ValidKeySize(canonical, len(raw)) {
		return nil, newProviderError("create secret key",
			fmt.Errorf("%w: %d-bit key for %s", crypto.ErrInvalidKeySize, len(raw)*8, canonical))
	}

	// NewBufferFromBytes wipes its argument
	material := make([]byte, len(raw))
	copy(material, raw)
	buf := memguard.NewBufferFromBytes(material)
	buf.Freeze()

	return &SecretKey{algorithm: canonical, size: len(raw), buf: buf}, nil
}

// Algorithm returns the key algorithm, e.g. "AES".
func (k *SecretKey) Algorithm() string {
	return k.algorithm
}

// Size returns the key length in bytes.
func (k *SecretKey) Size() int {
	return k.size
}

// IsAlive reports whether the key material is still available.
func (k *SecretKey) IsAlive() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.buf != nil && k.buf.IsAlive()
}

// Destroy wipes the key material. Later use fails with a provider error.
func (k *SecretKey) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.buf != nil {
		k.buf.Destroy()
		k.buf = nil
	}
}

// use runs fn with the raw key. The slice is only valid inside fn.
func (k *SecretKey) use(fn func(raw []byte) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.buf == nil || !k.buf.IsAlive() {
		return fmt.Errorf("%w: secret key destroyed", ErrProvider)
	}
	return fn(k.buf.Bytes())
}

func (k *SecretKey) String() string {
	return fmt.Sprintf("SecretKey(%s, %d bits)", k.algorithm, k.size*8)
}
