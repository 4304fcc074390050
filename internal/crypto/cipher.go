package crypto

import (
	"bytes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
)

// Mode is the operation a Cipher is bound to by Init.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeEncrypt
	ModeDecrypt
)

func (m Mode) String() string {
	switch m {
	case ModeEncrypt:
		return "encrypt"
	case ModeDecrypt:
		return "decrypt"
	default:
		return "uninitialized"
	}
}

// Cipher is a stateful AEAD object. Init binds it to one operation with a key
// and IV, DoFinal runs that operation and returns the cipher to the
// uninitialized state. The keyed AEAD is cached across operations as long as
// the same key is presented again.
//
// A Cipher must not be used by two operations at the same time; Init fails
// with ErrCipherInUse while a previous Init has not been completed.
type Cipher struct {
	transform *Transform

	busy atomic.Bool
	mode Mode
	iv   []byte

	aead      cipher.AEAD
	keyDigest [sha256.Size]byte
	ivLen     int
	tagLen    int

	lastEncryptIV []byte
}

// NewCipher returns an unkeyed cipher for t.
func NewCipher(t *Transform) *Cipher {
	return &Cipher{transform: t}
}

// Transform returns the transform name the cipher was created for.
func (c *Cipher) Transform() string {
	return c.transform.Name
}

// Mode returns the operation the cipher is currently bound to.
func (c *Cipher) Mode() Mode {
	return c.mode
}

// Init binds the cipher to mode with key, iv and an authentication tag of
// tagLen bytes. keyAlgorithm must match the transform's key algorithm.
func (c *Cipher) Init(mode Mode, key []byte, keyAlgorithm string, iv []byte, tagLen int) error {
	if mode != ModeEncrypt && mode != ModeDecrypt {
		return fmt.Errorf("%w: invalid mode %d", ErrInvalidParameters, mode)
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrCipherInUse
	}

	if err := c.init(mode, key, keyAlgorithm, iv, tagLen); err != nil {
		c.clearOperation()
		c.busy.Store(false)
		return err
	}
	return nil
}

func (c *Cipher) init(mode Mode, key []byte, keyAlgorithm string, iv []byte, tagLen int) error {
	if canonicalKeyAlgorithm(keyAlgorithm) != c.transform.KeyAlgorithm {
		return fmt.Errorf("%w: %s key cannot be used with %s", ErrUnsupportedKey, keyAlgorithm, c.transform.Name)
	}
	if !c.transform.ValidKeySize(len(key)) {
		return fmt.Errorf("%w: %d bytes for %s", ErrInvalidKeySize, len(key), c.transform.Name)
	}
	if err := c.transform.CheckParameters(len(iv), tagLen); err != nil {
		return err
	}

	digest := sha256.Sum256(key)
	if !c.sameKey(digest, len(iv), tagLen) {
		aead, err := c.transform.newAEAD(key, len(iv), tagLen)
		if err != nil {
			return err
		}
		c.aead = aead
		c.keyDigest = digest
		c.ivLen = len(iv)
		c.tagLen = tagLen
		c.lastEncryptIV = nil
	}

	if mode == ModeEncrypt {
		if c.lastEncryptIV != nil && bytes.Equal(c.lastEncryptIV, iv) {
			return ErrIVReuse
		}
		c.lastEncryptIV = append(c.lastEncryptIV[:0], iv...)
	}

	c.mode = mode
	c.iv = append(c.iv[:0], iv...)
	return nil
}

func (c *Cipher) sameKey(digest [sha256.Size]byte, ivLen, tagLen int) bool {
	return c.aead != nil &&
		c.keyDigest == digest &&
		c.ivLen == ivLen &&
		c.tagLen == tagLen
}

// DoFinal runs the bound operation on input and appends the result to dst.
// In encrypt mode the output is ciphertext with the tag appended; in decrypt
// mode input must carry the tag and a verification failure yields
// ErrAuthentication. The cipher is uninitialized afterwards either way.
func (c *Cipher) DoFinal(dst, input []byte) ([]byte, error) {
	if !c.busy.Load() || c.mode == ModeUninitialized {
		return nil, ErrNotInitialized
	}
	defer func() {
		c.clearOperation()
		c.busy.Store(false)
	}()

	switch c.mode {
	case ModeEncrypt:
		return c.aead.Seal(dst, c.iv, input, nil), nil
	default:
		if len(input) < c.tagLen {
			return nil, fmt.Errorf("%w: %d bytes is shorter than the %d-byte tag", ErrMalformedPayload, len(input), c.tagLen)
		}
		out, err := c.aead.Open(dst, c.iv, input, nil)
		if err != nil {
			return nil, ErrAuthentication
		}
		return out, nil
	}
}

// Passivate clears operation state but keeps the keyed AEAD for the next
// Init with the same key. It fails with ErrCipherInUse if an operation is
// still bound.
func (c *Cipher) Passivate() error {
	if c.busy.Load() {
		return ErrCipherInUse
	}
	c.clearOperation()
	return nil
}

// Reset drops all key material and operation state. It fails with
// ErrCipherInUse if an operation is still bound.
func (c *Cipher) Reset() error {
	if c.busy.Load() {
		return ErrCipherInUse
	}
	c.clearOperation()
	c.aead = nil
	c.keyDigest = [sha256.Size]byte{}
	c.lastEncryptIV = nil
	return nil
}

// Release unbinds a pending operation without running it.
func (c *Cipher) Release() {
	c.clearOperation()
	c.busy.Store(false)
}

func (c *Cipher) clearOperation() {
	c.mode = ModeUninitialized
	c.iv = c.iv[:0]
}
