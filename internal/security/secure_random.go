package security

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// SourceFunc opens a strong randomness source.
type SourceFunc func() (io.Reader, error)

// SystemSource returns the operating system CSPRNG.
func SystemSource() (io.Reader, error) {
	return rand.Reader, nil
}

// SecureRandomGenerator provides cryptographically secure random bytes. The
// underlying reader is serialized so sources that are not safe for
// concurrent use can be plugged in.
type SecureRandomGenerator struct {
	reader io.Reader
	mutex  sync.Mutex
}

// NewSecureRandomGenerator opens source and probes it with a one-byte read,
// so a host without a working strong source fails here rather than on first
// use.
func NewSecureRandomGenerator(source SourceFunc) (*SecureRandomGenerator, error) {
	if source == nil {
		source = SystemSource
	}
	reader, err := source()
	if err != nil {
		return nil, fmt.Errorf("no strong random source available: %w", err)
	}
	if reader == nil {
		return nil, fmt.Errorf("no strong random source available: source returned nil reader")
	}

	probe := make([]byte, 1)
	if _, err := io.ReadFull(reader, probe); err != nil {
		return nil, fmt.Errorf("strong random source is not readable: %w", err)
	}

	return &SecureRandomGenerator{reader: reader}, nil
}

// Read fills b completely with random bytes.
func (srg *SecureRandomGenerator) Read(b []byte) (int, error) {
	srg.mutex.Lock()
	defer srg.mutex.Unlock()

	n, err := io.ReadFull(srg.reader, b)
	if err != nil {
		return n, fmt.Errorf("secure random generation failed: %w", err)
	}
	return n, nil
}

// Generate returns size random bytes.
func (srg *SecureRandomGenerator) Generate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size: %d", size)
	}

	data := make([]byte, size)
	if _, err := srg.Read(data); err != nil {
		return nil, err
	}
	return data, nil
}
