package confcrypt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProvider is the generic provider failure: randomness, key factory or
	// cipher creation, and any non-authentication fault during Encrypt or
	// Decrypt.
	ErrProvider = errors.New("provider error")

	// ErrWrongKey is returned when authentication tag verification fails
	// during decryption. The value was not produced with this key and these
	// parameters, or it was tampered with.
	ErrWrongKey = fmt.Errorf("%w: wrong key or corrupted value", ErrProvider)

	// Lifecycle errors
	ErrProviderClosed = fmt.Errorf("%w: provider closed", ErrProvider)
	ErrPoolExhausted  = fmt.Errorf("%w: cipher pool exhausted", ErrProvider)

	ErrInvalidConfiguration = errors.New("invalid configuration")
)

func newProviderError(operation string, err error) error {
	if errors.Is(err, ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrProvider, operation, err)
}

func newWrongKeyError(err error) error {
	return fmt.Errorf("%w: %w", ErrWrongKey, err)
}

func newConfigurationError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
}

// SuppressedError carries a primary error together with secondary failures
// that happened while cleaning up after it. Unwrap yields the primary error
// only, so errors.Is and errors.As see the original failure.
type SuppressedError struct {
	Err        error
	suppressed []error
}

func (e *SuppressedError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	for _, s := range e.suppressed {
		b.WriteString(" (suppressed: ")
		b.WriteString(s.Error())
		b.WriteString(")")
	}
	return b.String()
}

func (e *SuppressedError) Unwrap() error {
	return e.Err
}

// Suppressed returns the secondary failures attached to the error.
func (e *SuppressedError) Suppressed() []error {
	return append([]error(nil), e.suppressed...)
}

// withSuppressed attaches secondary to primary. A nil secondary returns
// primary unchanged.
func withSuppressed(primary, secondary error) error {
	if secondary == nil {
		return primary
	}
	if se, ok := primary.(*SuppressedError); ok {
		se.suppressed = append(se.suppressed, secondary)
		return se
	}
	return &SuppressedError{Err: primary, suppressed: []error{secondary}}
}

// Suppressed returns the secondary failures attached anywhere in err's chain,
// or nil.
func Suppressed(err error) []error {
	var se *SuppressedError
	if errors.As(err, &se) {
		return se.Suppressed()
	}
	return nil
}

// IsProviderError returns true if the error is a provider failure, including
// wrong-key failures.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProvider)
}

// IsWrongKeyError returns true if decryption failed authentication.
func IsWrongKeyError(err error) bool {
	return errors.Is(err, ErrWrongKey)
}

// IsConfigurationError returns true if the error represents a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// errorKind classifies err for metrics tags.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrWrongKey):
		return "wrong_key"
	case errors.Is(err, ErrProviderClosed):
		return "closed"
	case errors.Is(err, ErrPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, ErrInvalidConfiguration):
		return "configuration"
	default:
		return "provider"
	}
}
