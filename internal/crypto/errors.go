package crypto

import "errors"

var (
	ErrUnsupportedTransform = errors.New("unsupported cipher transform")
	ErrUnsupportedKDF       = errors.New("unsupported key derivation algorithm")
	ErrUnsupportedKey       = errors.New("unsupported key algorithm")
	ErrInvalidKeySize       = errors.New("invalid key size")
	ErrInvalidParameters    = errors.New("invalid cipher parameters")

	// ErrAuthentication is returned by DoFinal in decrypt mode when the
	// authentication tag does not verify.
	ErrAuthentication = errors.New("message authentication failed")

	ErrNotInitialized   = errors.New("cipher not initialized")
	ErrCipherInUse      = errors.New("cipher already bound to an operation")
	ErrIVReuse          = errors.New("cannot reuse iv for encryption with the same key")
	ErrMalformedPayload = errors.New("malformed ciphertext envelope")
)
