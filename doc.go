// Package confcrypt encrypts and decrypts configuration values with keys
// derived from a password.
//
// A value is sealed with an AEAD cipher (AES/GCM/NoPadding by default) under
// a fresh random IV and stored as
//
//	base64(IV ‖ ciphertext ‖ tag)
//
// with a 12-byte IV and a 16-byte tag by default. Keys come from PBKDF2 with
// HMAC-SHA256 (65536 iterations, 256 bits) over the password and a salt.
// Every party that must read a value needs the same password, salt and
// parameters.
//
// # Providers
//
// Consumers depend on the Provider interface only:
//
//	sealed, err := provider.Encrypt("hunter2")
//	plain, err := provider.Decrypt(sealed)
//
// Two strategies are available:
//
//   - default: one cipher shared under a lock. Small footprint, serialized
//     throughput.
//   - pooled: ciphers borrowed from a pool and created on demand. Idle
//     ciphers may be reclaimed by the garbage collector and are recreated
//     transparently.
//
// # Errors
//
// Every failure matches ErrProvider. A value that does not authenticate
// under the provider's key additionally matches ErrWrongKey:
//
//	plain, err := provider.Decrypt(value)
//	if confcrypt.IsWrongKeyError(err) {
//	    // wrong password, salt or parameters, or a tampered value
//	}
//
// When cleanup fails after an operation already failed, the cleanup error is
// attached to the original one; see Suppressed.
//
// # Configuration
//
// Config can be built in code or loaded with LoadConfigFromEnvironment,
// LoadConfigFromDotEnv or LoadConfigFromFile. NewProvider validates it,
// derives the key and builds the provider:
//
//	cfg, err := confcrypt.LoadConfigFromEnvironment()
//	provider, err := confcrypt.NewProvider(cfg, password)
//	defer provider.Close()
package confcrypt
