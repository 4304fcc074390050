// Package crypto implements the primitives behind confcrypt providers.
//
// Transforms:
//   - AES/GCM/NoPadding with a 16, 24 or 32 byte key (default 12-byte IV, 16-byte tag)
//   - ChaCha20-Poly1305 and XChaCha20-Poly1305 with a 32 byte key
//
// Key derivation:
//   - PBKDF2 with HMAC-SHA1, HMAC-SHA256 or HMAC-SHA512
//   - Argon2id
//
// Envelope layout is base64(IV ‖ ciphertext ‖ tag).
package crypto
