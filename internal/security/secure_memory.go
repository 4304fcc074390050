package security

import "github.com/awnumar/memguard"

// ZeroBytes wipes sensitive data in place.
//
// Sensitive values (passwords, raw keys) should travel as []byte rather than
// string: strings are immutable and cannot be erased.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	memguard.WipeBytes(data)
}

// SecureCopy returns an independent copy of src so the caller may wipe its
// own buffer.
func SecureCopy(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
