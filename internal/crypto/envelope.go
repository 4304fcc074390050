package crypto

import (
	"encoding/base64"
	"fmt"
)

// EncodeEnvelope renders IV‖ciphertext‖tag as standard padded base64.
func EncodeEnvelope(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// DecodeEnvelope reverses EncodeEnvelope and splits the leading ivLen bytes
// off as the IV. The remainder must be at least tagLen bytes long.
func DecodeEnvelope(value string, ivLen, tagLen int) (iv, body []byte, err error) {
	payload, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if len(payload) < ivLen+tagLen {
		return nil, nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedPayload, len(payload), ivLen+tagLen)
	}
	return payload[:ivLen], payload[ivLen:], nil
}
