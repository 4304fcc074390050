package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_Split(t *testing.T) {
	payload := make([]byte, 12+5+16)
	for i := range payload {
		payload[i] = byte(i)
	}

	iv, body, err := DecodeEnvelope(EncodeEnvelope(payload), 12, 16)
	require.NoError(t, err)
	assert.Equal(t, payload[:12], iv)
	assert.Equal(t, payload[12:], body)
}

func TestEnvelope_Malformed(t *testing.T) {
	_, _, err := DecodeEnvelope("not base64!", 12, 16)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	short := base64.StdEncoding.EncodeToString(make([]byte, 27))
	_, _, err = DecodeEnvelope(short, 12, 16)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, _, err = DecodeEnvelope(base64.StdEncoding.EncodeToString(make([]byte, 28)), 12, 16)
	assert.NoError(t, err)
}
