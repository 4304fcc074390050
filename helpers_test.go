package confcrypt

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// testIterations keeps key derivation cheap in tests that do not depend on
// the default cost.
const testIterations = 1000

var testSalt = []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

func testConfig(strategy string, salt []byte) Config {
	cfg := Config{
		Iterations: testIterations,
		Strategy:   strategy,
	}
	if salt != nil {
		cfg.SetSalt(salt)
	}
	return cfg
}

func newTestProvider(t *testing.T, strategy, password string, salt []byte, opts ...ProviderOption) Provider {
	t.Helper()
	p, err := NewProvider(testConfig(strategy, salt), []byte(password), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(append([]EngineOption{WithIterations(testIterations), WithSalt(testSalt)}, opts...)...)
	require.NoError(t, err)
	return e
}

func decodeEnvelope(t *testing.T, value string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(value)
	require.NoError(t, err)
	return raw
}

func encodeEnvelope(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// flipByte returns a copy of raw with one bit of byte i inverted.
func flipByte(raw []byte, i int) []byte {
	out := bytes.Clone(raw)
	out[i] ^= 0x01
	return out
}
