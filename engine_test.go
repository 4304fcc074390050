package confcrypt

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/hengadev/confcrypt/internal/crypto"
	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_WorkedExample(t *testing.T) {
	engine, err := NewEngine(
		WithSalt(make([]byte, 8)),
		WithIterations(65536),
		WithKeyLength(256),
	)
	require.NoError(t, err)

	key, err := engine.CreateSecretKey([]byte("s3cr3t"))
	require.NoError(t, err)
	defer key.Destroy()
	assert.Equal(t, 32, key.Size())
	assert.Equal(t, crypto.KeyAlgorithmAES, key.Algorithm())

	c, err := engine.CreateCipher()
	require.NoError(t, err)

	sealed, err := engine.Encrypt("hello world", key, c)
	require.NoError(t, err)
	assert.Len(t, decodeEnvelope(t, sealed), 12+11+16)

	plain, err := engine.Decrypt(sealed, key, c)
	require.NoError(t, err)
	assert.Equal(t, "hello world", plain)
}

func TestEngine_KeyDerivationIsDeterministic(t *testing.T) {
	e1 := newTestEngine(t)
	e2 := newTestEngine(t)

	k1, err := e1.CreateSecretKey([]byte("password"))
	require.NoError(t, err)
	k2, err := e2.CreateSecretKey([]byte("password"))
	require.NoError(t, err)

	c1, err := e1.CreateCipher()
	require.NoError(t, err)
	c2, err := e2.CreateCipher()
	require.NoError(t, err)

	sealed, err := e1.Encrypt("value", k1, c1)
	require.NoError(t, err)
	plain, err := e2.Decrypt(sealed, k2, c2)
	require.NoError(t, err)
	assert.Equal(t, "value", plain)
}

func TestEngine_DifferentSaltIsWrongKey(t *testing.T) {
	e1 := newTestEngine(t)
	e2 := newTestEngine(t, WithSalt([]byte("another salt")))

	k1, err := e1.CreateSecretKey([]byte("password"))
	require.NoError(t, err)
	k2, err := e2.CreateSecretKey([]byte("password"))
	require.NoError(t, err)

	c, err := e1.CreateCipher()
	require.NoError(t, err)

	sealed, err := e1.Encrypt("value", k1, c)
	require.NoError(t, err)
	_, err = e2.Decrypt(sealed, k2, c)
	assert.True(t, IsWrongKeyError(err), "got %v", err)
	assert.True(t, IsProviderError(err))
}

func TestEngine_Transforms(t *testing.T) {
	tests := []struct {
		name   string
		opts   []EngineOption
		ivLen  int
		tagLen int
	}{
		{name: "AES-128 GCM", opts: []EngineOption{WithKeyLength(128)}, ivLen: 12, tagLen: 16},
		{name: "AES GCM short tag", opts: []EngineOption{WithTagLength(12)}, ivLen: 12, tagLen: 12},
		{name: "AES GCM long iv", opts: []EngineOption{WithIVLength(16)}, ivLen: 16, tagLen: 16},
		{
			name: "ChaCha20-Poly1305",
			opts: []EngineOption{
				WithTransform(crypto.TransformChaCha20Poly1305),
				WithKeyAlgorithm(crypto.KeyAlgorithmChaCha20),
			},
			ivLen: 12, tagLen: 16,
		},
		{
			name: "XChaCha20-Poly1305 with SHA512",
			opts: []EngineOption{
				WithTransform(crypto.TransformXChaCha20Poly1305),
				WithKeyAlgorithm(crypto.KeyAlgorithmChaCha20),
				WithIVLength(24),
				WithKDFAlgorithm(crypto.KDFPBKDF2SHA512),
			},
			ivLen: 24, tagLen: 16,
		},
		{
			name: "Argon2id",
			opts: []EngineOption{
				WithKDFAlgorithm(crypto.KDFArgon2id),
				WithArgon2Params(&Argon2Params{Memory: 8192, Iterations: 1, Parallelism: 1}),
			},
			ivLen: 12, tagLen: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.opts...)
			key, err := engine.CreateSecretKey([]byte("password"))
			require.NoError(t, err)
			defer key.Destroy()
			c, err := engine.CreateCipher()
			require.NoError(t, err)

			sealed, err := engine.Encrypt("value", key, c)
			require.NoError(t, err)
			assert.Len(t, decodeEnvelope(t, sealed), tt.ivLen+len("value")+tt.tagLen)

			plain, err := engine.Decrypt(sealed, key, c)
			require.NoError(t, err)
			assert.Equal(t, "value", plain)
		})
	}
}

func TestNewEngine_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts []EngineOption
		key  string
	}{
		{name: "unsupported transform", opts: []EngineOption{WithTransform("AES/CBC/PKCS5Padding")}, key: "transform"},
		{name: "unsupported kdf", opts: []EngineOption{WithKDFAlgorithm("scrypt")}, key: "kdfAlgorithm"},
		{name: "key length mismatch", opts: []EngineOption{WithKeyLength(512)}, key: "keyLength"},
		{name: "zero iterations", opts: []EngineOption{WithIterations(-1)}, key: "iterations"},
		{name: "argon2 without params", opts: []EngineOption{WithKDFAlgorithm(crypto.KDFArgon2id)}, key: "argon2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.opts...)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.False(t, IsProviderError(err))

			var errs errsx.Map
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.key)
		})
	}
}

func TestEngine_Salt(t *testing.T) {
	t.Run("explicit salt is returned as a copy", func(t *testing.T) {
		engine := newTestEngine(t)
		salt, err := engine.Salt()
		require.NoError(t, err)
		assert.Equal(t, testSalt, salt)

		salt[0] ^= 0xff
		again, err := engine.Salt()
		require.NoError(t, err)
		assert.Equal(t, testSalt, again)
	})

	t.Run("generated salt is cached", func(t *testing.T) {
		engine, err := NewEngine(WithIterations(testIterations), WithSaltLength(16))
		require.NoError(t, err)

		var wg sync.WaitGroup
		salts := make([][]byte, 8)
		for i := range salts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				salts[i], _ = engine.Salt()
			}(i)
		}
		wg.Wait()

		require.Len(t, salts[0], 16)
		for _, s := range salts[1:] {
			assert.Equal(t, salts[0], s)
		}
	})

	t.Run("create salt draws fresh bytes", func(t *testing.T) {
		engine := newTestEngine(t)
		a, err := engine.CreateSalt(8)
		require.NoError(t, err)
		b, err := engine.CreateSalt(8)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)

		_, err = engine.CreateSalt(0)
		assert.True(t, IsProviderError(err))
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy pool empty") }

func TestEngine_RandomSourceFailure(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		engine, err := NewEngine(WithRandomSource(func() (io.Reader, error) {
			return nil, errors.New("no strong algorithm")
		}))
		require.NoError(t, err)

		_, err = engine.SecureRandom()
		assert.True(t, IsProviderError(err))
		_, err = engine.CreateSecretKey([]byte("password"))
		assert.True(t, IsProviderError(err))
	})

	t.Run("unreadable source", func(t *testing.T) {
		engine := newTestEngine(t, WithRandomSource(func() (io.Reader, error) {
			return failingReader{}, nil
		}))

		// key derivation only needs the explicit salt
		key, err := engine.CreateSecretKey([]byte("password"))
		require.NoError(t, err)
		defer key.Destroy()
		c, err := engine.CreateCipher()
		require.NoError(t, err)

		_, err = engine.Encrypt("value", key, c)
		assert.True(t, IsProviderError(err))
		assert.False(t, IsWrongKeyError(err))
	})
}

func TestEngine_DecryptFailures(t *testing.T) {
	engine := newTestEngine(t)
	key, err := engine.CreateSecretKey([]byte("password"))
	require.NoError(t, err)
	defer key.Destroy()
	c, err := engine.CreateCipher()
	require.NoError(t, err)

	sealed, err := engine.Encrypt("configuration value", key, c)
	require.NoError(t, err)

	t.Run("tampering any byte is detected", func(t *testing.T) {
		raw := decodeEnvelope(t, sealed)
		for i := range raw {
			_, err := engine.Decrypt(encodeEnvelope(flipByte(raw, i)), key, c)
			require.True(t, IsWrongKeyError(err), "byte %d: got %v", i, err)
		}
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := engine.Decrypt("%%% not base64 %%%", key, c)
		assert.True(t, IsProviderError(err))
		assert.False(t, IsWrongKeyError(err))
	})

	t.Run("truncated", func(t *testing.T) {
		raw := decodeEnvelope(t, sealed)
		_, err := engine.Decrypt(encodeEnvelope(raw[:20]), key, c)
		assert.True(t, IsProviderError(err))
		assert.False(t, IsWrongKeyError(err))
	})

	t.Run("destroyed key", func(t *testing.T) {
		other, err := engine.CreateSecretKey([]byte("password"))
		require.NoError(t, err)
		other.Destroy()
		_, err = engine.Decrypt(sealed, other, c)
		assert.True(t, IsProviderError(err))
		_, err = engine.Encrypt("value", other, c)
		assert.True(t, IsProviderError(err))
	})

	t.Run("missing arguments", func(t *testing.T) {
		_, err := engine.Encrypt("value", nil, c)
		assert.True(t, IsProviderError(err))
		_, err = engine.Decrypt(sealed, key, nil)
		assert.True(t, IsProviderError(err))
	})

	// the cipher is still usable after every failure above
	plain, err := engine.Decrypt(sealed, key, c)
	require.NoError(t, err)
	assert.Equal(t, "configuration value", plain)
}

func TestEngine_CipherKeyMismatch(t *testing.T) {
	aes := newTestEngine(t)
	chacha := newTestEngine(t,
		WithTransform(crypto.TransformChaCha20Poly1305),
		WithKeyAlgorithm(crypto.KeyAlgorithmChaCha20),
	)

	key, err := aes.CreateSecretKey([]byte("password"))
	require.NoError(t, err)
	defer key.Destroy()
	c, err := chacha.CreateCipher()
	require.NoError(t, err)

	_, err = aes.Encrypt("value", key, c)
	assert.True(t, IsProviderError(err))
	assert.True(t, strings.Contains(err.Error(), "unsupported key algorithm"), err.Error())
}
