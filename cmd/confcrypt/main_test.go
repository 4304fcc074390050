package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hengadev/confcrypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv(confcrypt.EnvPassword, "cli-password")
	t.Setenv(confcrypt.EnvSalt, "ASNFZ4mrze8=")
	t.Setenv(confcrypt.EnvIterations, "1000")
	t.Setenv(confcrypt.EnvConfigFile, "")
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEncryptDecrypt(t *testing.T) {
	setTestEnv(t)

	sealed, _, err := run(t, "", "encrypt", "database-password")
	require.NoError(t, err)
	sealed = strings.TrimSpace(sealed)
	assert.NotEqual(t, "database-password", sealed)

	plain, _, err := run(t, "", "decrypt", sealed)
	require.NoError(t, err)
	assert.Equal(t, "database-password\n", plain)

	// stdin input, trailing newline stripped
	plain, _, err = run(t, sealed+"\n", "decrypt")
	require.NoError(t, err)
	assert.Equal(t, "database-password\n", plain)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	setTestEnv(t)
	sealed, _, err := run(t, "", "encrypt", "value")
	require.NoError(t, err)

	t.Setenv(confcrypt.EnvPassword, "other-password")
	_, _, err = run(t, "", "decrypt", strings.TrimSpace(sealed))
	require.Error(t, err)
	assert.True(t, confcrypt.IsWrongKeyError(err))
	assert.Contains(t, describeError(err), "wrong password")
}

func TestEncrypt_WarnsWithoutSalt(t *testing.T) {
	setTestEnv(t)
	t.Setenv(confcrypt.EnvSalt, "")

	_, stderr, err := run(t, "", "encrypt", "value")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no salt configured")
}

func TestSalt(t *testing.T) {
	out, _, err := run(t, "", "salt", "--length", "16")
	require.NoError(t, err)

	salt, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, salt, 16)

	_, _, err = run(t, "", "salt", "--length", "0")
	assert.Error(t, err)
}

func TestInitAndUseConfigFile(t *testing.T) {
	setTestEnv(t)
	t.Setenv(confcrypt.EnvSalt, "")
	path := filepath.Join(t.TempDir(), "confcrypt.yaml")

	out, _, err := run(t, "", "init", "--output", path, "--strategy", confcrypt.StrategyPooled)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := confcrypt.LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, confcrypt.StrategyPooled, cfg.Strategy)
	assert.NotEmpty(t, cfg.Salt)

	_, _, err = run(t, "", "init", "--output", path)
	assert.ErrorContains(t, err, "already exists")

	sealed, stderr, err := run(t, "", "--config", path, "encrypt", "from file")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "no salt configured")

	plain, _, err := run(t, "", "--config", path, "decrypt", strings.TrimSpace(sealed))
	require.NoError(t, err)
	assert.Equal(t, "from file\n", plain)
}

func TestEnvFile(t *testing.T) {
	setTestEnv(t)
	t.Setenv(confcrypt.EnvSalt, "")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(confcrypt.EnvSalt+"=AAAAAAAAAAA=\n"), 0o600))

	// set process variables win over the file, even when empty
	os.Unsetenv(confcrypt.EnvSalt)

	sealed, _, err := run(t, "", "--env-file", path, "encrypt", "value")
	require.NoError(t, err)
	plain, _, err := run(t, "", "--env-file", path, "decrypt", strings.TrimSpace(sealed))
	require.NoError(t, err)
	assert.Equal(t, "value\n", plain)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, confcrypt.Version)
}
