package crypto

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeySource struct {
	key []byte
}

func (s staticKeySource) Key() ([]byte, error) {
	return s.key, nil
}

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher(staticKeySource{key: make([]byte, KeySize)})
	require.NoError(t, err)
	return c
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	c := testCipher(t)

	plaintext := []byte("247512345678901234567890123456789012")
	ciphertext, iv, tag, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	assert.Len(t, iv, 16)
	assert.Len(t, tag, 16)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := c.Decrypt(ciphertext, iv, tag)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptTamperedFails(t *testing.T) {
	c := testCipher(t)

	ciphertext, iv, tag, err := c.Encrypt([]byte("secret-salt"))
	require.NoError(t, err)

	testCases := []struct {
		name   string
		mutate func(ct, iv, tag []byte) ([]byte, []byte, []byte)
	}{
		{
			name: "tampered ciphertext",
			mutate: func(ct, iv, tag []byte) ([]byte, []byte, []byte) {
				ct[0] ^= 0xff
				return ct, iv, tag
			},
		},
		{
			name: "tampered iv",
			mutate: func(ct, iv, tag []byte) ([]byte, []byte, []byte) {
				iv[0] ^= 0xff
				return ct, iv, tag
			},
		},
		{
			name: "tampered tag",
			mutate: func(ct, iv, tag []byte) ([]byte, []byte, []byte) {
				tag[0] ^= 0xff
				return ct, iv, tag
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ct := append([]byte(nil), ciphertext...)
			ivCopy := append([]byte(nil), iv...)
			tagCopy := append([]byte(nil), tag...)
			ct, ivCopy, tagCopy = tc.mutate(ct, ivCopy, tagCopy)

			plaintext, err := c.Decrypt(ct, ivCopy, tagCopy)
			assert.Error(t, err)
			assert.Nil(t, plaintext)
		})
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	c := testCipher(t)

	_, iv1, _, err := c.Encrypt([]byte("x"))
	require.NoError(t, err)
	_, iv2, _, err := c.Encrypt([]byte("x"))
	require.NoError(t, err)
	assert.NotEqual(t, iv1, iv2)
}

func TestWrongKeyFails(t *testing.T) {
	c1 := testCipher(t)

	otherKey := make([]byte, KeySize)
	otherKey[0] = 1
	c2, err := NewCipher(staticKeySource{key: otherKey})
	require.NoError(t, err)

	ciphertext, iv, tag, err := c1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = c2.Decrypt(ciphertext, iv, tag)
	assert.Error(t, err)
}

func TestFileKeySourceGeneratesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "salt.key")

	key1, err := FileKeySource{Path: path}.Key()
	require.NoError(t, err)
	assert.Len(t, key1, KeySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key2, err := FileKeySource{Path: path}.Key()
	require.NoError(t, err)
	assert.Equal(t, key1, key2, "second read must return the persisted key")
}

func TestEnvKeySourceReadsBase64(t *testing.T) {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("ZKAUTH_TEST_KEY", base64.StdEncoding.EncodeToString(key))

	got, err := EnvKeySource{Var: "ZKAUTH_TEST_KEY"}.Key()
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestEnvKeySourceGeneratesWhenUnset(t *testing.T) {
	t.Setenv("ZKAUTH_TEST_KEY_MISSING", "")

	got, err := EnvKeySource{Var: "ZKAUTH_TEST_KEY_MISSING"}.Key()
	require.NoError(t, err)
	assert.Len(t, got, KeySize)
}
