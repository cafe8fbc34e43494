package zklogin

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T, seed byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seedBytes := make([]byte, ed25519.SeedSize)
	seedBytes[0] = seed
	priv := ed25519.NewKeyFromSeed(seedBytes)
	return priv.Public().(ed25519.PublicKey), priv
}

func TestNonceDeterministic(t *testing.T) {
	pub, _ := testKeypair(t, 1)

	n1, err := Nonce(pub, 12, "100681567828351849884072155819400689117")
	require.NoError(t, err)
	n2, err := Nonce(pub, 12, "100681567828351849884072155819400689117")
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
	assert.Len(t, n1, NonceLength)
}

func TestNonceBindsAllInputs(t *testing.T) {
	pub1, _ := testKeypair(t, 1)
	pub2, _ := testKeypair(t, 2)

	base, err := Nonce(pub1, 12, "42")
	require.NoError(t, err)

	otherKey, err := Nonce(pub2, 12, "42")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherKey)

	otherEpoch, err := Nonce(pub1, 13, "42")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherEpoch)

	otherRandomness, err := Nonce(pub1, 12, "43")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRandomness)
}

func TestNonceRejectsBadRandomness(t *testing.T) {
	pub, _ := testKeypair(t, 1)

	testCases := []string{
		"",
		"not-a-number",
		"-5",
		"0x2a",
		"340282366920938463463374607431768211456", // 2^128
	}
	for _, randomness := range testCases {
		_, err := Nonce(pub, 12, randomness)
		assert.Error(t, err, "randomness %q should be rejected", randomness)
	}
}

func TestExtendedEphemeralPublicKey(t *testing.T) {
	pub, _ := testKeypair(t, 1)

	extended := ExtendedEphemeralPublicKey(pub)
	raw, err := base64.StdEncoding.DecodeString(extended)
	require.NoError(t, err)
	require.Len(t, raw, 1+ed25519.PublicKeySize)
	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, []byte(pub), raw[1:])
}
