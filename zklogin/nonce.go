package zklogin

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// NonceLength is the length of the login nonce carried in the authorization
// request: 20 digest bytes, url-base64 encoded.
const NonceLength = 27

const ephemeralKeyFlag = 0x00

// Nonce derives the single-use value binding an authorization request to a
// specific ephemeral public key and epoch window. The derivation is
// deterministic: the prover recomputes it from the same inputs and checks it
// against the token's nonce claim.
func Nonce(ephemeralPub ed25519.PublicKey, maxEpoch uint64, randomness string) (string, error) {
	randValue, ok := new(big.Int).SetString(randomness, 10)
	if !ok || randValue.Sign() < 0 {
		return "", fmt.Errorf("randomness %q is not an unsigned decimal", randomness)
	}
	if randValue.BitLen() > 128 {
		return "", fmt.Errorf("randomness exceeds 128 bits")
	}

	buf := make([]byte, 0, 1+ed25519.PublicKeySize+8+16)
	buf = append(buf, ephemeralKeyFlag)
	buf = append(buf, ephemeralPub...)
	buf = binary.BigEndian.AppendUint64(buf, maxEpoch)
	randBytes := make([]byte, 16)
	randValue.FillBytes(randBytes)
	buf = append(buf, randBytes...)

	digest := blake2b.Sum256(buf)
	return base64.RawURLEncoding.EncodeToString(digest[:20]), nil
}

// ExtendedEphemeralPublicKey renders the ephemeral public key in the
// scheme-flag-prefixed format the prover expects.
func ExtendedEphemeralPublicKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+ed25519.PublicKeySize)
	buf = append(buf, ephemeralKeyFlag)
	buf = append(buf, pub...)
	return base64.StdEncoding.EncodeToString(buf)
}
