package common

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// MaxSaltValue is the upper bound of the accepted salt range, 2^128 - 1.
// Salts are reduced into [0, MaxSaltValue) so they always fit the proving
// circuit's field input.
var MaxSaltValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// RandomSalt draws 16 cryptographically random bytes and reduces them modulo
// 2^128 - 1.
func RandomSalt() (*big.Int, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("fail to generate random salt, err: %w", err)
	}
	return new(big.Int).Mod(new(big.Int).SetBytes(buf), MaxSaltValue), nil
}

// RandomBigInt draws n random bytes as an unsigned big integer, used for the
// per-login jwt randomness value.
func RandomBigInt(n int) (*big.Int, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("fail to generate randomness, err: %w", err)
	}
	return new(big.Int).SetBytes(buf), nil
}

var recoveryCodeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewRecoveryCode returns a fresh one-time recovery code, formatted in
// groups of four for readability. Only its hash is ever stored.
func NewRecoveryCode() (string, error) {
	buf := make([]byte, 20)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("fail to generate recovery code, err: %w", err)
	}
	raw := recoveryCodeEncoding.EncodeToString(buf)
	var groups []string
	for len(raw) > 4 {
		groups = append(groups, raw[:4])
		raw = raw[4:]
	}
	groups = append(groups, raw)
	return strings.Join(groups, "-"), nil
}

// HashRecoveryCode normalizes a code (case and separators do not matter) and
// returns its sha256 hex digest.
func HashRecoveryCode(code string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
