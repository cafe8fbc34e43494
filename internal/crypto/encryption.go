// Package crypto is the encryption unit for salts at rest: AES-256-GCM with
// a fresh random IV per call and the authentication tag stored separately,
// built on an explicitly injected key source.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/njangihq/zkauth/internal/errs"
)

const (
	KeySize = 32
	ivSize  = 16
	tagSize = 16
)

type Cipher struct {
	gcm cipher.AEAD
}

// NewCipher builds a cipher from the given key source. Losing the key
// permanently strands every salt encrypted under it; key durability is the
// operator's responsibility.
func NewCipher(src KeySource) (*Cipher, error) {
	key, err := src.Key()
	if err != nil {
		return nil, fmt.Errorf("fail to obtain encryption key, err: %w", err)
	}
	if len(key) != KeySize {
		return nil, errs.Configurationf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("fail to create cipher, err: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("fail to create gcm, err: %w", err)
	}
	return &Cipher{gcm: gcm}, nil
}

// Encrypt seals plaintext under a fresh random IV and returns ciphertext,
// IV, and authentication tag separately, matching the salt table columns.
func (c *Cipher) Encrypt(plaintext []byte) (ciphertext, iv, tag []byte, err error) {
	iv = make([]byte, ivSize)
	if _, err = io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, fmt.Errorf("fail to generate iv, err: %w", err)
	}
	sealed := c.gcm.Seal(nil, iv, plaintext, nil)
	ciphertext = sealed[:len(sealed)-tagSize]
	tag = sealed[len(sealed)-tagSize:]
	return ciphertext, iv, tag, nil
}

// Decrypt opens ciphertext and fails with a decryption error when the tag
// does not verify. It never returns unauthenticated data.
func (c *Cipher) Decrypt(ciphertext, iv, tag []byte) ([]byte, error) {
	if len(iv) != ivSize {
		return nil, errs.SaltDecryptionf("iv must be %d bytes, got %d", ivSize, len(iv))
	}
	if len(tag) != tagSize {
		return nil, errs.SaltDecryptionf("tag must be %d bytes, got %d", tagSize, len(tag))
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := c.gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, errs.SaltDecryptionf("fail to decrypt, err: %v", err)
	}
	return plaintext, nil
}
