package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strings"

	"lawlink-api/core/errors"

	"golang.org/x/crypto/pbkdf2"
)

// encPrefix marks ciphertext values at rest. Values without the prefix are
// treated as legacy plaintext and returned unchanged by Decrypt.
const encPrefix = "enc:"

const (
	keyLen     = 32
	saltString = "lawlink-credential-v1"
	iterations = 100_000
)

type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a 256-bit key from the process secret. The salt is fixed
// so every instance of the service derives the same key from the same secret.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.NewAppError(errors.ErrInternalServer, "encryption secret is not configured", nil)
	}

	key := pbkdf2.Key([]byte(secret), []byte(saltString), iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(value string) (string, error) {
	if !strings.HasPrefix(value, encPrefix) {
		// Legacy rows written before encryption was introduced.
		return value, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "malformed encrypted value", err.Error())
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errors.NewAppError(errors.ErrInternalServer, "malformed encrypted value", nil)
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "cannot decrypt value", err.Error())
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether a stored value carries the ciphertext marker.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}
