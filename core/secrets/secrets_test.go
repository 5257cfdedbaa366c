package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	out, err := c.Encrypt("ya29.access-token-value")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(out))
	assert.NotContains(t, out, "ya29")

	back, err := c.Decrypt(out)
	require.NoError(t, err)
	assert.Equal(t, "ya29.access-token-value", back)
}

func TestCipherNonDeterministicNonce(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	a, err := c.Encrypt("same-value")
	require.NoError(t, err)
	b, err := c.Encrypt("same-value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptLegacyPlaintextPassthrough(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	back, err := c.Decrypt("plain-legacy-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-legacy-token", back)
}

func TestDecryptWithWrongSecretFails(t *testing.T) {
	c1, err := NewCipher("secret-one")
	require.NoError(t, err)
	c2, err := NewCipher("secret-two")
	require.NoError(t, err)

	out, err := c1.Encrypt("token")
	require.NoError(t, err)

	_, err = c2.Decrypt(out)
	assert.Error(t, err)
}

func TestDecryptMalformedCiphertext(t *testing.T) {
	c, err := NewCipher("test-secret")
	require.NoError(t, err)

	_, err = c.Decrypt("enc:not-base64!!")
	assert.Error(t, err)

	_, err = c.Decrypt("enc:QUJD")
	assert.Error(t, err)
}

func TestNewCipherRequiresSecret(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
