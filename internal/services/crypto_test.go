package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRoundTrip(t *testing.T) {
	c := NewCryptoService("test-secret")

	encrypted, err := c.Encrypt("hello@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hello@example.com", encrypted)

	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "hello@example.com", decrypted)
}

func TestCryptoEmptyString(t *testing.T) {
	c := NewCryptoService("test-secret")

	encrypted, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", encrypted)

	decrypted, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", decrypted)
}

func TestCryptoWrongKeyFails(t *testing.T) {
	encrypted, err := NewCryptoService("key-one").Encrypt("secret message")
	require.NoError(t, err)

	_, err = NewCryptoService("key-two").Decrypt(encrypted)
	assert.Error(t, err)
}

func TestCryptoRejectsGarbage(t *testing.T) {
	c := NewCryptoService("test-secret")

	_, err := c.Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	// Valid base64 but too short to hold a nonce
	_, err = c.Decrypt("YWJj")
	assert.Error(t, err)
}
