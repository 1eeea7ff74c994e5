package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestNewEncryptor_KeyValidation(t *testing.T) {
	_, err := NewEncryptor(testKey)
	assert.NoError(t, err)

	_, err = NewEncryptor("tooshort")
	assert.Error(t, err)

	_, err = NewEncryptor(strings.Repeat("z", 64))
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	e, err := NewEncryptor(testKey)
	assert.NoError(t, err)

	encrypted, err := e.Encrypt("whsec_supersecret")
	assert.NoError(t, err)
	assert.NotEqual(t, "whsec_supersecret", encrypted)
	assert.Len(t, strings.Split(encrypted, ":"), 3)

	decrypted, err := e.Decrypt(encrypted)
	assert.NoError(t, err)
	assert.Equal(t, "whsec_supersecret", decrypted)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	e, _ := NewEncryptor(testKey)

	first, err := e.Encrypt("same input")
	assert.NoError(t, err)
	second, err := e.Encrypt("same input")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_LegacyPlaintextPassthrough(t *testing.T) {
	e, _ := NewEncryptor(testKey)

	out, err := e.Decrypt("whsec_stored_before_encryption")
	assert.NoError(t, err)
	assert.Equal(t, "whsec_stored_before_encryption", out)
}

func TestDecrypt_TamperedCiphertextRejected(t *testing.T) {
	e, _ := NewEncryptor(testKey)

	encrypted, err := e.Encrypt("whsec_supersecret")
	assert.NoError(t, err)

	parts := strings.Split(encrypted, ":")
	parts[2] = parts[2][:len(parts[2])-4] + "AAAA"

	_, err = e.Decrypt(strings.Join(parts, ":"))
	assert.Error(t, err)
}

func TestEncryptDecrypt_EmptyString(t *testing.T) {
	e, _ := NewEncryptor(testKey)

	encrypted, err := e.Encrypt("")
	assert.NoError(t, err)
	assert.Empty(t, encrypted)

	decrypted, err := e.Decrypt("")
	assert.NoError(t, err)
	assert.Empty(t, decrypted)
}
