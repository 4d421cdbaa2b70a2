package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHexKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestDeriveKey(t *testing.T) {
	key, err := DeriveKey(testHexKey)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = DeriveKey("deadbeef")
	assert.Error(t, err, "short key must be rejected")

	_, err = DeriveKey(strings.Repeat("zz", 32))
	assert.Error(t, err, "non-hex input must be rejected")
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	key, err := DeriveKey(testHexKey)
	require.NoError(t, err)

	encrypted, err := Encrypt("çok gizli mesaj", key)
	require.NoError(t, err)
	assert.NotEqual(t, "çok gizli mesaj", encrypted)

	decrypted, err := Decrypt(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, "çok gizli mesaj", decrypted)
}

func TestEncrypt_UniqueNonce(t *testing.T) {
	key, err := DeriveKey(testHexKey)
	require.NoError(t, err)

	// Aynı plaintext iki kez şifrelendiğinde nonce farklı olduğu için
	// çıktı da farklı olmalıdır.
	a, err := Encrypt("aynı mesaj", key)
	require.NoError(t, err)
	b, err := Encrypt("aynı mesaj", key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_WrongKey(t *testing.T) {
	key, err := DeriveKey(testHexKey)
	require.NoError(t, err)
	otherKey, err := DeriveKey(strings.Repeat("ff", 32))
	require.NoError(t, err)

	encrypted, err := Encrypt("gizli", key)
	require.NoError(t, err)

	_, err = Decrypt(encrypted, otherKey)
	assert.Error(t, err)
}

func TestDecrypt_Garbage(t *testing.T) {
	key, err := DeriveKey(testHexKey)
	require.NoError(t, err)

	_, err = Decrypt("not-base64!!", key)
	assert.Error(t, err)

	_, err = Decrypt("aGVsbG8=", key) // geçerli base64 ama nonce'dan kısa
	assert.Error(t, err)
}
