package blockcipher

import (
	stddes "crypto/des"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTripleDES64_MatchesStandardLibrary(t *testing.T) {
	key := []byte{
		0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF,
		0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x01,
		0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x01, 0x23,
	}
	plaintext := []byte("Now is t")

	ref, err := stddes.NewTripleDESCipher(key)
	require.NoError(t, err)
	want := make([]byte, 8)
	ref.Encrypt(want, plaintext)

	tdes := NewTripleDES64()
	require.NoError(t, tdes.SetKey(key))
	got := tdes.EncryptBlock(plaintext)

	require.Equal(t, want, got)
}

func TestTripleDES64_RoundTrip(t *testing.T) {
	key := []byte{
		0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF,
		0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x01,
		0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF, 0x01, 0x23,
	}
	plaintext := []byte("Now is t")

	tdes := NewTripleDES64()
	require.NoError(t, tdes.SetKey(key))

	ciphertext := tdes.EncryptBlock(plaintext)
	require.NotEqual(t, plaintext, ciphertext)

	decrypted := tdes.DecryptBlock(ciphertext)
	require.Equal(t, plaintext, decrypted)
}

func TestTripleDES64_TwoKeyAndOneKeyCompat(t *testing.T) {
	plaintext := []byte("Now is t")

	for _, size := range []int{8, 16, 24} {
		key, err := GenerateTripleDESKey(size)
		require.NoError(t, err)

		tdes := NewTripleDES64()
		require.NoError(t, tdes.SetKey(key))

		ciphertext := tdes.EncryptBlock(plaintext)
		decrypted := tdes.DecryptBlock(ciphertext)
		require.Equal(t, plaintext, decrypted)
	}
}

func TestTripleDES64_SetKey_InvalidSize(t *testing.T) {
	tdes := NewTripleDES64()
	err := tdes.SetKey(make([]byte, 10))
	require.Error(t, err)
}
