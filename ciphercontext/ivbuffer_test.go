package ciphercontext

import (
	"bytes"
	"testing"

	"github.com/anvarov-ks/gocrypt-toolkit/blockcipher"
	"github.com/anvarov-ks/gocrypt-toolkit/padding"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptBufferWithIV_RoundTrips(t *testing.T) {
	key := desKey(t)
	iv := bytes.Repeat([]byte{0x05}, 8)
	plaintext := []byte("a message that needs its IV carried along with it")

	ctx, err := New(blockcipher.NewDES64(), CBC, padding.PKCS7, key, iv)
	require.NoError(t, err)

	prefixed, err := ctx.EncryptBufferWithIV(plaintext)
	require.NoError(t, err)
	require.Equal(t, iv, prefixed[:8])

	decCtx, err := New(blockcipher.NewDES64(), CBC, padding.PKCS7, key, iv)
	require.NoError(t, err)
	recovered, err := decCtx.DecryptBufferWithIV(prefixed)
	require.NoError(t, err)
	require.Equal(t, plaintext, recovered)
}

func TestEncryptBufferWithIV_ECBHasNoPrefix(t *testing.T) {
	key := desKey(t)
	plaintext := []byte("no iv here")

	ctx, err := New(blockcipher.NewDES64(), ECB, padding.PKCS7, key, nil)
	require.NoError(t, err)

	out, err := ctx.EncryptBufferWithIV(plaintext)
	require.NoError(t, err)
	plain, err := ctx.DecryptBufferWithIV(out)
	require.NoError(t, err)
	require.Equal(t, plaintext, plain)
}
