package ciphercontext

import (
	"bytes"
	"testing"

	"github.com/anvarov-ks/gocrypt-toolkit/blockcipher"
	"github.com/anvarov-ks/gocrypt-toolkit/padding"
	"github.com/stretchr/testify/require"
)

// blockModes are the modes where EncryptStream pads its final chunk
// exactly as EncryptBuffer does, so the two are byte-for-byte
// equivalent regardless of input alignment. CFB/OFB/CTR never pad in
// EncryptStream (streamModeNeverPads), but EncryptBuffer still pads them
// through the shared buffer pipeline (context.go's uniform
// pad-then-apply-mode step) — so for unaligned input the two
// necessarily diverge in length and are covered by a round-trip
// assertion instead, below.
var blockModes = []Mode{ECB, CBC, PCBC, RandomDelta}

func TestEncryptStream_MatchesEncryptBuffer(t *testing.T) {
	key, err := blockcipher.GenerateDESKey()
	require.NoError(t, err)
	iv := bytes.Repeat([]byte{0x09}, 8)

	// Large enough to span multiple 64KiB chunks and end mid-block.
	plaintext := bytes.Repeat([]byte("streaming payload chunk "), 4000)
	plaintext = append(plaintext, 0x01, 0x02, 0x03) // force a short final block

	for _, mode := range blockModes {
		var useIV []byte
		if mode != ECB {
			useIV = iv
		}

		bufferCtx, err := New(blockcipher.NewDES64(), mode, padding.PKCS7, key, useIV)
		require.NoError(t, err)
		want, err := bufferCtx.EncryptBuffer(plaintext)
		require.NoError(t, err)

		streamCtx, err := New(blockcipher.NewDES64(), mode, padding.PKCS7, key, useIV)
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, streamCtx.EncryptStream(&out, bytes.NewReader(plaintext)), "mode=%v", mode)

		require.Equal(t, want, out.Bytes(), "mode=%v", mode)
	}
}

// TestEncryptStream_RoundTripsForStreamModes covers CFB/OFB/CTR with
// the same unaligned plaintext as the block-mode equivalence test
// above: since EncryptStream and EncryptBuffer aren't comparable
// byte-for-byte for these modes on unaligned input, this instead
// asserts EncryptStream's own output decrypts back to the original
// through DecryptStream.
func TestEncryptStream_RoundTripsForStreamModes(t *testing.T) {
	key, err := blockcipher.GenerateDESKey()
	require.NoError(t, err)
	iv := bytes.Repeat([]byte{0x09}, 8)

	plaintext := bytes.Repeat([]byte("streaming payload chunk "), 4000)
	plaintext = append(plaintext, 0x01, 0x02, 0x03) // force a short final block

	for _, mode := range []Mode{CFB, OFB, CTR} {
		encCtx, err := New(blockcipher.NewDES64(), mode, padding.PKCS7, key, iv)
		require.NoError(t, err)
		var ciphertext bytes.Buffer
		require.NoError(t, encCtx.EncryptStream(&ciphertext, bytes.NewReader(plaintext)), "mode=%v", mode)
		require.Equal(t, len(plaintext), ciphertext.Len(), "mode=%v", mode)

		decCtx, err := New(blockcipher.NewDES64(), mode, padding.PKCS7, key, iv)
		require.NoError(t, err)
		var decrypted bytes.Buffer
		require.NoError(t, decCtx.DecryptStream(&decrypted, bytes.NewReader(ciphertext.Bytes())), "mode=%v", mode)

		require.Equal(t, plaintext, decrypted.Bytes(), "mode=%v", mode)
	}
}

func TestDecryptStream_RoundTripsThroughEncryptStream(t *testing.T) {
	key, err := blockcipher.GenerateDESKey()
	require.NoError(t, err)
	iv := bytes.Repeat([]byte{0x0A}, 8)

	plaintext := bytes.Repeat([]byte("round trip content for streaming "), 3000)

	for _, mode := range allModes {
		var useIV []byte
		if mode != ECB {
			useIV = iv
		}

		encCtx, err := New(blockcipher.NewDES64(), mode, padding.PKCS7, key, useIV)
		require.NoError(t, err)
		var ciphertext bytes.Buffer
		require.NoError(t, encCtx.EncryptStream(&ciphertext, bytes.NewReader(plaintext)))

		decCtx, err := New(blockcipher.NewDES64(), mode, padding.PKCS7, key, useIV)
		require.NoError(t, err)
		var decrypted bytes.Buffer
		require.NoError(t, decCtx.DecryptStream(&decrypted, bytes.NewReader(ciphertext.Bytes())))

		require.Equal(t, plaintext, decrypted.Bytes(), "mode=%v", mode)
	}
}

func TestEncryptStream_EmptyInputProducesEmptyOutput(t *testing.T) {
	key, err := blockcipher.GenerateDESKey()
	require.NoError(t, err)

	ctx, err := New(blockcipher.NewDES64(), ECB, padding.PKCS7, key, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ctx.EncryptStream(&out, bytes.NewReader(nil)))
	require.Equal(t, 0, out.Len())
}
