package ciphercontext

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/anvarov-ks/gocrypt-toolkit/blockcipher"
	"github.com/anvarov-ks/gocrypt-toolkit/padding"
	"github.com/stretchr/testify/require"
)

func desKey(t *testing.T) []byte {
	t.Helper()
	key, err := blockcipher.GenerateDESKey()
	require.NoError(t, err)
	return key
}

var allModes = []Mode{ECB, CBC, PCBC, CFB, OFB, CTR, RandomDelta}
var allPaddings = []padding.Scheme{padding.Zeros, padding.PKCS7, padding.ANSIX923, padding.ISO10126}

func newContext(t *testing.T, mode Mode, scheme padding.Scheme, key []byte) *CipherContext {
	t.Helper()
	var iv []byte
	if mode != ECB {
		iv = make([]byte, 8)
		_, err := rand.Read(iv)
		require.NoError(t, err)
	}
	ctx, err := New(blockcipher.NewDES64(), mode, scheme, key, iv)
	require.NoError(t, err)
	return ctx
}

func TestEncryptBuffer_RoundTrip_AllModesAndPaddings(t *testing.T) {
	key := desKey(t)
	plaintext := []byte("this is a moderately long plaintext spanning several blocks")

	for _, mode := range allModes {
		for _, scheme := range allPaddings {
			ctx := newContext(t, mode, scheme, key)

			ciphertext, err := ctx.EncryptBuffer(plaintext)
			require.NoError(t, err, "mode=%v padding=%v", mode, scheme)

			ctx2 := newContext(t, mode, scheme, key)
			ctx2.iv = ctx.iv // reuse same IV for round-trip
			decrypted, err := ctx2.DecryptBuffer(ciphertext)
			require.NoError(t, err, "mode=%v padding=%v", mode, scheme)

			if scheme == padding.ISO10126 {
				// random filler bytes mean only the decrypted plaintext is asserted
				require.Equal(t, plaintext, decrypted, "mode=%v padding=%v", mode, scheme)
				continue
			}
			require.Equal(t, plaintext, decrypted, "mode=%v padding=%v", mode, scheme)
		}
	}
}

func TestEncrypt_CBCNotEqualToECB(t *testing.T) {
	key := desKey(t)
	plaintext := bytes.Repeat([]byte{0x11}, 32)

	ecb, err := New(blockcipher.NewDES64(), ECB, padding.Zeros, key, nil)
	require.NoError(t, err)
	ecbCipher, err := ecb.EncryptBuffer(plaintext)
	require.NoError(t, err)

	iv := bytes.Repeat([]byte{0x01}, 8)
	cbc, err := New(blockcipher.NewDES64(), CBC, padding.Zeros, key, iv)
	require.NoError(t, err)
	decrypted, err := cbc.DecryptBuffer(ecbCipher)
	require.NoError(t, err)

	require.NotEqual(t, decrypted[:8], plaintext[:8])
}

func TestEncrypt_CTRDifferentIVsDivergeInFirstBlock(t *testing.T) {
	key := desKey(t)
	plaintext := bytes.Repeat([]byte{0x42}, 16)

	iv1 := bytes.Repeat([]byte{0x00}, 8)
	iv2 := bytes.Repeat([]byte{0xFF}, 8)

	ctx1, err := New(blockcipher.NewDES64(), CTR, padding.Zeros, key, iv1)
	require.NoError(t, err)
	ctx2, err := New(blockcipher.NewDES64(), CTR, padding.Zeros, key, iv2)
	require.NoError(t, err)

	ct1, err := ctx1.EncryptBuffer(plaintext)
	require.NoError(t, err)
	ct2, err := ctx2.EncryptBuffer(plaintext)
	require.NoError(t, err)

	require.NotEqual(t, ct1[:8], ct2[:8])
}

func TestEncrypt_Determinism(t *testing.T) {
	key := desKey(t)
	iv := bytes.Repeat([]byte{0x07}, 8)
	plaintext := []byte("deterministic content")

	for _, mode := range allModes {
		for _, scheme := range allPaddings {
			if scheme == padding.ISO10126 {
				continue // randomized padding bytes break byte-for-byte determinism
			}
			var useIV []byte
			if mode != ECB {
				useIV = iv
			}
			ctx1, err := New(blockcipher.NewDES64(), mode, scheme, key, useIV)
			require.NoError(t, err)
			ctx2, err := New(blockcipher.NewDES64(), mode, scheme, key, useIV)
			require.NoError(t, err)

			ct1, err := ctx1.EncryptBuffer(plaintext)
			require.NoError(t, err)
			ct2, err := ctx2.EncryptBuffer(plaintext)
			require.NoError(t, err)

			require.Equal(t, ct1, ct2, "mode=%v padding=%v", mode, scheme)
		}
	}
}

func TestModeSymmetry_OFB_CTR_RandomDelta(t *testing.T) {
	key := desKey(t)
	iv := bytes.Repeat([]byte{0x03}, 8)
	plaintext := bytes.Repeat([]byte{0xAB}, 24)

	for _, mode := range []Mode{OFB, CTR, RandomDelta} {
		encCtx, err := New(blockcipher.NewDES64(), mode, padding.Zeros, key, iv)
		require.NoError(t, err)
		ciphertext, err := encCtx.EncryptBuffer(plaintext)
		require.NoError(t, err)

		decCtx, err := New(blockcipher.NewDES64(), mode, padding.Zeros, key, iv)
		require.NoError(t, err)
		roundTrip, err := decCtx.EncryptBuffer(ciphertext)
		require.NoError(t, err)

		require.Equal(t, plaintext, roundTrip[:len(plaintext)], "mode=%v", mode)
	}
}

func TestDecryptBuffer_RejectsNonBlockAlignedLength(t *testing.T) {
	key := desKey(t)
	ctx, err := New(blockcipher.NewDES64(), ECB, padding.PKCS7, key, nil)
	require.NoError(t, err)

	_, err = ctx.DecryptBuffer(make([]byte, 5))
	require.Error(t, err)
}

func TestNew_ECBRejectsIV(t *testing.T) {
	key := desKey(t)
	_, err := New(blockcipher.NewDES64(), ECB, padding.PKCS7, key, make([]byte, 8))
	require.Error(t, err)
}

func TestNew_NonECBRequiresCorrectlySizedIV(t *testing.T) {
	key := desKey(t)
	_, err := New(blockcipher.NewDES64(), CBC, padding.PKCS7, key, make([]byte, 4))
	require.Error(t, err)
}
