package streamcipher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRC4_WikipediaVector(t *testing.T) {
	key := []byte("Key")
	plaintext := []byte("Plaintext")
	want := []byte{0xBB, 0xF3, 0x16, 0xE8, 0xD9, 0x40, 0xAF, 0x0A, 0xD3}

	got, err := Process(key, plaintext)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRC4_SymmetricRoundTrip(t *testing.T) {
	key := []byte("SecretKey123")
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	ciphertext, err := Process(key, plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Process(key, ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestRC4_SetKey_RejectsEmptyAndOversizeKeys(t *testing.T) {
	r := &RC4{}
	require.Error(t, r.SetKey(nil))
	require.Error(t, r.SetKey(make([]byte, 257)))
	require.NoError(t, r.SetKey(make([]byte, 256)))
}

func TestRC4_KeystreamIsDeterministicPerKey(t *testing.T) {
	key := []byte("DeterministicKey")

	r1, err := NewRC4(key)
	require.NoError(t, err)
	r2, err := NewRC4(key)
	require.NoError(t, err)

	require.Equal(t, r1.Keystream(64), r2.Keystream(64))
}

func TestRC4_ProcessStream_MatchesBufferProcess(t *testing.T) {
	key := []byte("StreamKey")
	data := bytes.Repeat([]byte("stream chunk payload "), 5000) // exceeds one 64KiB chunk

	want, err := Process(key, data)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ProcessStream(&out, bytes.NewReader(data), key))

	require.Equal(t, want, out.Bytes())
}

func TestRC4_ProcessBufferParallel_MatchesSequential(t *testing.T) {
	key := []byte("ParallelKey")
	data := bytes.Repeat([]byte{0x5A}, 10000)

	want, err := Process(key, data)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 4, 8} {
		got, err := ProcessBufferParallel(key, data, workers)
		require.NoError(t, err)
		require.Equal(t, want, got, "workers=%d", workers)
	}
}
