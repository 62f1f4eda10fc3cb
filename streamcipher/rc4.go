// Package streamcipher implements RC4, the toolkit's sole stream cipher.
package streamcipher

import (
	"fmt"
	"io"
	"sync"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
)

const maxKeyLen = 256

// RC4 holds the running KSA-derived permutation state for one keystream.
// A single instance is stateful and advances every time it produces
// keystream bytes: each Keystream or XORInto call continues where the
// previous one stopped, and SetKey restarts the keystream.
type RC4 struct {
	s    [256]byte
	i, j byte
}

// NewRC4 builds an RC4 instance and runs the key scheduling algorithm on
// key immediately. Keys must be 1 to 256 bytes.
func NewRC4(key []byte) (*RC4, error) {
	r := &RC4{}
	if err := r.SetKey(key); err != nil {
		return nil, err
	}
	return r, nil
}

// SetKey re-runs the key scheduling algorithm, resetting the keystream
// position.
func (r *RC4) SetKey(key []byte) error {
	if len(key) == 0 || len(key) > maxKeyLen {
		return cipherr.New(cipherr.InvalidKeySize, "RC4.SetKey",
			fmt.Sprintf("RC4 key must be 1 to %d bytes, got %d", maxKeyLen, len(key)))
	}
	r.ksa(key)
	return nil
}

func (r *RC4) ksa(key []byte) {
	for i := 0; i < 256; i++ {
		r.s[i] = byte(i)
	}
	j := 0
	for i := 0; i < 256; i++ {
		j = (j + int(r.s[i]) + int(key[i%len(key)])) % 256
		r.s[i], r.s[j] = r.s[j], r.s[i]
	}
	r.i = 0
	r.j = 0
}

// prgaByte runs one step of the pseudo-random generation algorithm,
// advancing the internal state and returning the next keystream byte.
func (r *RC4) prgaByte() byte {
	r.i++
	r.j += r.s[r.i]
	r.s[r.i], r.s[r.j] = r.s[r.j], r.s[r.i]
	t := r.s[r.i] + r.s[r.j]
	return r.s[t]
}

// Keystream returns the next length bytes of keystream, advancing state.
func (r *RC4) Keystream(length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = r.prgaByte()
	}
	return out
}

// XORInto XORs src against the next len(src) keystream bytes, writing the
// result into dst. dst and src may be the same slice for in-place use.
func (r *RC4) XORInto(dst, src []byte) {
	for i, b := range src {
		dst[i] = b ^ r.prgaByte()
	}
}

// Process returns the RC4 encryption (equivalently decryption, since RC4
// is a symmetric XOR stream) of data under key, starting from a freshly
// scheduled state.
func Process(key, data []byte) ([]byte, error) {
	r, err := NewRC4(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	r.XORInto(out, data)
	return out, nil
}

const streamChunkSize = 64 * 1024

// ProcessStream XORs r against a keystream derived from key and writes
// the result to w, 64KiB at a time, without holding the whole payload
// in memory. Because RC4's keystream is a strict sequence, chunks are
// processed in order on a single goroutine; there is no parallel
// fan-out available, unlike the toolkit's block cipher modes.
func ProcessStream(w io.Writer, r io.Reader, key []byte) error {
	rc4, err := NewRC4(key)
	if err != nil {
		return err
	}

	buf := make([]byte, streamChunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			rc4.XORInto(chunk, chunk)
			if _, err := w.Write(chunk); err != nil {
				return cipherr.Wrap(cipherr.IoError, "ProcessStream", err)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return cipherr.Wrap(cipherr.IoError, "ProcessStream", readErr)
		}
	}
}

// ProcessBufferParallel reproduces the toolkit's buffer-oriented worker
// pool: the full keystream is generated up front, then numWorkers
// goroutines XOR disjoint byte ranges concurrently in place. Since RC4
// keystream generation is itself strictly sequential, only the XOR fan-out
// parallelizes, not the keystream derivation.
func ProcessBufferParallel(key []byte, data []byte, numWorkers int) ([]byte, error) {
	rc4, err := NewRC4(key)
	if err != nil {
		return nil, err
	}

	size := len(data)
	keystream := rc4.Keystream(size)

	out := make([]byte, size)
	copy(out, data)

	if numWorkers < 1 {
		numWorkers = 1
	}
	chunkSize := size / numWorkers
	if chunkSize == 0 {
		chunkSize = size
		numWorkers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if w == numWorkers-1 {
			end = size
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] ^= keystream[i]
			}
		}(start, end)
	}
	wg.Wait()

	return out, nil
}
