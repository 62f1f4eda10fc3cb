package ciphercontext

import (
	"encoding/binary"
	"sync"

	"github.com/anvarov-ks/gocrypt-toolkit/blockcipher"
)

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func splitBlocks(data []byte, blockSize int) [][]byte {
	blocks := make([][]byte, 0, len(data)/blockSize)
	for i := 0; i < len(data); i += blockSize {
		b := make([]byte, blockSize)
		copy(b, data[i:i+blockSize])
		blocks = append(blocks, b)
	}
	return blocks
}

func joinBlocks(blocks [][]byte) []byte {
	out := make([]byte, 0, len(blocks)*len(blocks[0]))
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// ctrCounter returns a copy of iv with its trailing 8 bytes treated as
// a big-endian counter and advanced by k, wrapping on overflow.
func ctrCounter(iv []byte, k int) []byte {
	counter := make([]byte, len(iv))
	copy(counter, iv)
	n := len(counter)
	tail := counter[n-8:]
	val := binary.BigEndian.Uint64(tail) + uint64(k)
	binary.BigEndian.PutUint64(tail, val)
	return counter
}

// encryptECB and decryptECB fan blocks out across goroutines since each
// block is an independent encryption; output assembly is by index so
// ordering is deterministic regardless of completion order.
func encryptECB(cipher blockcipher.Cipher, blocks [][]byte) [][]byte {
	return parallelTransform(blocks, cipher.EncryptBlock)
}

func decryptECB(cipher blockcipher.Cipher, blocks [][]byte) [][]byte {
	return parallelTransform(blocks, cipher.DecryptBlock)
}

func parallelTransform(blocks [][]byte, transform func([]byte) []byte) [][]byte {
	results := make([][]byte, len(blocks))
	var wg sync.WaitGroup
	for i, block := range blocks {
		wg.Add(1)
		go func(index int, b []byte) {
			defer wg.Done()
			results[index] = transform(b)
		}(i, block)
	}
	wg.Wait()
	return results
}

func encryptCBC(cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	prev := iv
	for i, block := range blocks {
		enc := cipher.EncryptBlock(xorBytes(block, prev))
		results[i] = enc
		prev = enc
	}
	return results
}

// decryptCBC fans out across goroutines: every C_{k-1} needed by block k
// is already known from the ciphertext itself, so the XOR-and-decrypt
// step is independent per block.
func decryptCBC(cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	var wg sync.WaitGroup
	for i, block := range blocks {
		prev := iv
		if i > 0 {
			prev = blocks[i-1]
		}
		wg.Add(1)
		go func(index int, ct, prevCt []byte) {
			defer wg.Done()
			dec := cipher.DecryptBlock(ct)
			results[index] = xorBytes(dec, prevCt)
		}(i, block, prev)
	}
	wg.Wait()
	return results
}

// encryptPCBC and decryptPCBC are inherently serial: each block's
// transform depends on both the previous plaintext and ciphertext. mu
// guards the shared cipher instance in case its backend is not
// re-entrant, mirroring the critical-section pattern DEAL's multi-round
// Feistel construction used around its per-round DES instances.
func encryptPCBC(mu *sync.Mutex, cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	prevXor := iv
	for i, block := range blocks {
		mu.Lock()
		enc := cipher.EncryptBlock(xorBytes(block, prevXor))
		mu.Unlock()
		results[i] = enc
		prevXor = xorBytes(block, enc)
	}
	return results
}

func decryptPCBC(mu *sync.Mutex, cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	prevXor := iv
	for i, block := range blocks {
		mu.Lock()
		dec := cipher.DecryptBlock(block)
		mu.Unlock()
		plain := xorBytes(dec, prevXor)
		results[i] = plain
		prevXor = xorBytes(plain, block)
	}
	return results
}

func encryptCFB(mu *sync.Mutex, cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	prev := iv
	for i, block := range blocks {
		mu.Lock()
		encFeedback := cipher.EncryptBlock(prev)
		mu.Unlock()
		enc := xorBytes(block, encFeedback)
		results[i] = enc
		prev = enc
	}
	return results
}

func decryptCFB(mu *sync.Mutex, cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	prev := iv
	for i, block := range blocks {
		mu.Lock()
		encFeedback := cipher.EncryptBlock(prev)
		mu.Unlock()
		results[i] = xorBytes(block, encFeedback)
		prev = block
	}
	return results
}

func encryptOFB(mu *sync.Mutex, cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	results := make([][]byte, len(blocks))
	feedback := iv
	for i, block := range blocks {
		mu.Lock()
		feedback = cipher.EncryptBlock(feedback)
		mu.Unlock()
		results[i] = xorBytes(block, feedback)
	}
	return results
}

// decryptOFB is identical to encryptOFB: OFB's keystream never depends
// on plaintext or ciphertext, only on the chained block-cipher output.
func decryptOFB(mu *sync.Mutex, cipher blockcipher.Cipher, blocks [][]byte, iv []byte) [][]byte {
	return encryptOFB(mu, cipher, blocks, iv)
}

// ofbChainFeedback advances the OFB keystream chain n steps from iv
// without touching any plaintext or ciphertext, so a stream reader can
// recover the feedback value a chunk boundary leaves behind.
func ofbChainFeedback(mu *sync.Mutex, cipher blockcipher.Cipher, iv []byte, n int) []byte {
	feedback := iv
	for i := 0; i < n; i++ {
		mu.Lock()
		feedback = cipher.EncryptBlock(feedback)
		mu.Unlock()
	}
	return feedback
}

// ctrTransform computes each block's counter from startIndex+i so that
// a stream processed chunk by chunk never repeats a counter value
// across chunk boundaries.
func ctrTransform(cipher blockcipher.Cipher, blocks [][]byte, iv []byte, startIndex int) [][]byte {
	results := make([][]byte, len(blocks))
	var wg sync.WaitGroup
	for i, block := range blocks {
		wg.Add(1)
		go func(index int, b []byte) {
			defer wg.Done()
			counter := ctrCounter(iv, startIndex+index)
			keystream := cipher.EncryptBlock(counter)
			results[index] = xorBytes(b, keystream)
		}(i, block)
	}
	wg.Wait()
	return results
}

// encryptCTR and decryptCTR are the same keystream-XOR transform: CTR
// mode symmetry means encrypt and decrypt are the identical function.
func encryptCTR(cipher blockcipher.Cipher, blocks [][]byte, iv []byte, startIndex int) [][]byte {
	return ctrTransform(cipher, blocks, iv, startIndex)
}

func decryptCTR(cipher blockcipher.Cipher, blocks [][]byte, iv []byte, startIndex int) [][]byte {
	return ctrTransform(cipher, blocks, iv, startIndex)
}

func encryptRandomDelta(cipher blockcipher.Cipher, blocks [][]byte, iv []byte, startIndex int) [][]byte {
	blockSize := len(iv)
	var wg sync.WaitGroup
	results := make([][]byte, len(blocks))
	for i, block := range blocks {
		wg.Add(1)
		go func(index int, b []byte) {
			defer wg.Done()
			mask := randomDeltaMask(iv, startIndex+index, blockSize)
			results[index] = cipher.EncryptBlock(xorBytes(b, mask))
		}(i, block)
	}
	wg.Wait()
	return results
}

func decryptRandomDelta(cipher blockcipher.Cipher, blocks [][]byte, iv []byte, startIndex int) [][]byte {
	blockSize := len(iv)
	var wg sync.WaitGroup
	results := make([][]byte, len(blocks))
	for i, block := range blocks {
		wg.Add(1)
		go func(index int, b []byte) {
			defer wg.Done()
			mask := randomDeltaMask(iv, startIndex+index, blockSize)
			results[index] = xorBytes(cipher.DecryptBlock(b), mask)
		}(i, block)
	}
	wg.Wait()
	return results
}
