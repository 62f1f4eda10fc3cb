// Package ciphercontext implements the toolkit's central engine: a
// keyed block cipher wrapped with a mode of operation and a padding
// scheme, driving buffer-to-buffer and stream-to-stream encryption.
package ciphercontext

import (
	"fmt"
	"sync"

	"github.com/anvarov-ks/gocrypt-toolkit/blockcipher"
	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
	"github.com/anvarov-ks/gocrypt-toolkit/padding"
)

// CipherContext owns a keyed block cipher, its IV, and the feedback
// state a chained mode needs. It is constructed once per key/mode/padding
// combination and reused across many encrypt/decrypt calls; each
// top-level call starts the feedback chain over from a fresh clone of
// the owned IV, so there is no cross-call bleed.
type CipherContext struct {
	cipher    blockcipher.Cipher
	mode      Mode
	padding   padding.Padding
	iv        []byte
	blockSize int
	mu        sync.Mutex
}

// New validates the (mode, iv) pairing, keys cipher, and returns a ready
// context. ECB forbids an IV; every other mode requires one of exactly
// cipher.BlockSize() bytes.
func New(cipher blockcipher.Cipher, mode Mode, scheme padding.Scheme, key, iv []byte) (*CipherContext, error) {
	blockSize := cipher.BlockSize()

	if !mode.requiresIV() {
		if len(iv) != 0 {
			return nil, cipherr.New(cipherr.InvalidIv, "ciphercontext.New", "ECB must not be given an IV")
		}
	} else if len(iv) != blockSize {
		return nil, cipherr.New(cipherr.InvalidIv, "ciphercontext.New",
			fmt.Sprintf("mode %s requires an IV of %d bytes, got %d", mode, blockSize, len(iv)))
	}

	if err := cipher.SetKey(key); err != nil {
		return nil, err
	}

	ivCopy := make([]byte, len(iv))
	copy(ivCopy, iv)

	return &CipherContext{
		cipher:    cipher,
		mode:      mode,
		padding:   padding.New(scheme),
		iv:        ivCopy,
		blockSize: blockSize,
	}, nil
}

// EncryptBuffer pads data to a multiple of the block size and runs it
// through the configured mode, starting the feedback chain from a fresh
// clone of the context's IV.
func (c *CipherContext) EncryptBuffer(data []byte) ([]byte, error) {
	padded := c.padding.Pad(append([]byte{}, data...), c.blockSize)
	blocks := splitBlocks(padded, c.blockSize)

	encrypted, err := c.encryptBlocks(blocks)
	if err != nil {
		return nil, err
	}
	return joinBlocksOrEmpty(encrypted), nil
}

// DecryptBuffer reverses the configured mode and strips padding. A
// ciphertext whose length is not a multiple of the block size is a
// LengthError; a padding mismatch is a soft failure per the padding
// package's own unchanged-on-mismatch contract, not an error here.
func (c *CipherContext) DecryptBuffer(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%c.blockSize != 0 {
		return nil, cipherr.New(cipherr.LengthError, "CipherContext.DecryptBuffer",
			fmt.Sprintf("ciphertext length %d is not a multiple of block size %d", len(data), c.blockSize))
	}

	blocks := splitBlocks(data, c.blockSize)
	decrypted, err := c.decryptBlocks(blocks)
	if err != nil {
		return nil, err
	}
	return c.padding.Unpad(joinBlocksOrEmpty(decrypted)), nil
}

func joinBlocksOrEmpty(blocks [][]byte) []byte {
	if len(blocks) == 0 {
		return []byte{}
	}
	return joinBlocks(blocks)
}

func (c *CipherContext) encryptBlocks(blocks [][]byte) ([][]byte, error) {
	if len(blocks) == 0 {
		return blocks, nil
	}
	switch c.mode {
	case ECB:
		return encryptECB(c.cipher, blocks), nil
	case CBC:
		return encryptCBC(c.cipher, blocks, c.iv), nil
	case PCBC:
		return encryptPCBC(&c.mu, c.cipher, blocks, c.iv), nil
	case CFB:
		return encryptCFB(&c.mu, c.cipher, blocks, c.iv), nil
	case OFB:
		return encryptOFB(&c.mu, c.cipher, blocks, c.iv), nil
	case CTR:
		return encryptCTR(c.cipher, blocks, c.iv, 0), nil
	case RandomDelta:
		return encryptRandomDelta(c.cipher, blocks, c.iv, 0), nil
	default:
		return nil, cipherr.New(cipherr.UnsupportedMode, "CipherContext.encryptBlocks", fmt.Sprintf("unsupported mode %v", c.mode))
	}
}

func (c *CipherContext) decryptBlocks(blocks [][]byte) ([][]byte, error) {
	if len(blocks) == 0 {
		return blocks, nil
	}
	switch c.mode {
	case ECB:
		return decryptECB(c.cipher, blocks), nil
	case CBC:
		return decryptCBC(c.cipher, blocks, c.iv), nil
	case PCBC:
		return decryptPCBC(&c.mu, c.cipher, blocks, c.iv), nil
	case CFB:
		return decryptCFB(&c.mu, c.cipher, blocks, c.iv), nil
	case OFB:
		return decryptOFB(&c.mu, c.cipher, blocks, c.iv), nil
	case CTR:
		return decryptCTR(c.cipher, blocks, c.iv, 0), nil
	case RandomDelta:
		return decryptRandomDelta(c.cipher, blocks, c.iv, 0), nil
	default:
		return nil, cipherr.New(cipherr.UnsupportedMode, "CipherContext.decryptBlocks", fmt.Sprintf("unsupported mode %v", c.mode))
	}
}
