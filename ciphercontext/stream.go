package ciphercontext

import (
	"io"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
	"github.com/sirupsen/logrus"
)

const streamChunkSize = 64 * 1024

// streamModeNeverPads reports whether mode treats its input as a raw
// keystream target rather than a block-aligned payload. CFB, OFB, and
// CTR fall here: a short final chunk is XORed against a truncated
// keystream block instead of being padded.
func streamModeNeverPads(mode Mode) bool {
	return mode == CFB || mode == OFB || mode == CTR
}

// readChunk fills buf as full as the reader allows, returning a short
// slice with io.EOF only once the underlying reader is exhausted.
func readChunk(r io.Reader, buf []byte) ([]byte, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				return buf[:total], io.EOF
			}
			return buf[:total], err
		}
		if n == 0 {
			return buf[:total], io.EOF
		}
	}
	return buf[:total], nil
}

// streamState carries the feedback register and block-counter offset
// across chunk boundaries so a multi-chunk stream produces the same
// bytes as one contiguous pass over the whole input. For ECB, CBC, PCBC
// and RandomDelta that equals EncryptBuffer/DecryptBuffer; CFB, OFB and
// CTR are not padded here, unlike in EncryptBuffer.
type streamState struct {
	iv          []byte
	blockOffset int
}

// EncryptStream reads plaintext from r in 64KiB chunks and writes
// ciphertext to w. Only the last chunk (identified by reading one chunk
// ahead and finding the reader exhausted) is padded for block modes; CFB, OFB, and CTR never pad, XORing a
// truncated keystream block against whatever bytes remain.
func (c *CipherContext) EncryptStream(w io.Writer, r io.Reader) error {
	st := &streamState{iv: append([]byte{}, c.iv...)}
	log := logrus.WithFields(logrus.Fields{"mode": c.mode.String(), "op": "encrypt"})

	buf := make([]byte, streamChunkSize)
	cur, curErr := readChunk(r, buf)
	if curErr != nil && curErr != io.EOF {
		return cipherr.Wrap(cipherr.IoError, "CipherContext.stream", curErr)
	}
	if len(cur) == 0 && curErr == io.EOF {
		log.Debug("stream empty, nothing to encrypt")
		return nil
	}

	var chunks, bytesOut int
	for {
		nextBuf := make([]byte, streamChunkSize)
		next, nextErr := readChunk(r, nextBuf)
		isFinal := len(next) == 0 && nextErr == io.EOF

		out, err := c.encryptChunk(st, cur, isFinal)
		if err != nil {
			log.WithError(err).Error("chunk encryption failed")
			return err
		}
		if _, werr := w.Write(out); werr != nil {
			return cipherr.Wrap(cipherr.IoError, "CipherContext.EncryptStream", werr)
		}
		chunks++
		bytesOut += len(out)
		log.WithFields(logrus.Fields{"chunk": chunks, "final": isFinal}).Debug("chunk encrypted")

		if isFinal {
			log.WithFields(logrus.Fields{"chunks": chunks, "bytes_out": bytesOut}).Info("stream encryption complete")
			return nil
		}
		if curErr != nil && curErr != io.EOF {
			return cipherr.Wrap(cipherr.IoError, "CipherContext.EncryptStream", curErr)
		}
		cur, curErr = next, nextErr
	}
}

// DecryptStream mirrors EncryptStream: it reads one chunk ahead so the
// final chunk can be identified before its padding is stripped.
func (c *CipherContext) DecryptStream(w io.Writer, r io.Reader) error {
	st := &streamState{iv: append([]byte{}, c.iv...)}
	log := logrus.WithFields(logrus.Fields{"mode": c.mode.String(), "op": "decrypt"})

	buf := make([]byte, streamChunkSize)
	cur, curErr := readChunk(r, buf)
	if curErr != nil && curErr != io.EOF {
		return cipherr.Wrap(cipherr.IoError, "CipherContext.stream", curErr)
	}
	if len(cur) == 0 && curErr == io.EOF {
		log.Debug("stream empty, nothing to decrypt")
		return nil
	}

	var chunks int
	for {
		nextBuf := make([]byte, streamChunkSize)
		next, nextErr := readChunk(r, nextBuf)
		isFinal := len(next) == 0 && nextErr == io.EOF

		out, err := c.decryptChunk(st, cur, isFinal)
		if err != nil {
			log.WithError(err).Error("chunk decryption failed")
			return err
		}
		if _, werr := w.Write(out); werr != nil {
			return cipherr.Wrap(cipherr.IoError, "CipherContext.DecryptStream", werr)
		}
		chunks++

		if isFinal {
			log.WithField("chunks", chunks).Info("stream decryption complete")
			return nil
		}
		if curErr != nil && curErr != io.EOF {
			return cipherr.Wrap(cipherr.IoError, "CipherContext.DecryptStream", curErr)
		}
		cur, curErr = next, nextErr
	}
}

func (c *CipherContext) encryptChunk(st *streamState, data []byte, isFinal bool) ([]byte, error) {
	if !streamModeNeverPads(c.mode) {
		if isFinal {
			data = c.padding.Pad(append([]byte{}, data...), c.blockSize)
		}
		blocks := splitBlocks(data, c.blockSize)
		out, err := c.encryptBlocksStateful(st, blocks)
		if err != nil {
			return nil, err
		}
		return joinBlocksOrEmpty(out), nil
	}

	fullLen := (len(data) / c.blockSize) * c.blockSize
	blocks := splitBlocks(data[:fullLen], c.blockSize)
	out, err := c.encryptBlocksStateful(st, blocks)
	if err != nil {
		return nil, err
	}
	result := joinBlocksOrEmpty(out)

	if remainder := data[fullLen:]; len(remainder) > 0 {
		keystream := c.streamKeystreamBlock(st)
		result = append(result, xorBytes(remainder, keystream[:len(remainder)])...)
	}
	return result, nil
}

func (c *CipherContext) decryptChunk(st *streamState, data []byte, isFinal bool) ([]byte, error) {
	if !streamModeNeverPads(c.mode) {
		if len(data)%c.blockSize != 0 {
			return nil, cipherr.New(cipherr.LengthError, "CipherContext.DecryptStream",
				"chunk length is not a multiple of the block size")
		}
		blocks := splitBlocks(data, c.blockSize)
		out, err := c.decryptBlocksStateful(st, blocks)
		if err != nil {
			return nil, err
		}
		plain := joinBlocksOrEmpty(out)
		if isFinal {
			plain = c.padding.Unpad(plain)
		}
		return plain, nil
	}

	fullLen := (len(data) / c.blockSize) * c.blockSize
	blocks := splitBlocks(data[:fullLen], c.blockSize)
	out, err := c.decryptBlocksStateful(st, blocks)
	if err != nil {
		return nil, err
	}
	result := joinBlocksOrEmpty(out)

	if remainder := data[fullLen:]; len(remainder) > 0 {
		keystream := c.streamKeystreamBlock(st)
		result = append(result, xorBytes(remainder, keystream[:len(remainder)])...)
	}
	return result, nil
}

// streamKeystreamBlock produces one full block of keystream for the
// trailing short chunk of a CFB/OFB/CTR stream, using whatever state
// the preceding full blocks left behind.
func (c *CipherContext) streamKeystreamBlock(st *streamState) []byte {
	switch c.mode {
	case CTR:
		counter := ctrCounter(st.iv, st.blockOffset)
		return c.cipher.EncryptBlock(counter)
	default: // CFB, OFB: both key the next block off the current feedback register
		return c.cipher.EncryptBlock(st.iv)
	}
}

func (c *CipherContext) encryptBlocksStateful(st *streamState, blocks [][]byte) ([][]byte, error) {
	if len(blocks) == 0 {
		return blocks, nil
	}
	switch c.mode {
	case ECB:
		return encryptECB(c.cipher, blocks), nil
	case CBC:
		out := encryptCBC(c.cipher, blocks, st.iv)
		st.iv = out[len(out)-1]
		return out, nil
	case PCBC:
		out := encryptPCBC(&c.mu, c.cipher, blocks, st.iv)
		st.iv = xorBytes(blocks[len(blocks)-1], out[len(out)-1])
		return out, nil
	case CFB:
		out := encryptCFB(&c.mu, c.cipher, blocks, st.iv)
		st.iv = out[len(out)-1]
		return out, nil
	case OFB:
		out := encryptOFB(&c.mu, c.cipher, blocks, st.iv)
		st.iv = ofbChainFeedback(&c.mu, c.cipher, st.iv, len(blocks))
		return out, nil
	case CTR:
		out := encryptCTR(c.cipher, blocks, st.iv, st.blockOffset)
		st.blockOffset += len(blocks)
		return out, nil
	case RandomDelta:
		out := encryptRandomDelta(c.cipher, blocks, st.iv, st.blockOffset)
		st.blockOffset += len(blocks)
		return out, nil
	default:
		return nil, cipherr.New(cipherr.UnsupportedMode, "CipherContext.encryptBlocksStateful", c.mode.String())
	}
}

func (c *CipherContext) decryptBlocksStateful(st *streamState, blocks [][]byte) ([][]byte, error) {
	if len(blocks) == 0 {
		return blocks, nil
	}
	switch c.mode {
	case ECB:
		return decryptECB(c.cipher, blocks), nil
	case CBC:
		out := decryptCBC(c.cipher, blocks, st.iv)
		st.iv = blocks[len(blocks)-1]
		return out, nil
	case PCBC:
		out := decryptPCBC(&c.mu, c.cipher, blocks, st.iv)
		st.iv = xorBytes(out[len(out)-1], blocks[len(blocks)-1])
		return out, nil
	case CFB:
		out := decryptCFB(&c.mu, c.cipher, blocks, st.iv)
		st.iv = blocks[len(blocks)-1]
		return out, nil
	case OFB:
		out := decryptOFB(&c.mu, c.cipher, blocks, st.iv)
		st.iv = ofbChainFeedback(&c.mu, c.cipher, st.iv, len(blocks))
		return out, nil
	case CTR:
		out := decryptCTR(c.cipher, blocks, st.iv, st.blockOffset)
		st.blockOffset += len(blocks)
		return out, nil
	case RandomDelta:
		out := decryptRandomDelta(c.cipher, blocks, st.iv, st.blockOffset)
		st.blockOffset += len(blocks)
		return out, nil
	default:
		return nil, cipherr.New(cipherr.UnsupportedMode, "CipherContext.decryptBlocksStateful", c.mode.String())
	}
}
