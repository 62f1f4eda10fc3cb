package ciphercontext

import (
	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
)

// EncryptBufferWithIV encrypts data and prefixes the ciphertext with the
// context's own IV, generalizing lab_1's file-level EncryptFile/DecryptFile
// pair to a self-describing buffer a collaborator can hand off without
// separately tracking the IV. ECB has no IV to prefix.
func (c *CipherContext) EncryptBufferWithIV(data []byte) ([]byte, error) {
	ciphertext, err := c.EncryptBuffer(data)
	if err != nil {
		return nil, err
	}
	if len(c.iv) == 0 {
		return ciphertext, nil
	}
	out := make([]byte, 0, len(c.iv)+len(ciphertext))
	out = append(out, c.iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptBufferWithIV splits the leading IV off data, adopts it as the
// context's IV for this call, and decrypts the remainder. For ECB, which
// carries no IV, it decrypts data as-is.
func (c *CipherContext) DecryptBufferWithIV(data []byte) ([]byte, error) {
	if !c.mode.requiresIV() {
		return c.DecryptBuffer(data)
	}
	if len(data) < c.blockSize {
		return nil, cipherr.New(cipherr.InvalidIv, "CipherContext.DecryptBufferWithIV",
			"buffer too short to contain a prefixed IV")
	}
	prefixed := &CipherContext{
		cipher:    c.cipher,
		mode:      c.mode,
		padding:   c.padding,
		iv:        append([]byte{}, data[:c.blockSize]...),
		blockSize: c.blockSize,
	}
	return prefixed.DecryptBuffer(data[c.blockSize:])
}
