package dh

import (
	"crypto/sha256"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
)

// DeriveKey hashes a shared secret's minimal big-endian encoding with
// SHA-256 and returns its first length bytes, mirroring lab_4's
// DeriveAESKey but rejecting lengths the hash cannot cover instead of
// silently truncating the copy.
func DeriveKey(s []byte, length int) ([]byte, error) {
	if length > sha256.Size {
		return nil, cipherr.New(cipherr.KeySizeTooLarge, "dh.DeriveKey", "requested length exceeds SHA-256 output size")
	}
	hash := sha256.Sum256(s)
	key := make([]byte, length)
	copy(key, hash[:length])
	return key, nil
}
