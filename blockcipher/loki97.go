package blockcipher

import (
	"crypto/rand"
	"fmt"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
	"github.com/anvarov-ks/gocrypt-toolkit/gf"
)

const (
	loki97Rounds      = 16
	loki97SubkeyCount = 48
	loki97Delta       = 0x9E3779B97F4A7C15
	defaultLokiPoly   = 0x1B
)

// loki97Permutation is the fixed 64-bit bit permutation applied to the
// S-box layer's output inside F. Unlike DES's gather-style tables,
// this one is a scatter: bit i of the S-box output lands at output
// bit loki97Permutation[i].
var loki97Permutation = []int{
	56, 48, 40, 32, 24, 16, 8, 0, 57, 49, 41, 33, 25, 17, 9, 1,
	58, 50, 42, 34, 26, 18, 10, 2, 59, 51, 43, 35, 27, 19, 11, 3,
	60, 52, 44, 36, 28, 20, 12, 4, 61, 53, 45, 37, 29, 21, 13, 5,
	62, 54, 46, 38, 30, 22, 14, 6, 63, 55, 47, 39, 31, 23, 15, 7,
}

// LOKI97_128 is a teaching Feistel cipher over two 64-bit halves, not
// standards-conformant LOKI97 (see spec.md's Open Questions) but
// invertible and avalanching by construction. Block is 16 bytes; key
// is 16, 24 or 32 bytes.
type LOKI97_128 struct {
	field   *gf.Field
	s1, s2  [256]byte
	subkeys [loki97SubkeyCount]uint64
	ready   bool
}

// NewLOKI97 builds an unkeyed LOKI97_128 cipher using the given GF(2^8)
// reduction polynomial for S-box derivation (spec default 0x1B).
func NewLOKI97(poly byte) *LOKI97_128 {
	if poly == 0 {
		poly = defaultLokiPoly
	}
	field := gf.New(poly)
	c := &LOKI97_128{field: field}
	for x := 0; x < 256; x++ {
		c.s1[x] = field.Pow(byte(x), 3)
		c.s2[x] = field.Inverse(byte(x))
	}
	return c
}

func (c *LOKI97_128) BlockSize() int { return 16 }

func (c *LOKI97_128) SetKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
	default:
		return cipherr.New(cipherr.InvalidKeySize, "LOKI97_128.SetKey",
			fmt.Sprintf("LOKI97 key must be 16, 24 or 32 bytes, got %d", len(key)))
	}

	keyLen := len(key)
	for i := 0; i < loki97SubkeyCount; i++ {
		offset := (i * 8) % keyLen
		var word [8]byte
		for j := 0; j < 8; j++ {
			word[j] = key[(offset+j)%keyLen]
		}
		kVal := bytesToUint64(word[:])
		round := uint64(i + 1)
		c.subkeys[i] = c.f(kVal^(loki97Delta*round), kVal)
	}
	c.ready = true
	return nil
}

func (c *LOKI97_128) EncryptBlock(block []byte) []byte {
	if !c.ready {
		panic("blockcipher: LOKI97_128.EncryptBlock called before SetKey")
	}
	l := bytesToUint64(block[:8])
	r := bytesToUint64(block[8:16])

	for i := 0; i < loki97Rounds; i++ {
		k1, k2, k3 := c.subkeys[3*i], c.subkeys[3*i+1], c.subkeys[3*i+2]
		sum := r + k1
		fOut := c.f(sum, k2)
		newR := l ^ fOut
		newL := r + k3
		l, r = newL, newR
	}

	out := make([]byte, 16)
	copy(out[:8], uint64ToBytes(r))
	copy(out[8:], uint64ToBytes(l))
	return out
}

func (c *LOKI97_128) DecryptBlock(block []byte) []byte {
	if !c.ready {
		panic("blockcipher: LOKI97_128.DecryptBlock called before SetKey")
	}
	curL := bytesToUint64(block[8:16])
	curR := bytesToUint64(block[:8])

	for i := loki97Rounds - 1; i >= 0; i-- {
		k1, k2, k3 := c.subkeys[3*i], c.subkeys[3*i+1], c.subkeys[3*i+2]
		prevR := curL - k3
		sum := prevR + k1
		fOut := c.f(sum, k2)
		prevL := curR ^ fOut
		curL, curR = prevL, prevR
	}

	out := make([]byte, 16)
	copy(out[:8], uint64ToBytes(curL))
	copy(out[8:], uint64ToBytes(curR))
	return out
}

// f is LOKI97's round function: xor the two 64-bit inputs, run the
// alternating S-box layer, then the fixed bit permutation.
func (c *LOKI97_128) f(a, b uint64) uint64 {
	state := a ^ b
	stateBytes := uint64ToBytes(state)

	sboxPattern := [8]byte{1, 2, 1, 2, 2, 1, 2, 1} // 1 => S1, 2 => S2
	substituted := make([]byte, 8)
	for i, bVal := range stateBytes {
		if sboxPattern[i] == 1 {
			substituted[i] = c.s1[bVal]
		} else {
			substituted[i] = c.s2[bVal]
		}
	}

	permuted := permuteBitsScatter(substituted, loki97Permutation)
	return bytesToUint64(permuted)
}

// permuteBitsScatter treats data as a big-endian bit string and scatters
// bit i to output position table[i], per loki97Permutation's convention.
func permuteBitsScatter(data []byte, table []int) []byte {
	bits := make([]int, len(table))
	for i := range table {
		byteIdx := i / 8
		bitIdx := uint(7 - i%8)
		bit := int((data[byteIdx] >> bitIdx) & 1)
		bits[table[i]] = bit
	}

	out := make([]byte, len(data))
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = (v << 8) | uint64(b[i])
	}
	return v
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// GenerateLOKI97Key returns a random key of the given size (16, 24 or
// 32 bytes).
func GenerateLOKI97Key(size int) ([]byte, error) {
	switch size {
	case 16, 24, 32:
	default:
		return nil, cipherr.New(cipherr.InvalidKeySize, "GenerateLOKI97Key",
			fmt.Sprintf("LOKI97 key size must be 16, 24 or 32 bytes, got %d", size))
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, cipherr.Wrap(cipherr.IoError, "GenerateLOKI97Key", err)
	}
	return key, nil
}
