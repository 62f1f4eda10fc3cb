package blockcipher

import (
	"crypto/rand"
	"fmt"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
)

// Initial permutation (IP).
var initialPermutation = []int{
	58, 50, 42, 34, 26, 18, 10, 2,
	60, 52, 44, 36, 28, 20, 12, 4,
	62, 54, 46, 38, 30, 22, 14, 6,
	64, 56, 48, 40, 32, 24, 16, 8,
	57, 49, 41, 33, 25, 17, 9, 1,
	59, 51, 43, 35, 27, 19, 11, 3,
	61, 53, 45, 37, 29, 21, 13, 5,
	63, 55, 47, 39, 31, 23, 15, 7,
}

// Final permutation (FP), the inverse of IP.
var finalPermutation = []int{
	40, 8, 48, 16, 56, 24, 64, 32,
	39, 7, 47, 15, 55, 23, 63, 31,
	38, 6, 46, 14, 54, 22, 62, 30,
	37, 5, 45, 13, 53, 21, 61, 29,
	36, 4, 44, 12, 52, 20, 60, 28,
	35, 3, 43, 11, 51, 19, 59, 27,
	34, 2, 42, 10, 50, 18, 58, 26,
	33, 1, 41, 9, 49, 17, 57, 25,
}

// Expansion permutation (E): 32 bits -> 48 bits.
var expansionTable = []int{
	32, 1, 2, 3, 4, 5,
	4, 5, 6, 7, 8, 9,
	8, 9, 10, 11, 12, 13,
	12, 13, 14, 15, 16, 17,
	16, 17, 18, 19, 20, 21,
	20, 21, 22, 23, 24, 25,
	24, 25, 26, 27, 28, 29,
	28, 29, 30, 31, 32, 1,
}

// P-box permutation applied to the S-box output.
var pBox = []int{
	16, 7, 20, 21, 29, 12, 28, 17,
	1, 15, 23, 26, 5, 18, 31, 10,
	2, 8, 24, 14, 32, 27, 3, 9,
	19, 13, 30, 6, 22, 11, 4, 25,
}

var sBoxes = [8][4][16]int{
	{
		{14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7},
		{0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8},
		{4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0},
		{15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13},
	},
	{
		{15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10},
		{3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5},
		{0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15},
		{13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9},
	},
	{
		{10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8},
		{13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1},
		{13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7},
		{1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12},
	},
	{
		{7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15},
		{13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9},
		{10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4},
		{3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14},
	},
	{
		{2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9},
		{14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6},
		{4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14},
		{11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3},
	},
	{
		{12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11},
		{10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8},
		{9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6},
		{4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13},
	},
	{
		{4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1},
		{13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6},
		{1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2},
		{6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12},
	},
	{
		{13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7},
		{1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2},
		{7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8},
		{2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11},
	},
}

// PC-1: drops parity bits, 64 -> 56 bits.
var pc1 = []int{
	57, 49, 41, 33, 25, 17, 9,
	1, 58, 50, 42, 34, 26, 18,
	10, 2, 59, 51, 43, 35, 27,
	19, 11, 3, 60, 52, 44, 36,
	63, 55, 47, 39, 31, 23, 15,
	7, 62, 54, 46, 38, 30, 22,
	14, 6, 61, 53, 45, 37, 29,
	21, 13, 5, 28, 20, 12, 4,
}

// PC-2: compresses the two 28-bit halves into a 48-bit round key.
var pc2 = []int{
	14, 17, 11, 24, 1, 5,
	3, 28, 15, 6, 21, 10,
	23, 19, 12, 4, 26, 8,
	16, 7, 27, 20, 13, 2,
	41, 52, 31, 37, 47, 55,
	30, 40, 51, 45, 33, 48,
	44, 49, 39, 56, 34, 53,
	46, 42, 50, 36, 29, 32,
}

// Per-round left-shift count of the key schedule halves.
var shiftTable = []int{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

// desKeyExpansion generates the 16 DES round keys from a 64-bit key.
type desKeyExpansion struct{}

func (ke *desKeyExpansion) ExpandKey(key []byte) [][]byte {
	if len(key) != 8 {
		panic(fmt.Sprintf("DES key must be 64 bits (8 bytes), got %d", len(key)))
	}

	pc1Key := bitPermutation(key, pc1)
	pc1Bits := make([]int, 0, 56)
	for _, b := range pc1Key {
		for i := 7; i >= 0; i-- {
			pc1Bits = append(pc1Bits, int((b>>uint(i))&1))
		}
	}
	pc1Bits = pc1Bits[:56]

	leftHalf := bitsToUint32(pc1Bits[:28])
	rightHalf := bitsToUint32(pc1Bits[28:56])

	roundKeys := make([][]byte, 0, 16)
	for roundNum := 0; roundNum < 16; roundNum++ {
		shiftCount := uint(shiftTable[roundNum])
		leftHalf = rotateLeft28(leftHalf, shiftCount)
		rightHalf = rotateLeft28(rightHalf, shiftCount)

		combined := append(uint32ToBits(leftHalf, 28), uint32ToBits(rightHalf, 28)...)

		combinedBytes := make([]byte, 0, 7)
		for i := 0; i < len(combined); i += 8 {
			var byteValue byte
			for j := 0; j < 8 && i+j < len(combined); j++ {
				byteValue |= byte(combined[i+j] << uint(7-j))
			}
			combinedBytes = append(combinedBytes, byteValue)
		}

		rk := bitPermutation(combinedBytes, pc2)
		roundKeys = append(roundKeys, rk[:6])
	}

	return roundKeys
}

// desRoundFunction is the DES Feistel round function: E -> xor K -> S-boxes -> P.
type desRoundFunction struct{}

func (rf *desRoundFunction) Apply(block []byte, roundKey []byte) []byte {
	expanded := bitPermutation(block, expansionTable)[:6]

	xored := make([]byte, 6)
	for i := range xored {
		xored[i] = expanded[i] ^ roundKey[i]
	}

	xoredBits := make([]int, 0, 48)
	for _, b := range xored {
		for i := 7; i >= 0; i-- {
			xoredBits = append(xoredBits, int((b>>uint(i))&1))
		}
	}

	sboxOutput := make([]int, 0, 32)
	for i := 0; i < 8; i++ {
		block6bit := xoredBits[i*6 : i*6+6]
		row := (block6bit[0] << 1) | block6bit[5]
		col := (block6bit[1] << 3) | (block6bit[2] << 2) | (block6bit[3] << 1) | block6bit[4]
		val := sBoxes[i][row][col]
		for j := 3; j >= 0; j-- {
			sboxOutput = append(sboxOutput, (val>>uint(j))&1)
		}
	}

	sboxBytes := make([]byte, 0, 4)
	for i := 0; i < 32; i += 8 {
		var byteValue byte
		for j := 0; j < 8; j++ {
			byteValue |= byte(sboxOutput[i+j] << uint(7-j))
		}
		sboxBytes = append(sboxBytes, byteValue)
	}

	return bitPermutation(sboxBytes, pBox)[:4]
}

// DES64 is the classical 64-bit-block, 8-byte-key Feistel cipher from
// FIPS 46-3.
type DES64 struct {
	feistel *FeistelNetwork
	ready   bool
}

// NewDES64 constructs an unkeyed DES cipher.
func NewDES64() *DES64 {
	return &DES64{
		feistel: NewFeistelNetwork(&desKeyExpansion{}, &desRoundFunction{}, 16),
	}
}

func (d *DES64) SetKey(key []byte) error {
	if len(key) != 8 {
		return cipherr.New(cipherr.InvalidKeySize, "DES64.SetKey",
			fmt.Sprintf("DES key must be 8 bytes, got %d", len(key)))
	}
	if err := d.feistel.SetupKeys(key); err != nil {
		return cipherr.Wrap(cipherr.StateError, "DES64.SetKey", err)
	}
	d.ready = true
	return nil
}

func (d *DES64) BlockSize() int { return 8 }

func (d *DES64) EncryptBlock(block []byte) []byte {
	if !d.ready {
		panic("blockcipher: DES64.EncryptBlock called before SetKey")
	}
	afterIP := bitPermutation(block, initialPermutation)
	afterFeistel := d.feistel.EncryptBlock(afterIP)
	return bitPermutation(afterFeistel, finalPermutation)
}

func (d *DES64) DecryptBlock(block []byte) []byte {
	if !d.ready {
		panic("blockcipher: DES64.DecryptBlock called before SetKey")
	}
	afterIP := bitPermutation(block, initialPermutation)
	afterFeistel := d.feistel.DecryptBlock(afterIP)
	return bitPermutation(afterFeistel, finalPermutation)
}

// GenerateDESKey returns a random 8-byte DES key.
func GenerateDESKey() ([]byte, error) {
	key := make([]byte, 8)
	if _, err := rand.Read(key); err != nil {
		return nil, cipherr.Wrap(cipherr.IoError, "GenerateDESKey", err)
	}
	return key, nil
}
