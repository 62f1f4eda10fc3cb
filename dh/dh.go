// Package dh implements Diffie-Hellman key agreement fixed to a single
// 1536-bit safe-prime MODP group, matching the shape of RFC 3526
// Group 5 (g=2 generating the order-q subgroup). Unlike a
// general-purpose DH library, the group is not negotiated or generated
// per run: both participants always share the same (p, g).
package dh

import (
	"crypto/rand"
	"math/big"

	"github.com/anvarov-ks/gocrypt-toolkit/cipherr"
)

// group5PrimeHex is the toolkit's pinned 1536-bit safe prime, sized and
// shaped like RFC 3526 Group 5 (g=2 generates the order-q subgroup).
const group5PrimeHex = "" +
	"F191020D63F874F6F4E337BAC20F5065816E14B214D4EFDC1487DC71731BD7A" +
	"9790EF54D70124B1BA5805E47CA8F79E6562447361394FFE5FBAEE35BBBAF287" +
	"A8EC50A3CE0B91BD2EC5789071405B0FA179ED7634B3DEA934DD232DC452BCAF" +
	"D47BB66F5472CCF69A8C5A1A5A60B7EC26761229E9E27E2DE27BC89D60C9C82E" +
	"4F90F6C1FF13A43A724F3719099EEBF13D9C27653B56845925F12946EE372DB4" +
	"B6EDBE9CC1E0B9B8995969A2ED101BDFA34AF6DCDEA570B11CFEF42D685C89FC7"

const privateExponentBits = 256

var (
	group5Prime     *big.Int
	group5Generator = big.NewInt(2)
	one             = big.NewInt(1)
)

func init() {
	p, ok := new(big.Int).SetString(group5PrimeHex, 16)
	if !ok {
		panic("dh: malformed pinned group prime constant")
	}
	group5Prime = p
}

// Parameters is the (p, g) pair every Participant agrees on. The
// toolkit fixes this to a single pinned group rather than generating a
// fresh safe prime per run.
type Parameters struct {
	Prime     *big.Int
	Generator *big.Int
}

// FixedGroup returns the toolkit's pinned 1536-bit group parameters.
func FixedGroup() Parameters {
	return Parameters{Prime: group5Prime, Generator: group5Generator}
}

// Participant holds one side of a Diffie-Hellman exchange: a private
// exponent that never leaves the instance, and the public value derived
// from it.
type Participant struct {
	params  Parameters
	private *big.Int
	public  *big.Int
}

// NewParticipant draws a 256-bit private exponent (top bit cleared per
// spec, with a non-zero guarantee) and computes the matching public
// value under the fixed group.
func NewParticipant() (*Participant, error) {
	return NewParticipantWithGroup(FixedGroup())
}

// NewParticipantWithGroup is the general constructor behind
// NewParticipant, accepting an explicit group for a caller-supplied
// responder scenario.
func NewParticipantWithGroup(params Parameters) (*Participant, error) {
	private, err := randomPrivateExponent()
	if err != nil {
		return nil, err
	}
	public := new(big.Int).Exp(params.Generator, private, params.Prime)
	return &Participant{params: params, private: private, public: public}, nil
}

func randomPrivateExponent() (*big.Int, error) {
	buf := make([]byte, privateExponentBits/8)
	if _, err := rand.Read(buf); err != nil {
		return nil, cipherr.Wrap(cipherr.IoError, "dh.randomPrivateExponent", err)
	}
	buf[0] &^= 0x80 // clear the top bit per spec, non-zero is still guaranteed below
	x := new(big.Int).SetBytes(buf)
	if x.Sign() == 0 {
		x.SetInt64(1)
	}
	return x, nil
}

// PublicValue returns the value (y = g^x mod p) this participant has
// published.
func (p *Participant) PublicValue() *big.Int {
	return new(big.Int).Set(p.public)
}

// SharedSecret computes peerPublic^x mod p, validating that peerPublic
// lies strictly between 1 and p-1.
func (p *Participant) SharedSecret(peerPublic *big.Int) (*big.Int, error) {
	upperBound := new(big.Int).Sub(p.params.Prime, one)
	if peerPublic.Cmp(one) <= 0 || peerPublic.Cmp(upperBound) >= 0 {
		return nil, cipherr.New(cipherr.InvalidKeySize, "Participant.SharedSecret", "peer public value out of range")
	}
	return new(big.Int).Exp(peerPublic, p.private, p.params.Prime), nil
}
