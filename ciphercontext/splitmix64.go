package ciphercontext

import "encoding/binary"

// splitMix64 is the pinned deterministic generator backing RandomDelta
// mode. The source's seeded PRNG is not cross-platform-defined, so the
// toolkit fixes SplitMix64 and documents it here as the one true choice.
type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed}
}

// randomDeltaMask draws exactly n deterministic bytes seeded from the
// little-endian uint32 held in iv's first four bytes, XORed with the
// block index k, per the spec's fixed RandomDelta construction.
func randomDeltaMask(iv []byte, k, n int) []byte {
	seed32 := binary.LittleEndian.Uint32(iv[:4])
	seed := uint64(seed32) ^ uint64(uint32(k))

	gen := newSplitMix64(seed)
	out := make([]byte, 0, n)
	for len(out) < n {
		v := gen.nextMixed()
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		out = append(out, b[:]...)
	}
	return out[:n]
}

// nextMixed runs the canonical SplitMix64 finalizer (the reference
// mix/avalanche constants) over the next raw state advance.
func (s *splitMix64) nextMixed() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return z
}
