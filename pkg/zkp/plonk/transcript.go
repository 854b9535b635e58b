package plonk

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

// Domain separation tags of the rolling transcript.
const (
	dst0Tag      uint32 = 0
	dst1Tag      uint32 = 1
	challengeTag uint32 = 2
)

// challengeMask clears the top bits of a challenge so that it fits into
// the scalar field capacity (253 bits).
const challengeMask byte = 0x1f

// transcript is a Fiat-Shamir transcript keeping two rolling Keccak256
// states. Each commitment updates both states, each challenge hashes them
// with a running counter.
type transcript struct {
	state0  [32]byte
	state1  [32]byte
	counter uint32
}

func keccak256(data []byte) [32]byte {
	var res [32]byte
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	h.Sum(res[:0])
	return res
}

func (t *transcript) update(b []byte) {
	input := make([]byte, 4+32+32+len(b))
	binary.BigEndian.PutUint32(input, dst0Tag)
	copy(input[4:], t.state0[:])
	copy(input[36:], t.state1[:])
	copy(input[68:], b)
	s0 := keccak256(input)

	binary.BigEndian.PutUint32(input, dst1Tag)
	s1 := keccak256(input)

	t.state0, t.state1 = s0, s1
}

func (t *transcript) commitScalar(e *fr.Element) {
	b := e.Bytes()
	t.update(b[:])
}

// commitPoint commits affine coordinates of p, the point at infinity is
// committed as two zero coordinates.
func (t *transcript) commitPoint(p *bn254.G1Affine) {
	x := p.X.Bytes()
	y := p.Y.Bytes()
	t.update(x[:])
	t.update(y[:])
}

func (t *transcript) challenge() fr.Element {
	var input [4 + 32 + 32 + 4]byte
	binary.BigEndian.PutUint32(input[:], challengeTag)
	copy(input[4:], t.state0[:])
	copy(input[36:], t.state1[:])
	binary.BigEndian.PutUint32(input[68:], t.counter)
	t.counter++

	h := keccak256(input[:])
	h[0] &= challengeMask
	var e fr.Element
	e.SetBytes(h[:])
	return e
}
