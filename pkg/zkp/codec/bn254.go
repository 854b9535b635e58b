package codec

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// Uncompressed BN254 point sizes.
const (
	BN254G1Size = bn254.SizeOfG1AffineUncompressed
	BN254G2Size = bn254.SizeOfG2AffineUncompressed
)

const (
	bn254Mask     byte = 0b11 << 6
	bn254Infinity byte = 0b01 << 6
)

// BN254G1 decodes an uncompressed BN254 G1 point (x|y, big-endian).
func BN254G1(b []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	inf, err := checkFlags(b, BN254G1Size, bn254Mask, bn254Infinity)
	if err != nil || inf {
		return p, err
	}
	if _, err = p.SetBytes(b); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("%w: not on curve", ErrInvalidPoint)
	}
	return p, nil
}

// BN254G2 decodes an uncompressed BN254 G2 point (x.A1|x.A0|y.A1|y.A0).
func BN254G2(b []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	inf, err := checkFlags(b, BN254G2Size, bn254Mask, bn254Infinity)
	if err != nil || inf {
		return p, err
	}
	if _, err = p.SetBytes(b); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("%w: not on curve", ErrInvalidPoint)
	}
	return p, nil
}

// EncodeBN254G1 returns the uncompressed encoding of p.
func EncodeBN254G1(p *bn254.G1Affine) []byte {
	b := p.RawBytes()
	if p.IsInfinity() {
		b[0] |= bn254Infinity
	}
	return b[:]
}

// EncodeBN254G2 returns the uncompressed encoding of p.
func EncodeBN254G2(p *bn254.G2Affine) []byte {
	b := p.RawBytes()
	if p.IsInfinity() {
		b[0] |= bn254Infinity
	}
	return b[:]
}
