package codec

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Uncompressed BLS12-381 point sizes.
const (
	BLS12381G1Size = bls12381.SizeOfG1AffineUncompressed
	BLS12381G2Size = bls12381.SizeOfG2AffineUncompressed
)

// zcash serialization flags: compression, infinity, sort.
const (
	bls12381Mask     byte = 0b111 << 5
	bls12381Infinity byte = 0b010 << 5
)

// BLS12381G1 decodes an uncompressed BLS12-381 G1 point in zcash format.
func BLS12381G1(b []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	inf, err := checkFlags(b, BLS12381G1Size, bls12381Mask, bls12381Infinity)
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

// BLS12381G2 decodes an uncompressed BLS12-381 G2 point in zcash format.
func BLS12381G2(b []byte) (bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	inf, err := checkFlags(b, BLS12381G2Size, bls12381Mask, bls12381Infinity)
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

// EncodeBLS12381G1 returns the uncompressed encoding of p.
func EncodeBLS12381G1(p *bls12381.G1Affine) []byte {
	b := p.RawBytes()
	return b[:]
}

// EncodeBLS12381G2 returns the uncompressed encoding of p.
func EncodeBLS12381G2(p *bls12381.G2Affine) []byte {
	b := p.RawBytes()
	return b[:]
}
