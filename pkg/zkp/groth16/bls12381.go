package groth16

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/codec"
)

// BLS12381 is a Groth16 verifier over the BLS12-381 curve.
type BLS12381 struct{}

// BLS12381VerifyingKey is an assembled BLS12381 verifying key.
type BLS12381VerifyingKey = CurveKey[bls12381.G1Affine, bls12381.G2Affine]

// BLS12381Proof is an assembled BLS12381 proof.
type BLS12381Proof = CurveProof[bls12381.G1Affine, bls12381.G2Affine]

var bls12381Curve = &curve[bls12381.G1Affine, bls12381.G2Affine]{
	sizes:   sizes{g1: codec.BLS12381G1Size, g2: codec.BLS12381G2Size},
	g1:      codec.BLS12381G1,
	g2:      codec.BLS12381G2,
	modulus: fr.Modulus(),
}

// DecodeKey decodes a JSON key registration message.
func (BLS12381) DecodeKey(data []byte) (*Key, error) {
	return decodeKeyMessage(data, bls12381Curve.sizes)
}

// DecodeProof decodes a JSON proof submission message.
func (BLS12381) DecodeProof(data []byte) (*Proof, error) {
	return decodeProofMessage(data, bls12381Curve.sizes)
}

// AssembleKey converts k into a verifying key.
func (BLS12381) AssembleKey(k *Key) (*BLS12381VerifyingKey, error) {
	return bls12381Curve.assembleKey(k)
}

// AssembleProof converts p into its curve form.
func (BLS12381) AssembleProof(p *Proof) (*BLS12381Proof, error) {
	return bls12381Curve.assembleProof(p)
}

// Verify checks e(A, B) = e(alpha, beta) * e(vk_x, gamma) * e(C, delta)
// where vk_x = IC[0] + input*IC[1].
func (BLS12381) Verify(vk *BLS12381VerifyingKey, p *BLS12381Proof) (bool, error) {
	var vkX, t bls12381.G1Affine
	t.ScalarMultiplication(&vk.IC[1], vk.Input)
	vkX.Add(&vk.IC[0], &t)

	var negAlpha, negVkX, negC bls12381.G1Affine
	negAlpha.Neg(&vk.Alpha1)
	negVkX.Neg(&vkX)
	negC.Neg(&p.C)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{p.A, negAlpha, negVkX, negC},
		[]bls12381.G2Affine{p.B, vk.Beta2, vk.Gamma2, vk.Delta2},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", zkp.ErrVerificationEngine, err)
	}
	return ok, nil
}
