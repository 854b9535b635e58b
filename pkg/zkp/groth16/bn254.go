package groth16

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/codec"
)

// BN254 is a Groth16 verifier over the BN254 curve.
type BN254 struct{}

// BN254VerifyingKey is an assembled BN254 verifying key.
type BN254VerifyingKey = CurveKey[bn254.G1Affine, bn254.G2Affine]

// BN254Proof is an assembled BN254 proof.
type BN254Proof = CurveProof[bn254.G1Affine, bn254.G2Affine]

var bn254Curve = &curve[bn254.G1Affine, bn254.G2Affine]{
	sizes:   sizes{g1: codec.BN254G1Size, g2: codec.BN254G2Size},
	g1:      codec.BN254G1,
	g2:      codec.BN254G2,
	modulus: fr.Modulus(),
}

// DecodeKey decodes a JSON key registration message.
func (BN254) DecodeKey(data []byte) (*Key, error) {
	return decodeKeyMessage(data, bn254Curve.sizes)
}

// DecodeProof decodes a JSON proof submission message.
func (BN254) DecodeProof(data []byte) (*Proof, error) {
	return decodeProofMessage(data, bn254Curve.sizes)
}

// AssembleKey converts k into a verifying key.
func (BN254) AssembleKey(k *Key) (*BN254VerifyingKey, error) {
	return bn254Curve.assembleKey(k)
}

// AssembleProof converts p into its curve form.
func (BN254) AssembleProof(p *Proof) (*BN254Proof, error) {
	return bn254Curve.assembleProof(p)
}

// Verify checks e(A, B) = e(alpha, beta) * e(vk_x, gamma) * e(C, delta)
// where vk_x = IC[0] + input*IC[1].
func (BN254) Verify(vk *BN254VerifyingKey, p *BN254Proof) (bool, error) {
	var vkX, t bn254.G1Affine
	t.ScalarMultiplication(&vk.IC[1], vk.Input)
	vkX.Add(&vk.IC[0], &t)

	var negAlpha, negVkX, negC bn254.G1Affine
	negAlpha.Neg(&vk.Alpha1)
	negVkX.Neg(&vkX)
	negC.Neg(&p.C)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{p.A, negAlpha, negVkX, negC},
		[]bn254.G2Affine{p.B, vk.Beta2, vk.Gamma2, vk.Delta2},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", zkp.ErrVerificationEngine, err)
	}
	return ok, nil
}
