package groth16

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/codec"
)

// CurveKey is a verifying key assembled into the G1 and G2 points of a
// particular curve.
type CurveKey[G1, G2 any] struct {
	Alpha1 G1
	// BetaG1 and DeltaG1 are not used by the two-input verifier and are
	// always the identity.
	BetaG1  G1
	DeltaG1 G1
	Beta2   G2
	Gamma2  G2
	Delta2  G2
	IC      [2]G1
	Input   *big.Int
}

// CurveProof is a proof assembled into curve points.
type CurveProof[G1, G2 any] struct {
	A G1
	B G2
	C G1
}

// curve holds point decoders and sizes of a pairing-friendly curve.
type curve[G1, G2 any] struct {
	sizes
	g1      func([]byte) (G1, error)
	g2      func([]byte) (G2, error)
	modulus *big.Int
}

// assembleKey converts k into a verifying key, checking every point and
// the public signal.
func (c *curve[G1, G2]) assembleKey(k *Key) (*CurveKey[G1, G2], error) {
	var (
		vk  = new(CurveKey[G1, G2])
		err error
	)
	g1 := []struct {
		name string
		src  []byte
		dst  *G1
	}{
		{"vk_alpha1", k.Alpha1, &vk.Alpha1},
		{"vk_ic0", k.IC0, &vk.IC[0]},
		{"vk_ic1", k.IC1, &vk.IC[1]},
	}
	for _, p := range g1 {
		if *p.dst, err = c.g1(p.src); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", zkp.ErrKeyFormat, p.name, err)
		}
	}
	g2 := []struct {
		name string
		src  []byte
		dst  *G2
	}{
		{"vk_beta_2", k.Beta2, &vk.Beta2},
		{"vk_gamma_2", k.Gamma2, &vk.Gamma2},
		{"vk_delta_2", k.Delta2, &vk.Delta2},
	}
	for _, p := range g2 {
		if *p.dst, err = c.g2(p.src); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", zkp.ErrKeyFormat, p.name, err)
		}
	}
	vk.Input, err = codec.ParseSignal(k.PublicSignal, c.modulus)
	if err != nil {
		return nil, fmt.Errorf("%w: public_signal: %w", zkp.ErrKeyFormat, err)
	}
	return vk, nil
}

func (c *curve[G1, G2]) assembleProof(p *Proof) (*CurveProof[G1, G2], error) {
	var (
		res = new(CurveProof[G1, G2])
		err error
	)
	if res.A, err = c.g1(p.A); err != nil {
		return nil, fmt.Errorf("%w: proof_a: %w", zkp.ErrProofFormat, err)
	}
	if res.B, err = c.g2(p.B); err != nil {
		return nil, fmt.Errorf("%w: proof_b: %w", zkp.ErrProofFormat, err)
	}
	if res.C, err = c.g1(p.C); err != nil {
		return nil, fmt.Errorf("%w: proof_c: %w", zkp.ErrProofFormat, err)
	}
	return res, nil
}
