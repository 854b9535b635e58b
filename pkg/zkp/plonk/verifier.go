package plonk

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/codec"
)

// Selector indices.
const (
	qMIndex     = StateWidth
	qConstIndex = StateWidth + 1
)

// vPowerForZOmegaOpening is the power of v the grand product opening at
// z*omega is aggregated with: r(X), witnesses, permutations and z(X) at z.
const vPowerForZOmegaOpening = 1 + 1 + StateWidth + (StateWidth - 1)

var errDivisionByZero = errors.New("division by zero")

// BN254 is a PLONK verifier over the BN254 curve.
type BN254 struct{}

// BN254VerifyingKey is an assembled verifying key bound to its public inputs.
type BN254VerifyingKey struct {
	N                           uint64
	NumInputs                   uint64
	Inputs                      []fr.Element
	SelectorCommitments         [NumSelectors]bn254.G1Affine
	NextStepSelectorCommitments [NumNextStepSelector]bn254.G1Affine
	PermutationCommitments      [NumPermutations]bn254.G1Affine
	NonResidues                 [NumNonResidues]fr.Element
	G2Elements                  [NumG2Elements]bn254.G2Affine
}

// BN254Proof is an assembled proof.
type BN254Proof struct {
	N                          uint64
	NumInputs                  uint64
	WireCommitments            [StateWidth]bn254.G1Affine
	GrandProductCommitment     bn254.G1Affine
	QuotientPolyCommitments    [NumQuotientParts]bn254.G1Affine
	WireValuesAtZ              [StateWidth]fr.Element
	WireValuesAtZOmega         [NumNextStepSelector]fr.Element
	GrandProductAtZOmega       fr.Element
	QuotientPolynomialAtZ      fr.Element
	LinearizationPolynomialAtZ fr.Element
	PermutationPolynomialsAtZ  [NumPermutations - 1]fr.Element
	OpeningAtZProof            bn254.G1Affine
	OpeningAtZOmegaProof       bn254.G1Affine
}

// rootOfUnity is the 2^MaxDomainLog-th primitive root of unity derived from
// the multiplicative generator 7.
var rootOfUnity fr.Element

func init() {
	var g fr.Element
	g.SetUint64(7)
	t := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	t.Rsh(t, MaxDomainLog)
	rootOfUnity.Exp(g, t)
}

func g1s(name string, src [][]byte, dst []bn254.G1Affine, formatErr error) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%w: %s: expected %d elements, got %d", formatErr, name, len(dst), len(src))
	}
	for i := range src {
		var err error
		if dst[i], err = codec.BN254G1(src[i]); err != nil {
			return fmt.Errorf("%w: %s[%d]: %w", formatErr, name, i, err)
		}
	}
	return nil
}

func scalars(name string, src [][]byte, dst []fr.Element, formatErr error) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%w: %s: expected %d elements, got %d", formatErr, name, len(dst), len(src))
	}
	for i := range src {
		v, err := codec.ScalarFromBytes(src[i], fr.Modulus())
		if err != nil {
			return fmt.Errorf("%w: %s[%d]: %w", formatErr, name, i, err)
		}
		dst[i].SetBigInt(v)
	}
	return nil
}

// AssembleKey converts k into a verifying key, checking its shape, every
// point and scalar.
func (BN254) AssembleKey(k *Key) (*BN254VerifyingKey, error) {
	if err := checkSize(k.N, k.NumInputs, zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	vk := &BN254VerifyingKey{
		N:         k.N,
		NumInputs: k.NumInputs,
		Inputs:    make([]fr.Element, k.NumInputs),
	}
	if err := scalars("public_signal", k.PublicSignal, vk.Inputs, zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	if err := g1s("selector_commitments", k.SelectorCommitments, vk.SelectorCommitments[:], zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	if err := g1s("next_step_selector_commitments", k.NextStepSelectorCommitments, vk.NextStepSelectorCommitments[:], zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	if err := g1s("permutation_commitments", k.PermutationCommitments, vk.PermutationCommitments[:], zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	if err := scalars("non_residues", k.NonResidues, vk.NonResidues[:], zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	if len(k.G2Elements) != NumG2Elements {
		return nil, fmt.Errorf("%w: g2_elements: expected %d elements, got %d", zkp.ErrKeyFormat, NumG2Elements, len(k.G2Elements))
	}
	for i := range k.G2Elements {
		var err error
		if vk.G2Elements[i], err = codec.BN254G2(k.G2Elements[i]); err != nil {
			return nil, fmt.Errorf("%w: g2_elements[%d]: %w", zkp.ErrKeyFormat, i, err)
		}
	}
	return vk, nil
}

// AssembleProof converts p into its curve form.
func (BN254) AssembleProof(p *Proof) (*BN254Proof, error) {
	if err := checkSize(p.N, p.NumInputs, zkp.ErrProofFormat); err != nil {
		return nil, err
	}
	res := &BN254Proof{N: p.N, NumInputs: p.NumInputs}
	var (
		points = []struct {
			name string
			src  [][]byte
			dst  []bn254.G1Affine
		}{
			{"wire_commitments", p.WireCommitments, res.WireCommitments[:]},
			{"grand_product_commitment", [][]byte{p.GrandProductCommitment}, []bn254.G1Affine{{}}},
			{"quotient_poly_commitments", p.QuotientPolyCommitments, res.QuotientPolyCommitments[:]},
			{"opening_at_z_proof", [][]byte{p.OpeningAtZProof}, []bn254.G1Affine{{}}},
			{"opening_at_z_omega_proof", [][]byte{p.OpeningAtZOmegaProof}, []bn254.G1Affine{{}}},
		}
		values = []struct {
			name string
			src  [][]byte
			dst  []fr.Element
		}{
			{"wire_values_at_z", p.WireValuesAtZ, res.WireValuesAtZ[:]},
			{"wire_values_at_z_omega", p.WireValuesAtZOmega, res.WireValuesAtZOmega[:]},
			{"grand_product_at_z_omega", [][]byte{p.GrandProductAtZOmega}, []fr.Element{{}}},
			{"quotient_polynomial_at_z", [][]byte{p.QuotientPolynomialAtZ}, []fr.Element{{}}},
			{"linearization_polynomial_at_z", [][]byte{p.LinearizationPolynomialAtZ}, []fr.Element{{}}},
			{"permutation_polynomials_at_z", p.PermutationPolynomialsAtZ, res.PermutationPolynomialsAtZ[:]},
		}
	)
	for _, f := range points {
		if err := g1s(f.name, f.src, f.dst, zkp.ErrProofFormat); err != nil {
			return nil, err
		}
	}
	for _, f := range values {
		if err := scalars(f.name, f.src, f.dst, zkp.ErrProofFormat); err != nil {
			return nil, err
		}
	}
	res.GrandProductCommitment = points[1].dst[0]
	res.OpeningAtZProof = points[3].dst[0]
	res.OpeningAtZOmegaProof = points[4].dst[0]
	res.GrandProductAtZOmega = values[2].dst[0]
	res.QuotientPolynomialAtZ = values[3].dst[0]
	res.LinearizationPolynomialAtZ = values[4].dst[0]
	return res, nil
}

// domain is a multiplicative subgroup of the scalar field.
type domain struct {
	size      uint64
	generator fr.Element
}

func newDomain(size uint64) (*domain, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("domain size %d is not a power of two", size)
	}
	log := bits.TrailingZeros64(size)
	if log > MaxDomainLog {
		return nil, fmt.Errorf("domain size 2^%d is too big", log)
	}
	d := &domain{size: size, generator: rootOfUnity}
	for i := log; i < MaxDomainLog; i++ {
		d.generator.Square(&d.generator)
	}
	return d, nil
}

// vanishing evaluates X^size - 1 at z.
func (d *domain) vanishing(z *fr.Element) fr.Element {
	var (
		res fr.Element
		one = fr.One()
	)
	res.Exp(*z, new(big.Int).SetUint64(d.size))
	res.Sub(&res, &one)
	return res
}

// lagrange evaluates the i-th Lagrange basis polynomial of the domain at z:
// omega^i * (z^size - 1) / (size * (z - omega^i)).
func (d *domain) lagrange(i int, z *fr.Element) (fr.Element, error) {
	var omegaI, den, size fr.Element

	num := d.vanishing(z)
	omegaI.Exp(d.generator, big.NewInt(int64(i)))
	num.Mul(&num, &omegaI)

	size.SetUint64(d.size)
	den.Sub(z, &omegaI)
	den.Mul(&den, &size)
	if den.IsZero() {
		return fr.Element{}, errDivisionByZero
	}
	den.Inverse(&den)
	num.Mul(&num, &den)
	return num, nil
}

func mul(p *bn254.G1Affine, s *fr.Element) *bn254.G1Jac {
	var res bn254.G1Jac
	res.ScalarMultiplicationAffine(p, s.BigInt(new(big.Int)))
	return &res
}

// Verify checks p against vk. The transcript is seeded with the key's
// public inputs, proof n and num_inputs must match the key ones.
func (BN254) Verify(vk *BN254VerifyingKey, p *BN254Proof) (bool, error) {
	if p.N != vk.N || p.NumInputs != vk.NumInputs {
		return false, fmt.Errorf("%w: proof is for n=%d, num_inputs=%d, key has n=%d, num_inputs=%d",
			zkp.ErrProofFormat, p.N, p.NumInputs, vk.N, vk.NumInputs)
	}
	d, err := newDomain(vk.N + 1)
	if err != nil {
		return false, fmt.Errorf("%w: %v", zkp.ErrVerificationEngine, err)
	}

	var tr transcript
	for i := range vk.Inputs {
		tr.commitScalar(&vk.Inputs[i])
	}
	for i := range p.WireCommitments {
		tr.commitPoint(&p.WireCommitments[i])
	}
	beta := tr.challenge()
	gamma := tr.challenge()

	tr.commitPoint(&p.GrandProductCommitment)
	alpha := tr.challenge()

	for i := range p.QuotientPolyCommitments {
		tr.commitPoint(&p.QuotientPolyCommitments[i])
	}
	z := tr.challenge()

	var zOmega fr.Element
	zOmega.Mul(&z, &d.generator)

	for i := range p.WireValuesAtZ {
		tr.commitScalar(&p.WireValuesAtZ[i])
	}
	for i := range p.WireValuesAtZOmega {
		tr.commitScalar(&p.WireValuesAtZOmega[i])
	}
	for i := range p.PermutationPolynomialsAtZ {
		tr.commitScalar(&p.PermutationPolynomialsAtZ[i])
	}
	// z(z*omega) goes last, after t(z) and r(z).
	tr.commitScalar(&p.QuotientPolynomialAtZ)
	tr.commitScalar(&p.LinearizationPolynomialAtZ)
	tr.commitScalar(&p.GrandProductAtZOmega)

	l0AtZ, err := d.lagrange(0, &z)
	if err != nil {
		return false, fmt.Errorf("%w: %v", zkp.ErrVerificationEngine, err)
	}
	var alpha2 fr.Element
	alpha2.Square(&alpha)

	ok, err := checkRelation(d, vk, p, &z, &alpha, &alpha2, &beta, &gamma, &l0AtZ)
	if err != nil || !ok {
		return false, err
	}

	v := tr.challenge()
	tr.commitPoint(&p.OpeningAtZProof)
	tr.commitPoint(&p.OpeningAtZOmegaProof)
	u := tr.challenge()

	r := linearizationCommitment(vk, p, &z, &alpha, &alpha2, &beta, &gamma, &l0AtZ, &v, &u)

	var zInDomainSize fr.Element
	zInDomainSize.Exp(z, new(big.Int).SetUint64(d.size))

	// Quotient parts are combined as t_0 + z^N*t_1 + z^2N*t_2 + ...
	var agg bn254.G1Jac
	agg.FromAffine(&p.QuotientPolyCommitments[0])
	cur := zInDomainSize
	for i := 1; i < len(p.QuotientPolyCommitments); i++ {
		agg.AddAssign(mul(&p.QuotientPolyCommitments[i], &cur))
		cur.Mul(&cur, &zInDomainSize)
	}

	challenge := v
	agg.AddAssign(r)
	for i := range p.WireCommitments {
		challenge.Mul(&challenge, &v)
		agg.AddAssign(mul(&p.WireCommitments[i], &challenge))
	}
	for i := 0; i < NumPermutations-1; i++ {
		challenge.Mul(&challenge, &v)
		agg.AddAssign(mul(&vk.PermutationCommitments[i], &challenge))
	}
	// z(X) at z is already a part of r.
	challenge.Mul(&challenge, &v)

	var s fr.Element
	challenge.Mul(&challenge, &v)
	s.Mul(&challenge, &u)
	agg.AddAssign(mul(&p.WireCommitments[StateWidth-1], &s))

	var (
		valueChallenge = fr.One()
		value          = p.QuotientPolynomialAtZ
		tmp            fr.Element
		atZ            = make([]fr.Element, 0, 1+StateWidth+NumPermutations-1)
	)
	atZ = append(atZ, p.LinearizationPolynomialAtZ)
	atZ = append(atZ, p.WireValuesAtZ[:]...)
	atZ = append(atZ, p.PermutationPolynomialsAtZ[:]...)
	for i := range atZ {
		valueChallenge.Mul(&valueChallenge, &v)
		tmp.Mul(&atZ[i], &valueChallenge)
		value.Add(&value, &tmp)
	}
	for _, atZOmega := range []fr.Element{p.GrandProductAtZOmega, p.WireValuesAtZOmega[0]} {
		valueChallenge.Mul(&valueChallenge, &v)
		tmp.Mul(&valueChallenge, &atZOmega)
		tmp.Mul(&tmp, &u)
		value.Add(&value, &tmp)
	}

	_, _, g1, _ := bn254.Generators()
	agg.SubAssign(mul(&g1, &value))

	// e(W_z + u*W_zw, x*G2) = e(z*W_z + u*z*w*W_zw + agg, G2)
	pairWithGenerator := agg
	pairWithGenerator.AddAssign(mul(&p.OpeningAtZProof, &z))
	s.Mul(&zOmega, &u)
	pairWithGenerator.AddAssign(mul(&p.OpeningAtZOmegaProof, &s))

	pairWithX := mul(&p.OpeningAtZOmegaProof, &u)
	pairWithX.AddMixed(&p.OpeningAtZProof)
	pairWithX.Neg(pairWithX)

	var pg, px bn254.G1Affine
	pg.FromJacobian(&pairWithGenerator)
	px.FromJacobian(pairWithX)

	ok, err = bn254.PairingCheck(
		[]bn254.G1Affine{pg, px},
		[]bn254.G2Affine{vk.G2Elements[0], vk.G2Elements[1]},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", zkp.ErrVerificationEngine, err)
	}
	return ok, nil
}

// checkRelation checks t(z) * Z_H(z) against the linearization polynomial
// value, public inputs and permutation argument terms.
func checkRelation(d *domain, vk *BN254VerifyingKey, p *BN254Proof, z, alpha, alpha2, beta, gamma, l0AtZ *fr.Element) (bool, error) {
	var (
		lhs fr.Element
		rhs = p.LinearizationPolynomialAtZ
		tmp fr.Element
	)
	zh := d.vanishing(z)
	lhs.Mul(&p.QuotientPolynomialAtZ, &zh)

	for i := range vk.Inputs {
		li, err := d.lagrange(i, z)
		if err != nil {
			return false, fmt.Errorf("%w: %v", zkp.ErrVerificationEngine, err)
		}
		tmp.Mul(&li, &vk.Inputs[i])
		rhs.Add(&rhs, &tmp)
	}

	zPart := p.GrandProductAtZOmega
	for i := range p.PermutationPolynomialsAtZ {
		tmp.Mul(&p.PermutationPolynomialsAtZ[i], beta)
		tmp.Add(&tmp, gamma)
		tmp.Add(&tmp, &p.WireValuesAtZ[i])
		zPart.Mul(&zPart, &tmp)
	}
	tmp.Add(gamma, &p.WireValuesAtZ[StateWidth-1])
	zPart.Mul(&zPart, &tmp)
	zPart.Mul(&zPart, alpha)
	rhs.Sub(&rhs, &zPart)

	tmp.Mul(l0AtZ, alpha2)
	rhs.Sub(&rhs, &tmp)

	return lhs.Equal(&rhs), nil
}

// linearizationCommitment reconstructs the commitment to r(X) from the key
// and proof commitments, multiplied by v, plus the z(X) part opened at z*omega.
func linearizationCommitment(vk *BN254VerifyingKey, p *BN254Proof, z, alpha, alpha2, beta, gamma, l0AtZ, v, u *fr.Element) *bn254.G1Jac {
	var (
		r   bn254.G1Jac
		tmp fr.Element
	)
	// Main gate, public inputs are not included.
	r.FromAffine(&vk.SelectorCommitments[qConstIndex])
	for i := 0; i < StateWidth; i++ {
		r.AddAssign(mul(&vk.SelectorCommitments[i], &p.WireValuesAtZ[i]))
	}
	tmp.Mul(&p.WireValuesAtZ[0], &p.WireValuesAtZ[1])
	r.AddAssign(mul(&vk.SelectorCommitments[qMIndex], &tmp))
	r.AddAssign(mul(&vk.NextStepSelectorCommitments[0], &p.WireValuesAtZOmega[0]))

	// alpha * (a + beta*z + gamma)(b + beta*k1*z + gamma)... + alpha^2 * L_0(z)
	grandProductAtZ := fr.One()
	nonResidues := append([]fr.Element{fr.One()}, vk.NonResidues[:]...)
	for i := range p.WireValuesAtZ {
		tmp.Mul(z, &nonResidues[i])
		tmp.Mul(&tmp, beta)
		tmp.Add(&tmp, &p.WireValuesAtZ[i])
		tmp.Add(&tmp, gamma)
		grandProductAtZ.Mul(&grandProductAtZ, &tmp)
	}
	grandProductAtZ.Mul(&grandProductAtZ, alpha)
	tmp.Mul(l0AtZ, alpha2)
	grandProductAtZ.Add(&grandProductAtZ, &tmp)

	// alpha * (a + beta*perm_a(z) + gamma)... * beta * z(z*omega)
	lastPermutation := fr.One()
	for i := range p.PermutationPolynomialsAtZ {
		tmp.Mul(beta, &p.PermutationPolynomialsAtZ[i])
		tmp.Add(&tmp, &p.WireValuesAtZ[i])
		tmp.Add(&tmp, gamma)
		lastPermutation.Mul(&lastPermutation, &tmp)
	}
	lastPermutation.Mul(&lastPermutation, beta)
	lastPermutation.Mul(&lastPermutation, &p.GrandProductAtZOmega)
	lastPermutation.Mul(&lastPermutation, alpha)

	r.AddAssign(mul(&p.GrandProductCommitment, &grandProductAtZ))
	r.SubAssign(mul(&vk.PermutationCommitments[NumPermutations-1], &lastPermutation))
	r.ScalarMultiplication(&r, v.BigInt(new(big.Int)))

	// v^P * u * z(X)
	var grandProductAtZOmega fr.Element
	grandProductAtZOmega.Exp(*v, big.NewInt(vPowerForZOmegaOpening))
	grandProductAtZOmega.Mul(&grandProductAtZOmega, u)
	r.AddAssign(mul(&p.GrandProductCommitment, &grandProductAtZOmega))

	return &r
}
