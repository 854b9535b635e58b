/*
Package plonk implements verification of width-4 PLONK proofs (with access
to the next trace step) over BN254, as produced by better_cs-style provers
with a rolling Keccak256 transcript.

Keys and proofs travel as JSON messages with hex-encoded points and scalars.
Public inputs are never taken from the proof: they're bound to the key at
registration and fed into the transcript from there.
*/
package plonk

import (
	"fmt"
	"strings"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/zkp-registry/pkg/io"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/codec"
)

// Shape of the supported constraint system.
const (
	StateWidth          = 4
	NumSelectors        = StateWidth + 2
	NumNextStepSelector = 1
	NumPermutations     = StateWidth
	NumNonResidues      = StateWidth - 1
	NumG2Elements       = 2
	NumQuotientParts    = StateWidth

	// MaxDomainLog is the base 2 logarithm of the largest supported
	// evaluation domain.
	MaxDomainLog = 28
	// MaxInputs is the maximum number of public inputs.
	MaxInputs = 64
)

// KeyMessage is the wire form of a PLONK key registration request.
type KeyMessage struct {
	PublicSignal                []string `json:"public_signal"`
	N                           uint64   `json:"n"`
	NumInputs                   uint64   `json:"num_inputs"`
	SelectorCommitments         []string `json:"selector_commitments"`
	NextStepSelectorCommitments []string `json:"next_step_selector_commitments"`
	PermutationCommitments      []string `json:"permutation_commitments"`
	NonResidues                 []string `json:"non_residues"`
	G2Elements                  []string `json:"g2_elements"`
}

// ProofMessage is the wire form of a PLONK proof submission.
type ProofMessage struct {
	N                          uint64   `json:"n"`
	NumInputs                  uint64   `json:"num_inputs"`
	WireCommitments            []string `json:"wire_commitments"`
	GrandProductCommitment     string   `json:"grand_product_commitment"`
	QuotientPolyCommitments    []string `json:"quotient_poly_commitments"`
	WireValuesAtZ              []string `json:"wire_values_at_z"`
	WireValuesAtZOmega         []string `json:"wire_values_at_z_omega"`
	GrandProductAtZOmega       string   `json:"grand_product_at_z_omega"`
	QuotientPolynomialAtZ      string   `json:"quotient_polynomial_at_z"`
	LinearizationPolynomialAtZ string   `json:"linearization_polynomial_at_z"`
	PermutationPolynomialsAtZ  []string `json:"permutation_polynomials_at_z"`
	OpeningAtZProof            string   `json:"opening_at_z_proof"`
	OpeningAtZOmegaProof       string   `json:"opening_at_z_omega_proof"`
}

// Key is a decoded verifying key with its public inputs. Points are kept in
// uncompressed form, scalars as big-endian bytes.
type Key struct {
	PublicSignal                [][]byte
	N                           uint64
	NumInputs                   uint64
	SelectorCommitments         [][]byte
	NextStepSelectorCommitments [][]byte
	PermutationCommitments      [][]byte
	NonResidues                 [][]byte
	G2Elements                  [][]byte
}

// Proof is a decoded PLONK proof.
type Proof struct {
	N                          uint64
	NumInputs                  uint64
	WireCommitments            [][]byte
	GrandProductCommitment     []byte
	QuotientPolyCommitments    [][]byte
	WireValuesAtZ              [][]byte
	WireValuesAtZOmega         [][]byte
	GrandProductAtZOmega       []byte
	QuotientPolynomialAtZ      []byte
	LinearizationPolynomialAtZ []byte
	PermutationPolynomialsAtZ  [][]byte
	OpeningAtZProof            []byte
	OpeningAtZOmegaProof       []byte
}

// field is a single message field description used for two-pass decoding:
// all hex is decoded first, shapes are checked afterwards.
type field struct {
	name   string
	src    []string
	dst    *[][]byte
	count  int
	size   int
	scalar bool
}

func decodeHex(s string, scalar bool) ([]byte, error) {
	if scalar {
		s = strings.TrimPrefix(s, "0x")
	}
	return codec.DecodeHex(s)
}

func decodeFields(fields []field, formatErr error) error {
	for _, f := range fields {
		*f.dst = make([][]byte, len(f.src))
		for i, s := range f.src {
			b, err := decodeHex(s, f.scalar)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", f.name, i, err)
			}
			(*f.dst)[i] = b
		}
	}
	for _, f := range fields {
		if len(*f.dst) != f.count {
			return fmt.Errorf("%w: %s: expected %d elements, got %d", formatErr, f.name, f.count, len(*f.dst))
		}
		for i, b := range *f.dst {
			var err error
			if f.scalar {
				if len(b) == 0 || len(b) > codec.MaxScalarSize {
					err = fmt.Errorf("%w: bad length %d", codec.ErrInvalidScalar, len(b))
				}
			} else {
				err = codec.CheckLength(b, f.size)
			}
			if err != nil {
				return fmt.Errorf("%w: %s[%d]: %w", formatErr, f.name, i, err)
			}
		}
	}
	return nil
}

// checkSize ensures that n + 1 is a power of two not exceeding
// 2^MaxDomainLog, n is checked before the addition so it can't wrap.
func checkSize(n, numInputs uint64, formatErr error) error {
	if n == 0 || n >= 1<<MaxDomainLog || (n+1)&n != 0 {
		return fmt.Errorf("%w: n = %d doesn't give a supported domain size", formatErr, n)
	}
	if numInputs > MaxInputs || numInputs > n+1 {
		return fmt.Errorf("%w: bad number of inputs %d", formatErr, numInputs)
	}
	return nil
}

// DecodeKey decodes a JSON key registration message.
func (BN254) DecodeKey(data []byte) (*Key, error) {
	var m KeyMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", zkp.ErrKeyFormat, err)
	}
	k := &Key{N: m.N, NumInputs: m.NumInputs}
	if len(m.PublicSignal) > MaxInputs {
		return nil, fmt.Errorf("%w: too many public inputs", zkp.ErrKeyFormat)
	}
	err := decodeFields([]field{
		{"public_signal", m.PublicSignal, &k.PublicSignal, len(m.PublicSignal), 0, true},
		{"selector_commitments", m.SelectorCommitments, &k.SelectorCommitments, NumSelectors, codec.BN254G1Size, false},
		{"next_step_selector_commitments", m.NextStepSelectorCommitments, &k.NextStepSelectorCommitments, NumNextStepSelector, codec.BN254G1Size, false},
		{"permutation_commitments", m.PermutationCommitments, &k.PermutationCommitments, NumPermutations, codec.BN254G1Size, false},
		{"non_residues", m.NonResidues, &k.NonResidues, NumNonResidues, 0, true},
		{"g2_elements", m.G2Elements, &k.G2Elements, NumG2Elements, codec.BN254G2Size, false},
	}, zkp.ErrKeyFormat)
	if err != nil {
		return nil, err
	}
	if err = checkSize(k.N, k.NumInputs, zkp.ErrKeyFormat); err != nil {
		return nil, err
	}
	if uint64(len(k.PublicSignal)) != k.NumInputs {
		return nil, fmt.Errorf("%w: %d public inputs for num_inputs %d", zkp.ErrKeyFormat, len(k.PublicSignal), k.NumInputs)
	}
	return k, nil
}

// DecodeProof decodes a JSON proof submission message.
func (BN254) DecodeProof(data []byte) (*Proof, error) {
	var m ProofMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", zkp.ErrProofFormat, err)
	}
	var (
		p       = &Proof{N: m.N, NumInputs: m.NumInputs}
		singles [6][][]byte
	)
	err := decodeFields([]field{
		{"wire_commitments", m.WireCommitments, &p.WireCommitments, StateWidth, codec.BN254G1Size, false},
		{"grand_product_commitment", []string{m.GrandProductCommitment}, &singles[0], 1, codec.BN254G1Size, false},
		{"quotient_poly_commitments", m.QuotientPolyCommitments, &p.QuotientPolyCommitments, NumQuotientParts, codec.BN254G1Size, false},
		{"wire_values_at_z", m.WireValuesAtZ, &p.WireValuesAtZ, StateWidth, 0, true},
		{"wire_values_at_z_omega", m.WireValuesAtZOmega, &p.WireValuesAtZOmega, NumNextStepSelector, 0, true},
		{"grand_product_at_z_omega", []string{m.GrandProductAtZOmega}, &singles[1], 1, 0, true},
		{"quotient_polynomial_at_z", []string{m.QuotientPolynomialAtZ}, &singles[2], 1, 0, true},
		{"linearization_polynomial_at_z", []string{m.LinearizationPolynomialAtZ}, &singles[3], 1, 0, true},
		{"permutation_polynomials_at_z", m.PermutationPolynomialsAtZ, &p.PermutationPolynomialsAtZ, NumPermutations - 1, 0, true},
		{"opening_at_z_proof", []string{m.OpeningAtZProof}, &singles[4], 1, codec.BN254G1Size, false},
		{"opening_at_z_omega_proof", []string{m.OpeningAtZOmegaProof}, &singles[5], 1, codec.BN254G1Size, false},
	}, zkp.ErrProofFormat)
	if err != nil {
		return nil, err
	}
	p.GrandProductCommitment = singles[0][0]
	p.GrandProductAtZOmega = singles[1][0]
	p.QuotientPolynomialAtZ = singles[2][0]
	p.LinearizationPolynomialAtZ = singles[3][0]
	p.OpeningAtZProof = singles[4][0]
	p.OpeningAtZOmegaProof = singles[5][0]
	if err = checkSize(p.N, p.NumInputs, zkp.ErrProofFormat); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeAll(bs [][]byte) []string {
	res := make([]string, len(bs))
	for i := range bs {
		res[i] = codec.EncodeHex(bs[i])
	}
	return res
}

// Message returns the wire form of k.
func (k *Key) Message() KeyMessage {
	return KeyMessage{
		PublicSignal:                encodeAll(k.PublicSignal),
		N:                           k.N,
		NumInputs:                   k.NumInputs,
		SelectorCommitments:         encodeAll(k.SelectorCommitments),
		NextStepSelectorCommitments: encodeAll(k.NextStepSelectorCommitments),
		PermutationCommitments:      encodeAll(k.PermutationCommitments),
		NonResidues:                 encodeAll(k.NonResidues),
		G2Elements:                  encodeAll(k.G2Elements),
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (k *Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Message())
}

// Message returns the wire form of p.
func (p *Proof) Message() ProofMessage {
	return ProofMessage{
		N:                          p.N,
		NumInputs:                  p.NumInputs,
		WireCommitments:            encodeAll(p.WireCommitments),
		GrandProductCommitment:     codec.EncodeHex(p.GrandProductCommitment),
		QuotientPolyCommitments:    encodeAll(p.QuotientPolyCommitments),
		WireValuesAtZ:              encodeAll(p.WireValuesAtZ),
		WireValuesAtZOmega:         encodeAll(p.WireValuesAtZOmega),
		GrandProductAtZOmega:       codec.EncodeHex(p.GrandProductAtZOmega),
		QuotientPolynomialAtZ:      codec.EncodeHex(p.QuotientPolynomialAtZ),
		LinearizationPolynomialAtZ: codec.EncodeHex(p.LinearizationPolynomialAtZ),
		PermutationPolynomialsAtZ:  encodeAll(p.PermutationPolynomialsAtZ),
		OpeningAtZProof:            codec.EncodeHex(p.OpeningAtZProof),
		OpeningAtZOmegaProof:       codec.EncodeHex(p.OpeningAtZOmegaProof),
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Message())
}

// maxElementSize limits a single stored point or scalar.
const maxElementSize = codec.BN254G2Size

func writeBytesArray(w *io.BinWriter, arr [][]byte) {
	w.WriteVarUint(uint64(len(arr)))
	for _, b := range arr {
		w.WriteVarBytes(b)
	}
}

func readBytesArray(r *io.BinReader, maxLen int) [][]byte {
	l := r.ReadVarUint()
	if l > uint64(maxLen) {
		r.Err = io.ErrTooBig
		return nil
	}
	res := make([][]byte, l)
	for i := range res {
		res[i] = r.ReadVarBytes(maxElementSize)
	}
	return res
}

// EncodeBinary implements the io.Serializable interface.
func (k *Key) EncodeBinary(w *io.BinWriter) {
	writeBytesArray(w, k.PublicSignal)
	w.WriteU64LE(k.N)
	w.WriteU64LE(k.NumInputs)
	writeBytesArray(w, k.SelectorCommitments)
	writeBytesArray(w, k.NextStepSelectorCommitments)
	writeBytesArray(w, k.PermutationCommitments)
	writeBytesArray(w, k.NonResidues)
	writeBytesArray(w, k.G2Elements)
}

// DecodeBinary implements the io.Serializable interface.
func (k *Key) DecodeBinary(r *io.BinReader) {
	k.PublicSignal = readBytesArray(r, MaxInputs)
	k.N = r.ReadU64LE()
	k.NumInputs = r.ReadU64LE()
	k.SelectorCommitments = readBytesArray(r, NumSelectors)
	k.NextStepSelectorCommitments = readBytesArray(r, NumNextStepSelector)
	k.PermutationCommitments = readBytesArray(r, NumPermutations)
	k.NonResidues = readBytesArray(r, NumNonResidues)
	k.G2Elements = readBytesArray(r, NumG2Elements)
}

// EncodeBinary implements the io.Serializable interface.
func (p *Proof) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(p.N)
	w.WriteU64LE(p.NumInputs)
	writeBytesArray(w, p.WireCommitments)
	w.WriteVarBytes(p.GrandProductCommitment)
	writeBytesArray(w, p.QuotientPolyCommitments)
	writeBytesArray(w, p.WireValuesAtZ)
	writeBytesArray(w, p.WireValuesAtZOmega)
	w.WriteVarBytes(p.GrandProductAtZOmega)
	w.WriteVarBytes(p.QuotientPolynomialAtZ)
	w.WriteVarBytes(p.LinearizationPolynomialAtZ)
	writeBytesArray(w, p.PermutationPolynomialsAtZ)
	w.WriteVarBytes(p.OpeningAtZProof)
	w.WriteVarBytes(p.OpeningAtZOmegaProof)
}

// DecodeBinary implements the io.Serializable interface.
func (p *Proof) DecodeBinary(r *io.BinReader) {
	p.N = r.ReadU64LE()
	p.NumInputs = r.ReadU64LE()
	p.WireCommitments = readBytesArray(r, StateWidth)
	p.GrandProductCommitment = r.ReadVarBytes(maxElementSize)
	p.QuotientPolyCommitments = readBytesArray(r, NumQuotientParts)
	p.WireValuesAtZ = readBytesArray(r, StateWidth)
	p.WireValuesAtZOmega = readBytesArray(r, NumNextStepSelector)
	p.GrandProductAtZOmega = r.ReadVarBytes(maxElementSize)
	p.QuotientPolynomialAtZ = r.ReadVarBytes(maxElementSize)
	p.LinearizationPolynomialAtZ = r.ReadVarBytes(maxElementSize)
	p.PermutationPolynomialsAtZ = readBytesArray(r, NumPermutations-1)
	p.OpeningAtZProof = r.ReadVarBytes(maxElementSize)
	p.OpeningAtZOmegaProof = r.ReadVarBytes(maxElementSize)
}
