/*
Package groth16 implements a reduced two-input Groth16 verifier over BN254
and BLS12-381. A verifying key carries exactly two IC points and is bound to
a single public signal at registration time, so proofs are always checked
against the issuer-provided input.
*/
package groth16

import (
	"fmt"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/zkp-registry/pkg/io"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/codec"
)

// MaxSignalLen is the maximum length of a public signal string.
const MaxSignalLen = 80

// KeyMessage is the wire form of a key registration request, every point is
// hex-encoded in uncompressed form.
type KeyMessage struct {
	PublicSignal string `json:"public_signal"`
	Alpha1       string `json:"vk_alpha1"`
	Beta2        string `json:"vk_beta_2"`
	Gamma2       string `json:"vk_gamma_2"`
	Delta2       string `json:"vk_delta_2"`
	IC0          string `json:"vk_ic0"`
	IC1          string `json:"vk_ic1"`
}

// ProofMessage is the wire form of a proof submission.
type ProofMessage struct {
	A string `json:"proof_a"`
	B string `json:"proof_b"`
	C string `json:"proof_c"`
}

// Key is a decoded verifying key in its canonical byte form together with the
// public signal it's bound to.
type Key struct {
	PublicSignal string
	Alpha1       []byte
	Beta2        []byte
	Gamma2       []byte
	Delta2       []byte
	IC0          []byte
	IC1          []byte
}

// Proof is a decoded proof in canonical byte form.
type Proof struct {
	A []byte
	B []byte
	C []byte
}

// sizes describes point lengths of a particular curve.
type sizes struct {
	g1, g2 int
}

// decodeKeyMessage unmarshals m and decodes all of its hex fields. Hex errors
// take precedence over any length errors.
func decodeKeyMessage(data []byte, sz sizes) (*Key, error) {
	var m KeyMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", zkp.ErrKeyFormat, err)
	}
	if len(m.PublicSignal) > MaxSignalLen {
		return nil, fmt.Errorf("%w: public signal is too long", zkp.ErrKeyFormat)
	}
	var (
		k      = &Key{PublicSignal: m.PublicSignal}
		fields = []struct {
			name string
			src  string
			dst  *[]byte
			size int
		}{
			{"vk_alpha1", m.Alpha1, &k.Alpha1, sz.g1},
			{"vk_beta_2", m.Beta2, &k.Beta2, sz.g2},
			{"vk_gamma_2", m.Gamma2, &k.Gamma2, sz.g2},
			{"vk_delta_2", m.Delta2, &k.Delta2, sz.g2},
			{"vk_ic0", m.IC0, &k.IC0, sz.g1},
			{"vk_ic1", m.IC1, &k.IC1, sz.g1},
		}
		err error
	)
	for _, f := range fields {
		*f.dst, err = codec.DecodeHex(f.src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	for _, f := range fields {
		if err = codec.CheckLength(*f.dst, f.size); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", zkp.ErrKeyFormat, f.name, err)
		}
	}
	return k, nil
}

func decodeProofMessage(data []byte, sz sizes) (*Proof, error) {
	var m ProofMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", zkp.ErrProofFormat, err)
	}
	var (
		p      = new(Proof)
		fields = []struct {
			name string
			src  string
			dst  *[]byte
			size int
		}{
			{"proof_a", m.A, &p.A, sz.g1},
			{"proof_b", m.B, &p.B, sz.g2},
			{"proof_c", m.C, &p.C, sz.g1},
		}
		err error
	)
	for _, f := range fields {
		*f.dst, err = codec.DecodeHex(f.src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	for _, f := range fields {
		if err = codec.CheckLength(*f.dst, f.size); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", zkp.ErrProofFormat, f.name, err)
		}
	}
	return p, nil
}

// Message returns the wire form of k.
func (k *Key) Message() KeyMessage {
	return KeyMessage{
		PublicSignal: k.PublicSignal,
		Alpha1:       codec.EncodeHex(k.Alpha1),
		Beta2:        codec.EncodeHex(k.Beta2),
		Gamma2:       codec.EncodeHex(k.Gamma2),
		Delta2:       codec.EncodeHex(k.Delta2),
		IC0:          codec.EncodeHex(k.IC0),
		IC1:          codec.EncodeHex(k.IC1),
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (k *Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Message())
}

// EncodeBinary implements the io.Serializable interface.
func (k *Key) EncodeBinary(w *io.BinWriter) {
	w.WriteString(k.PublicSignal)
	w.WriteVarBytes(k.Alpha1)
	w.WriteVarBytes(k.Beta2)
	w.WriteVarBytes(k.Gamma2)
	w.WriteVarBytes(k.Delta2)
	w.WriteVarBytes(k.IC0)
	w.WriteVarBytes(k.IC1)
}

// DecodeBinary implements the io.Serializable interface.
func (k *Key) DecodeBinary(r *io.BinReader) {
	k.PublicSignal = r.ReadString(MaxSignalLen)
	k.Alpha1 = r.ReadVarBytes()
	k.Beta2 = r.ReadVarBytes()
	k.Gamma2 = r.ReadVarBytes()
	k.Delta2 = r.ReadVarBytes()
	k.IC0 = r.ReadVarBytes()
	k.IC1 = r.ReadVarBytes()
}

// Message returns the wire form of p.
func (p *Proof) Message() ProofMessage {
	return ProofMessage{
		A: codec.EncodeHex(p.A),
		B: codec.EncodeHex(p.B),
		C: codec.EncodeHex(p.C),
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Message())
}

// EncodeBinary implements the io.Serializable interface.
func (p *Proof) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(p.A)
	w.WriteVarBytes(p.B)
	w.WriteVarBytes(p.C)
}

// DecodeBinary implements the io.Serializable interface.
func (p *Proof) DecodeBinary(r *io.BinReader) {
	p.A = r.ReadVarBytes()
	p.B = r.ReadVarBytes()
	p.C = r.ReadVarBytes()
}
