/*
Package scheme provides a uniform capability interface over the supported
proof systems. The set of schemes is closed: every scheme has a stable
numeric ID used in storage keys and a name used in configuration and RPC.
*/
package scheme

import (
	"encoding"
	"errors"
	"fmt"
	"strconv"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/zkp-registry/pkg/io"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/groth16"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/plonk"
)

// ID is a scheme identifier.
type ID byte

// Supported schemes.
const (
	Groth16BN254    ID = 1
	Groth16BLS12381 ID = 2
	PlonkBN254      ID = 3
)

const (
	groth16BN254Name = "groth16-bn254"
	groth16BLSName   = "groth16-bls12381"
	plonkBN254Name   = "plonk-bn254"
)

// ErrUnknownScheme is returned for unsupported scheme names and IDs.
var ErrUnknownScheme = errors.New("unknown scheme")

type (
	// Key is a decoded verifying key in its canonical byte form. JSON
	// encoding produces the wire message with lowercase hex.
	Key interface {
		io.Serializable
		json.Marshaler
	}

	// Proof is a decoded proof in its canonical byte form.
	Proof interface {
		io.Serializable
		json.Marshaler
	}

	// Verifier is an assembled verifying key.
	Verifier interface {
		// Verify assembles p and checks it. Malformed proofs fail with
		// zkp.ErrProofFormat, verifier failures with zkp.ErrVerificationEngine.
		Verify(p Proof) (bool, error)
	}

	// Scheme is a proof system.
	Scheme interface {
		ID() ID
		Name() string
		// DecodeKey parses a JSON key registration message.
		DecodeKey(msg []byte) (Key, error)
		// DecodeProof parses a JSON proof submission message.
		DecodeProof(msg []byte) (Proof, error)
		// NewKey returns an empty key for binary decoding.
		NewKey() Key
		// NewProof returns an empty proof for binary decoding.
		NewProof() Proof
		// Assemble converts k into curve points, checking every element.
		Assemble(k Key) (Verifier, error)
	}
)

var schemes = []Scheme{
	&variant[*groth16.Key, *groth16.Proof, *groth16.BN254VerifyingKey, *groth16.BN254Proof]{
		id:            Groth16BN254,
		name:          groth16BN254Name,
		newKey:        func() *groth16.Key { return new(groth16.Key) },
		newProof:      func() *groth16.Proof { return new(groth16.Proof) },
		decodeKey:     groth16.BN254{}.DecodeKey,
		decodeProof:   groth16.BN254{}.DecodeProof,
		assembleKey:   groth16.BN254{}.AssembleKey,
		assembleProof: groth16.BN254{}.AssembleProof,
		verify:        groth16.BN254{}.Verify,
	},
	&variant[*groth16.Key, *groth16.Proof, *groth16.BLS12381VerifyingKey, *groth16.BLS12381Proof]{
		id:            Groth16BLS12381,
		name:          groth16BLSName,
		newKey:        func() *groth16.Key { return new(groth16.Key) },
		newProof:      func() *groth16.Proof { return new(groth16.Proof) },
		decodeKey:     groth16.BLS12381{}.DecodeKey,
		decodeProof:   groth16.BLS12381{}.DecodeProof,
		assembleKey:   groth16.BLS12381{}.AssembleKey,
		assembleProof: groth16.BLS12381{}.AssembleProof,
		verify:        groth16.BLS12381{}.Verify,
	},
	&variant[*plonk.Key, *plonk.Proof, *plonk.BN254VerifyingKey, *plonk.BN254Proof]{
		id:            PlonkBN254,
		name:          plonkBN254Name,
		newKey:        func() *plonk.Key { return new(plonk.Key) },
		newProof:      func() *plonk.Proof { return new(plonk.Proof) },
		decodeKey:     plonk.BN254{}.DecodeKey,
		decodeProof:   plonk.BN254{}.DecodeProof,
		assembleKey:   plonk.BN254{}.AssembleKey,
		assembleProof: plonk.BN254{}.AssembleProof,
		verify:        plonk.BN254{}.Verify,
	},
}

// All returns all supported schemes ordered by ID.
func All() []Scheme {
	res := make([]Scheme, len(schemes))
	copy(res, schemes)
	return res
}

// ByID returns the scheme with the given ID.
func ByID(id ID) (Scheme, error) {
	for _, s := range schemes {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, id)
}

// ByName returns the scheme with the given name.
func ByName(name string) (Scheme, error) {
	for _, s := range schemes {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// String implements the fmt.Stringer interface.
func (id ID) String() string {
	s, err := ByID(id)
	if err != nil {
		return "scheme(" + strconv.Itoa(int(id)) + ")"
	}
	return s.Name()
}

// MarshalText implements the encoding.TextMarshaler interface.
func (id ID) MarshalText() ([]byte, error) {
	s, err := ByID(id)
	if err != nil {
		return nil, err
	}
	return []byte(s.Name()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (id *ID) UnmarshalText(text []byte) error {
	s, err := ByName(string(text))
	if err != nil {
		return err
	}
	*id = s.ID()
	return nil
}

var (
	_ encoding.TextMarshaler   = ID(0)
	_ encoding.TextUnmarshaler = (*ID)(nil)
)

// KeyFromBytes decodes a key stored in binary form.
func KeyFromBytes(s Scheme, b []byte) (Key, error) {
	k := s.NewKey()
	r := io.NewBinReaderFromBuf(b)
	k.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return k, nil
}

// ProofFromBytes decodes a proof stored in binary form.
func ProofFromBytes(s Scheme, b []byte) (Proof, error) {
	p := s.NewProof()
	r := io.NewBinReaderFromBuf(b)
	p.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return p, nil
}

// Bytes returns binary form of a key or proof.
func Bytes(v io.Serializable) ([]byte, error) {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}
