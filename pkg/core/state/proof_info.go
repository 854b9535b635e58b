package state

import (
	"github.com/nspcc-dev/zkp-registry/pkg/io"
)

// MaxProofSize is the maximum size of a serialized proof.
const MaxProofSize = 64 * 1024

// ProofInfo is a stored verification outcome. Proof holds the
// scheme-specific serialized proof exactly as it was submitted.
type ProofInfo struct {
	Proof   []byte
	IsValid bool
}

// EncodeBinary implements the io.Serializable interface.
func (p *ProofInfo) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(p.Proof)
	w.WriteBool(p.IsValid)
}

// DecodeBinary implements the io.Serializable interface.
func (p *ProofInfo) DecodeBinary(r *io.BinReader) {
	p.Proof = r.ReadVarBytes(MaxProofSize)
	p.IsValid = r.ReadBool()
}
