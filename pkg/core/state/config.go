package state

import (
	"github.com/nspcc-dev/zkp-registry/pkg/io"
)

// Config is a per-scheme registry configuration created once on
// initialization. Absent fees mean the corresponding operation is free.
type Config struct {
	KeyRegistrationFee *Coin `json:"key_registration_fee,omitempty"`
	ProofSubmissionFee *Coin `json:"proof_submission_fee,omitempty"`
}

// EncodeBinary implements the io.Serializable interface.
func (c *Config) EncodeBinary(w *io.BinWriter) {
	encodeOptionalCoin(w, c.KeyRegistrationFee)
	encodeOptionalCoin(w, c.ProofSubmissionFee)
}

// DecodeBinary implements the io.Serializable interface.
func (c *Config) DecodeBinary(r *io.BinReader) {
	c.KeyRegistrationFee = decodeOptionalCoin(r)
	c.ProofSubmissionFee = decodeOptionalCoin(r)
}

func encodeOptionalCoin(w *io.BinWriter, c *Coin) {
	w.WriteBool(c != nil)
	if c != nil {
		c.EncodeBinary(w)
	}
}

func decodeOptionalCoin(r *io.BinReader) *Coin {
	if !r.ReadBool() {
		return nil
	}
	c := new(Coin)
	c.DecodeBinary(r)
	return c
}
