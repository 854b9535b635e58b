/*
Package zkp contains the error taxonomy shared by proof system codecs and
verifiers. Subpackages implement concrete schemes (groth16, plonk), the
canonical point/scalar codec and the scheme capability set.
*/
package zkp

import "errors"

var (
	// ErrHexDecoding is returned when a hex-encoded message field is not valid
	// hex.
	ErrHexDecoding = errors.New("hex decoding error")
	// ErrKeyFormat is returned for malformed verifying key messages (wrong
	// lengths, points not on curve, wrong vector sizes).
	ErrKeyFormat = errors.New("verification key format error")
	// ErrProofFormat is returned for malformed proof messages.
	ErrProofFormat = errors.New("proof format error")
	// ErrVerificationEngine is returned when the verifier itself fails to
	// produce an accept/reject decision.
	ErrVerificationEngine = errors.New("verification engine error")
)
