/*
Package codec implements canonical decoding and encoding of proof system
primitives: hex strings, fixed-length uncompressed curve points and scalar
field elements. Decoders never panic and accept only one byte form per
value, so decoded values re-encode to the identical bytes.
*/
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
)

var (
	// ErrInvalidLength is returned when a buffer has unexpected length.
	ErrInvalidLength = errors.New("invalid length")
	// ErrInvalidPoint is returned for buffers that do not encode a valid
	// uncompressed point of the expected group.
	ErrInvalidPoint = errors.New("invalid point")
	// ErrInvalidScalar is returned for malformed or out-of-field scalars.
	ErrInvalidScalar = errors.New("invalid scalar")
)

// MaxScalarSize is the maximum byte length of a hex-encoded scalar.
const MaxScalarSize = 32

// DecodeHex decodes a hex string (either case, no prefix).
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", zkp.ErrHexDecoding, err)
	}
	return b, nil
}

// EncodeHex returns lowercase hex representation of b.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// CheckLength ensures that b is exactly size bytes long.
func CheckLength(b []byte, size int) error {
	if len(b) != size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, size, len(b))
	}
	return nil
}

// checkFlags validates the metadata bits of an uncompressed point buffer. It
// returns true if the buffer is a well-formed point-at-infinity encoding and
// false if it should be decoded as a regular point.
func checkFlags(b []byte, size int, mask, infinity byte) (bool, error) {
	if err := CheckLength(b, size); err != nil {
		return false, err
	}
	switch b[0] & mask {
	case 0:
		if isZero(b) {
			return false, fmt.Errorf("%w: missing infinity flag", ErrInvalidPoint)
		}
		return false, nil
	case infinity:
		if b[0]&^mask != 0 || !isZero(b[1:]) {
			return false, fmt.Errorf("%w: bad infinity encoding", ErrInvalidPoint)
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: unsupported encoding flags %#x", ErrInvalidPoint, b[0]&mask)
	}
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ParseSignal parses a public signal given either as a decimal string without
// leading zeros or as a 0x-prefixed hex string. The value must be below
// modulus.
func ParseSignal(s string, modulus *big.Int) (*big.Int, error) {
	var (
		v  *big.Int
		ok bool
	)
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty", ErrInvalidScalar)
	case strings.HasPrefix(s, "0x"):
		return ParseFieldHex(s, modulus)
	case len(s) > 1 && s[0] == '0':
		return nil, fmt.Errorf("%w: leading zeros in %q", ErrInvalidScalar, s)
	default:
		for _, c := range s {
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("%w: not a decimal number %q", ErrInvalidScalar, s)
			}
		}
		v, ok = new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("%w: not a decimal number %q", ErrInvalidScalar, s)
		}
	}
	if v.Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("%w: %s exceeds field modulus", ErrInvalidScalar, s)
	}
	return v, nil
}

// ParseFieldHex parses a big-endian hex scalar with optional 0x prefix. Hex
// syntax errors are reported as zkp.ErrHexDecoding.
func ParseFieldHex(s string, modulus *big.Int) (*big.Int, error) {
	b, err := DecodeHex(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	return ScalarFromBytes(b, modulus)
}

// ScalarFromBytes converts big-endian bytes into a scalar below modulus.
func ScalarFromBytes(b []byte, modulus *big.Int) (*big.Int, error) {
	if len(b) == 0 || len(b) > MaxScalarSize {
		return nil, fmt.Errorf("%w: bad length %d", ErrInvalidScalar, len(b))
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("%w: exceeds field modulus", ErrInvalidScalar)
	}
	return v, nil
}
