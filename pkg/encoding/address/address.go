/*
Package address validates and converts textual account addresses into the
raw bytes used as storage keys. Two formats are supported: bech32 with a
fixed human-readable prefix and base58check with a fixed version byte.
*/
package address

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/mr-tron/base58"
)

// Supported address formats.
const (
	FormatBech32     = "bech32"
	FormatBase58     = "base58"
	MaxAddressLength = 255
	// Base58PayloadLen is the length of base58check address payload (without
	// version byte and checksum).
	Base58PayloadLen = 20
)

// ErrInvalidAddress is returned for any malformed or non-canonical address.
var ErrInvalidAddress = errors.New("invalid address")

// Codec converts between textual addresses and raw address bytes.
type Codec interface {
	// Decode validates s and returns raw address bytes. Only canonical
	// forms are accepted, so that a single account never maps to two
	// different keys.
	Decode(s string) ([]byte, error)
	Encode(b []byte) (string, error)
}

// Bech32 is a bech32 address codec with a fixed human-readable part.
type Bech32 struct {
	Prefix string
}

// Base58Check is a base58check address codec with a fixed version byte.
type Base58Check struct {
	Version byte
}

// New returns a codec for the given format.
func New(format string, prefix string, version byte) (Codec, error) {
	switch format {
	case FormatBech32, "":
		if prefix == "" {
			return nil, errors.New("empty bech32 address prefix")
		}
		return Bech32{Prefix: prefix}, nil
	case FormatBase58:
		return Base58Check{Version: version}, nil
	default:
		return nil, fmt.Errorf("unknown address format: %s", format)
	}
}

// Decode implements the Codec interface.
func (c Bech32) Decode(s string) ([]byte, error) {
	if strings.ToLower(s) != s {
		return nil, fmt.Errorf("%w: %s is not normalized", ErrInvalidAddress, s)
	}
	hrp, data5, ver, err := bech32.DecodeGeneric(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if ver != bech32.Version0 {
		return nil, fmt.Errorf("%w: bech32m checksum", ErrInvalidAddress)
	}
	data, err := bech32.ConvertBits(data5, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != c.Prefix {
		return nil, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidAddress, hrp)
	}
	if len(data) == 0 || len(data) > MaxAddressLength {
		return nil, fmt.Errorf("%w: bad length %d", ErrInvalidAddress, len(data))
	}
	return data, nil
}

// Encode implements the Codec interface.
func (c Bech32) Encode(b []byte) (string, error) {
	if len(b) == 0 || len(b) > MaxAddressLength {
		return "", fmt.Errorf("%w: bad length %d", ErrInvalidAddress, len(b))
	}
	return bech32.EncodeFromBase256(c.Prefix, b)
}

// Decode implements the Codec interface.
func (c Base58Check) Decode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != 1+Base58PayloadLen+4 {
		return nil, fmt.Errorf("%w: bad length %d", ErrInvalidAddress, len(b))
	}
	sum := checksum(b[:len(b)-4])
	if !bytes.Equal(sum, b[len(b)-4:]) {
		return nil, fmt.Errorf("%w: checksum error", ErrInvalidAddress)
	}
	if b[0] != c.Version {
		return nil, fmt.Errorf("%w: unexpected version %d", ErrInvalidAddress, b[0])
	}
	return b[1 : 1+Base58PayloadLen], nil
}

// Encode implements the Codec interface.
func (c Base58Check) Encode(b []byte) (string, error) {
	if len(b) != Base58PayloadLen {
		return "", fmt.Errorf("%w: bad length %d", ErrInvalidAddress, len(b))
	}
	buf := make([]byte, 0, 1+Base58PayloadLen+4)
	buf = append(buf, c.Version)
	buf = append(buf, b...)
	buf = append(buf, checksum(buf)...)
	return base58.Encode(buf), nil
}

func checksum(data []byte) []byte {
	h := sha256.Sum256(data)
	h = sha256.Sum256(h[:])
	return h[:4]
}
