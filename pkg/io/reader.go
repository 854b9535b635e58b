package io

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxVarSize is the maximum length of a variable-sized field.
const MaxVarSize = 0x1000000

// ErrTooBig is returned when a length prefix exceeds the allowed maximum.
var ErrTooBig = errors.New("field is too big")

// BinReader reads registry records from an io.Reader remembering the first
// error.
type BinReader struct {
	r   *bufio.Reader
	tmp [8]byte
	Err error
}

// NewBinReader makes a BinReader from io.Reader.
func NewBinReader(ior io.Reader) *BinReader {
	return &BinReader{r: bufio.NewReader(ior)}
}

// NewBinReaderFromBuf makes a BinReader from a byte slice.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return NewBinReader(bytes.NewReader(b))
}

// ReadBytes fills buf completely.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadB reads a single byte, zero is returned on failure.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.tmp[:1])
	if r.Err != nil {
		return 0
	}
	return r.tmp[0]
}

// ReadBool reads a byte written by WriteBool. Values other than 0 and 1 are
// rejected.
func (r *BinReader) ReadBool() bool {
	b := r.ReadB()
	if b > 1 && r.Err == nil {
		r.Err = fmt.Errorf("invalid bool value %d", b)
	}
	return b == 1
}

// ReadU64LE reads a little-endian uint64.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.tmp[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.tmp[:8])
}

// ReadVarUint reads an unsigned LEB128 varint.
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		r.Err = err
		return 0
	}
	return v
}

// ReadVarBytes reads a length-prefixed byte slice. The length is limited by
// MaxVarSize or by maxSize if given.
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	limit := MaxVarSize
	if len(maxSize) != 0 {
		limit = maxSize[0]
	}
	if n > uint64(limit) {
		r.Err = fmt.Errorf("%w: %d", ErrTooBig, n)
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	if r.Err != nil {
		return nil
	}
	return b
}

// ReadString reads a string written by WriteString.
func (r *BinReader) ReadString(maxSize ...int) string {
	return string(r.ReadVarBytes(maxSize...))
}
