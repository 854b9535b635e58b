package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrDrained is returned on an attempt to use an already drained write buffer.
var ErrDrained = errors.New("buffer already drained")

// BinWriter writes registry records into an io.Writer remembering the first
// error, so that encoders don't need to check it after every field.
type BinWriter struct {
	w   io.Writer
	Err error
	tmp [binary.MaxVarintLen64]byte
}

// NewBinWriter makes a BinWriter from io.Writer.
func NewBinWriter(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteBytes writes b as is, without length prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(b byte) {
	w.tmp[0] = b
	w.WriteBytes(w.tmp[:1])
}

// WriteBool writes 1 for true and 0 for false.
func (w *BinWriter) WriteBool(b bool) {
	if b {
		w.WriteB(1)
		return
	}
	w.WriteB(0)
}

// WriteU64LE writes a little-endian uint64.
func (w *BinWriter) WriteU64LE(v uint64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], v)
	w.WriteBytes(w.tmp[:8])
}

// WriteVarUint writes v as unsigned LEB128 varint.
func (w *BinWriter) WriteVarUint(v uint64) {
	n := binary.PutUvarint(w.tmp[:], v)
	w.WriteBytes(w.tmp[:n])
}

// WriteVarBytes writes a varint length prefix followed by b.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes s the same way WriteVarBytes does.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarUint(uint64(len(s)))
	if w.Err != nil {
		return
	}
	_, w.Err = io.WriteString(w.w, s)
}

// BufBinWriter is a BinWriter over an internal buffer that can be taken
// once via Bytes.
type BufBinWriter struct {
	*BinWriter
	buf bytes.Buffer
}

// NewBufBinWriter makes a BufBinWriter with an empty buffer.
func NewBufBinWriter() *BufBinWriter {
	b := new(BufBinWriter)
	b.BinWriter = NewBinWriter(&b.buf)
	return b
}

// Bytes returns the buffer contents, subsequent writes fail with ErrDrained.
func (bw *BufBinWriter) Bytes() []byte {
	if bw.Err != nil {
		return nil
	}
	bw.Err = ErrDrained
	return bw.buf.Bytes()
}
