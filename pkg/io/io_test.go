package io

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingRW struct{}

func (failingRW) Write([]byte) (int, error) { return 0, errors.New("write failed") }
func (failingRW) Read([]byte) (int, error)  { return 0, errors.New("read failed") }

type record struct {
	id    uint64
	name  string
	valid bool
	data  []byte
}

func (r *record) EncodeBinary(w *BinWriter) {
	w.WriteU64LE(r.id)
	w.WriteString(r.name)
	w.WriteBool(r.valid)
	w.WriteVarBytes(r.data)
}

func (r *record) DecodeBinary(br *BinReader) {
	r.id = br.ReadU64LE()
	r.name = br.ReadString()
	r.valid = br.ReadBool()
	r.data = br.ReadVarBytes()
}

func TestRecordRoundTrip(t *testing.T) {
	expected := &record{id: 42, name: "groth16-bn254", valid: true, data: []byte{1, 2, 3}}
	data, err := ToBytes(expected)
	require.NoError(t, err)

	actual := new(record)
	require.NoError(t, FromBytes(data, actual))
	require.Equal(t, expected, actual)

	// Truncated records fail.
	for i := 0; i < len(data); i++ {
		require.Error(t, FromBytes(data[:i], new(record)), "length %d", i)
	}
}

func TestWriteVarUint(t *testing.T) {
	for _, tc := range []struct {
		val  uint64
		size int
	}{
		{0, 1},
		{0x7f, 1},
		{0x80, 2},
		{0x3fff, 2},
		{0x4000, 3},
		{1 << 63, 10},
	} {
		w := NewBufBinWriter()
		w.WriteVarUint(tc.val)
		require.NoError(t, w.Err)
		buf := w.Bytes()
		require.Len(t, buf, tc.size)

		r := NewBinReaderFromBuf(buf)
		require.Equal(t, tc.val, r.ReadVarUint())
		require.NoError(t, r.Err)
	}
}

func TestReadVarBytesLimit(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteVarBytes(make([]byte, 10))
	data := w.Bytes()

	r := NewBinReaderFromBuf(data)
	require.Len(t, r.ReadVarBytes(10), 10)
	require.NoError(t, r.Err)

	r = NewBinReaderFromBuf(data)
	require.Nil(t, r.ReadVarBytes(9))
	require.ErrorIs(t, r.Err, ErrTooBig)
}

func TestReadBool(t *testing.T) {
	r := NewBinReaderFromBuf([]byte{0, 1, 2})
	require.False(t, r.ReadBool())
	require.True(t, r.ReadBool())
	require.NoError(t, r.Err)
	r.ReadBool()
	require.Error(t, r.Err)
}

func TestErrorsAreSticky(t *testing.T) {
	w := NewBinWriter(failingRW{})
	w.WriteB(1)
	require.Error(t, w.Err)
	w.WriteVarBytes([]byte{1})
	w.WriteString("x")
	require.EqualError(t, w.Err, "write failed")

	r := NewBinReader(failingRW{})
	require.Equal(t, uint64(0), r.ReadU64LE())
	require.Error(t, r.Err)
	require.Nil(t, r.ReadVarBytes())
	require.Equal(t, "", r.ReadString())
	require.False(t, r.ReadBool())
}

func TestBufBinWriterDrained(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteB(7)
	require.Equal(t, []byte{7}, w.Bytes())
	require.Nil(t, w.Bytes())
	require.ErrorIs(t, w.Err, ErrDrained)
}

func TestMakeDirForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.log")
	require.NoError(t, MakeDirForFile(path, "test"))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Parent is a regular file.
	require.Error(t, MakeDirForFile(filepath.Join(path, "nested", "file"), "test"))
}
