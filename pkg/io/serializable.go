package io

// Serializable is implemented by every persisted registry entity. Errors are
// passed via BinReader/BinWriter Err field, implementations must not panic
// when it's already set, only the top-level caller checks it.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}

// ToBytes serializes s into a new byte slice.
func ToBytes(s Serializable) ([]byte, error) {
	w := NewBufBinWriter()
	s.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes deserializes s from data. Trailing bytes are not checked.
func FromBytes(data []byte, s Serializable) error {
	r := NewBinReaderFromBuf(data)
	s.DecodeBinary(r)
	return r.Err
}
