package dao

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/io"
)

// ErrIncompatibleVersion is returned when the stored DB version differs from
// the one the node expects.
var ErrIncompatibleVersion = errors.New("incompatible store version")

// MaxKeySize is the maximum size of a serialized verifying key.
const MaxKeySize = 64 * 1024

// Simple is memCached wrapper around DB, simple DAO implementation.
type Simple struct {
	Store *storage.MemCachedStore
}

// NewSimple creates new simple dao using provided backend store.
func NewSimple(backend storage.Store) *Simple {
	return &Simple{Store: storage.NewMemCachedStore(backend)}
}

// GetBatch returns currently accumulated DB changeset.
func (dao *Simple) GetBatch() *storage.MemBatch {
	return dao.Store.GetBatch()
}

// GetWrapped returns new DAO instance with another layer of wrapped
// MemCachedStore around the current DAO Store.
func (dao *Simple) GetWrapped() *Simple {
	return NewSimple(dao.Store)
}

// Persist flushes all the changes made into the (supposedly) persistent
// underlying store in a single changeset.
func (dao *Simple) Persist() (int, error) {
	return dao.Store.Persist()
}

// GetAndDecode performs get operation and decoding with serializable structures.
func (dao *Simple) GetAndDecode(entity io.Serializable, key []byte) error {
	entityBytes, err := dao.Store.Get(key)
	if err != nil {
		return err
	}
	reader := io.NewBinReaderFromBuf(entityBytes)
	entity.DecodeBinary(reader)
	return reader.Err
}

// putWithBuffer performs put operation using buf as a pre-allocated buffer for serialization.
func (dao *Simple) putWithBuffer(entity io.Serializable, key []byte, buf *io.BufBinWriter) error {
	entity.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	dao.Store.Put(key, buf.Bytes())
	return nil
}

// -- start version.

// Version is the version of the stored data layout.
type Version struct {
	Value string
}

// Bytes returns serialized Version.
func (v *Version) Bytes() []byte {
	return []byte(v.Value)
}

// FromBytes restores Version from its serialized form.
func (v *Version) FromBytes(data []byte) error {
	if len(data) == 0 {
		return errors.New("missing version")
	}
	v.Value = string(data)
	return nil
}

// GetVersion attempts to get the current version stored in the
// underlying store.
func (dao *Simple) GetVersion() (Version, error) {
	var version Version

	data, err := dao.Store.Get(storage.SYSVersion.Bytes())
	if err == nil {
		err = version.FromBytes(data)
	}
	return version, err
}

// PutVersion stores the given version in the underlying store.
func (dao *Simple) PutVersion(v Version) {
	dao.Store.Put(storage.SYSVersion.Bytes(), v.Bytes())
}

// CheckVersion writes v into an empty store or ensures that the stored
// version is equal to v.
func (dao *Simple) CheckVersion(v Version) error {
	stored, err := dao.GetVersion()
	if errors.Is(err, storage.ErrKeyNotFound) {
		dao.PutVersion(v)
		return nil
	}
	if err != nil {
		return err
	}
	if stored.Value != v.Value {
		return fmt.Errorf("%w: %s (expected %s)", ErrIncompatibleVersion, stored.Value, v.Value)
	}
	return nil
}

// -- end version.

// -- start config.

func makeConfigKey(scheme byte) []byte {
	return []byte{byte(storage.STConfig), scheme}
}

// GetConfig returns configuration of the given scheme.
func (dao *Simple) GetConfig(scheme byte) (*state.Config, error) {
	cfg := new(state.Config)
	err := dao.GetAndDecode(cfg, makeConfigKey(scheme))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// PutConfig stores configuration of the given scheme.
func (dao *Simple) PutConfig(scheme byte, cfg *state.Config) error {
	return dao.putWithBuffer(cfg, makeConfigKey(scheme), io.NewBufBinWriter())
}

// -- end config.

// -- start issuer keys.

func makeIssuerKeyKey(scheme byte, issuer []byte) []byte {
	key := make([]byte, 2+len(issuer))
	key[0] = byte(storage.STIssuerKey)
	key[1] = scheme
	copy(key[2:], issuer)
	return key
}

// GetIssuerKey returns serialized verifying key registered by issuer.
func (dao *Simple) GetIssuerKey(scheme byte, issuer []byte) ([]byte, error) {
	return dao.Store.Get(makeIssuerKeyKey(scheme, issuer))
}

// PutIssuerKey stores serialized verifying key of issuer replacing the
// previous one if any.
func (dao *Simple) PutIssuerKey(scheme byte, issuer []byte, key []byte) error {
	if len(key) > MaxKeySize {
		return fmt.Errorf("key is too big: %d", len(key))
	}
	dao.Store.Put(makeIssuerKeyKey(scheme, issuer), key)
	return nil
}

// SeekIssuerKeys iterates over all keys registered for the scheme in
// ascending issuer order until f returns false.
func (dao *Simple) SeekIssuerKeys(scheme byte, f func(issuer []byte, key []byte) bool) {
	dao.Store.Seek(storage.SeekRange{Prefix: makeIssuerKeyKey(scheme, nil)}, func(k, v []byte) bool {
		return f(k[2:], v)
	})
}

// -- end issuer keys.

// -- start proof results.

func makeProverLatestKey(scheme byte, prover []byte) []byte {
	key := make([]byte, 2+len(prover))
	key[0] = byte(storage.STProverLatest)
	key[1] = scheme
	copy(key[2:], prover)
	return key
}

func makeVerificationResultKey(scheme byte, issuer, prover []byte) []byte {
	buf := io.NewBufBinWriter()
	buf.WriteB(byte(storage.STVerificationResult))
	buf.WriteB(scheme)
	buf.WriteVarBytes(issuer)
	buf.WriteVarBytes(prover)
	return buf.Bytes()
}

// GetProverLatest returns the latest verification outcome of prover.
func (dao *Simple) GetProverLatest(scheme byte, prover []byte) (*state.ProofInfo, error) {
	info := new(state.ProofInfo)
	err := dao.GetAndDecode(info, makeProverLatestKey(scheme, prover))
	if err != nil {
		return nil, err
	}
	return info, nil
}

// GetVerificationResult returns the latest outcome of prover's proof checked
// against issuer's key.
func (dao *Simple) GetVerificationResult(scheme byte, issuer, prover []byte) (*state.ProofInfo, error) {
	info := new(state.ProofInfo)
	err := dao.GetAndDecode(info, makeVerificationResultKey(scheme, issuer, prover))
	if err != nil {
		return nil, err
	}
	return info, nil
}

// PutProofInfo records verification outcome both as the prover's latest one
// and as the (issuer, prover) pair result.
func (dao *Simple) PutProofInfo(scheme byte, issuer, prover []byte, info *state.ProofInfo) error {
	buf := io.NewBufBinWriter()
	info.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	val := buf.Bytes()
	dao.Store.Put(makeProverLatestKey(scheme, prover), val)
	dao.Store.Put(makeVerificationResultKey(scheme, issuer, prover), val)
	return nil
}

// -- end proof results.
