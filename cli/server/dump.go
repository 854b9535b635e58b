package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/zkp-registry/pkg/core/dao"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
)

// dump is a portable JSON representation of the whole registry DB.
type dump struct {
	Version string      `json:"version"`
	Size    int         `json:"size"`
	Storage []storageOp `json:"storage"`
}

type storageOp struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// storeToDump collects all registry records except the version one.
func storeToDump(s storage.Store) (*dump, error) {
	v, err := dao.NewSimple(s).GetVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB version: %w", err)
	}
	d := &dump{Version: v.Value, Storage: []storageOp{}}
	s.Seek(storage.SeekRange{}, func(k, v []byte) bool {
		if len(k) == 0 || k[0] == byte(storage.SYSVersion) {
			return true
		}
		d.Storage = append(d.Storage, storageOp{
			Key:   base64.StdEncoding.EncodeToString(k),
			Value: base64.StdEncoding.EncodeToString(v),
		})
		return true
	})
	d.Size = len(d.Storage)
	return d, nil
}

// changeSet converts the dump into the set of puts, version included.
func (d *dump) changeSet() (map[string][]byte, error) {
	if d.Version == "" {
		return nil, errors.New("missing version")
	}
	if d.Size != len(d.Storage) {
		return nil, fmt.Errorf("size mismatch: %d records, %d expected", len(d.Storage), d.Size)
	}
	puts := make(map[string][]byte, len(d.Storage)+1)
	for i, op := range d.Storage {
		k, err := base64.StdEncoding.DecodeString(op.Key)
		if err != nil {
			return nil, fmt.Errorf("record %d: bad key: %w", i, err)
		}
		if len(k) == 0 || k[0] == byte(storage.SYSVersion) {
			return nil, fmt.Errorf("record %d: invalid key", i)
		}
		v, err := base64.StdEncoding.DecodeString(op.Value)
		if err != nil {
			return nil, fmt.Errorf("record %d: bad value: %w", i, err)
		}
		puts[string(k)] = v
	}
	puts[string(storage.SYSVersion.Bytes())] = []byte(d.Version)
	return puts, nil
}

func writeDump(w io.Writer, d *dump) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(d)
}

func readDump(r io.Reader) (*dump, error) {
	d := new(dump)
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(d); err != nil {
		return nil, err
	}
	return d, nil
}

func readDumpFile(path string) (*dump, error) {
	if path == "" {
		return readDump(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readDump(f)
}
