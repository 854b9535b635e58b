/*
Package dbconfig contains storage backend configuration.
*/
package dbconfig

import (
	"errors"
	"fmt"
)

// Supported database types.
const (
	LevelDB    = "leveldb"
	BoltDB     = "boltdb"
	InMemoryDB = "inmemory"
)

type (
	// DBConfiguration selects and configures the registry store. Supported
	// types are [LevelDB], [BoltDB] and [InMemoryDB] (data is lost on restart).
	DBConfiguration struct {
		Type           string         `yaml:"Type"`
		LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
		BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
	}
	// LevelDBOptions configuration for LevelDB.
	LevelDBOptions struct {
		DataDirectoryPath string `yaml:"DataDirectoryPath"`
		ReadOnly          bool   `yaml:"ReadOnly"`
	}
	// BoltDBOptions configuration for BoltDB.
	BoltDBOptions struct {
		FilePath string `yaml:"FilePath"`
		ReadOnly bool   `yaml:"ReadOnly"`
	}
)

// Validate checks that the type is known and the selected on-disk backend
// has its path configured.
func (c DBConfiguration) Validate() error {
	switch c.Type {
	case LevelDB:
		if c.LevelDBOptions.DataDirectoryPath == "" {
			return errors.New("LevelDB DataDirectoryPath is not set")
		}
	case BoltDB:
		if c.BoltDBOptions.FilePath == "" {
			return errors.New("BoltDB FilePath is not set")
		}
	case InMemoryDB:
	default:
		return fmt.Errorf("unknown DB type: %q", c.Type)
	}
	return nil
}
