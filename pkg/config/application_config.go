package config

import (
	"fmt"

	"github.com/nspcc-dev/zkp-registry/pkg/core/storage/dbconfig"
)

// DefaultKeyCacheSize is the default number of assembled verifying keys
// kept in memory per scheme.
const DefaultKeyCacheSize = 128

// ApplicationConfiguration config specific to the node.
type ApplicationConfiguration struct {
	LogLevel        string                   `yaml:"LogLevel"`
	LogPath         string                   `yaml:"LogPath"`
	KeyCacheSize    int                      `yaml:"KeyCacheSize"`
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	RPC             RPC                      `yaml:"RPC"`
	Prometheus      BasicService             `yaml:"Prometheus"`
	Pprof           BasicService             `yaml:"Pprof"`
}

// Validate checks ApplicationConfiguration for internal consistency.
func (a *ApplicationConfiguration) Validate() error {
	if err := a.DBConfiguration.Validate(); err != nil {
		return err
	}
	if a.KeyCacheSize < 0 {
		return fmt.Errorf("negative KeyCacheSize: %d", a.KeyCacheSize)
	}
	for _, s := range []struct {
		name string
		svc  BasicService
	}{{"RPC", a.RPC.BasicService}, {"Prometheus", a.Prometheus}, {"Pprof", a.Pprof}} {
		if s.svc.Enabled && len(s.svc.Addresses) == 0 {
			return fmt.Errorf("%s is enabled, but no addresses are given", s.name)
		}
	}
	return a.RPC.Validate()
}
