package config

import (
	"fmt"
)

// RPC limits used when not configured.
const (
	DefaultMaxRequestBodyBytes   = 1024 * 1024
	DefaultMaxRequestHeaderBytes = 8 * 1024
	DefaultMaxWebSocketClients   = 64
)

// RPC is an RPC service configuration information.
type RPC struct {
	BasicService          `yaml:",inline"`
	EnableCORSWorkaround  bool `yaml:"EnableCORSWorkaround"`
	MaxRequestBodyBytes   int  `yaml:"MaxRequestBodyBytes"`
	MaxRequestHeaderBytes int  `yaml:"MaxRequestHeaderBytes"`
	MaxWebSocketClients   int  `yaml:"MaxWebSocketClients"`
}

// Validate checks RPC for internal consistency. It returns an error if the
// configuration is invalid.
func (cfg *RPC) Validate() error {
	if cfg.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("MaxRequestBodyBytes must be positive, got %d", cfg.MaxRequestBodyBytes)
	}
	if cfg.MaxWebSocketClients < 0 {
		return fmt.Errorf("negative MaxWebSocketClients: %d", cfg.MaxWebSocketClients)
	}
	return nil
}
