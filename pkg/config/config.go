package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/zkp-registry/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the config directory.
	DefaultConfigPath = "./config"
	// FileName is the name of the configuration file in the config directory.
	FileName = "zkreg.yml"
	// UserAgentFormat is a formatted string used to generate user agent string.
	UserAgentFormat = "/zkreg:%s/"
)

// Version is the version of the node, set at build time.
var Version string

// UserAgent returns the user agent string of the node.
func UserAgent() string {
	return fmt.Sprintf(UserAgentFormat, Version)
}

// Config top level struct representing the config
// for the node.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load attempts to load the config from the given directory.
func Load(path string) (Config, error) {
	return LoadFile(filepath.Join(path, FileName))
}

// LoadFile loads config from the provided path. Unknown fields are an error.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Decode(configData)
}

// Decode parses YAML configuration applying defaults to missing fields and
// validates the result.
func Decode(configData []byte) (Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("config is invalid: %w", err)
	}
	return config, nil
}

// Default returns configuration with all defaults set: all schemes, bech32
// addresses, free operations and an in-memory DB.
func Default() Config {
	return Config{
		ProtocolConfiguration: ProtocolConfiguration{
			Schemes:       []string{"groth16-bn254", "groth16-bls12381", "plonk-bn254"},
			AddressFormat: "bech32",
			AddressPrefix: "wasm",
		},
		ApplicationConfiguration: ApplicationConfiguration{
			LogLevel:     "info",
			KeyCacheSize: DefaultKeyCacheSize,
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
			RPC: RPC{
				MaxRequestBodyBytes:   DefaultMaxRequestBodyBytes,
				MaxRequestHeaderBytes: DefaultMaxRequestHeaderBytes,
				MaxWebSocketClients:   DefaultMaxWebSocketClients,
			},
		},
	}
}

// Validate checks the whole configuration for internal consistency.
func (c Config) Validate() error {
	if err := c.ProtocolConfiguration.Validate(); err != nil {
		return err
	}
	return c.ApplicationConfiguration.Validate()
}
