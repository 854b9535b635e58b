package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/zkp-registry/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config"))
	require.NoError(t, err)
	require.Equal(t, []string{"groth16-bn254", "groth16-bls12381", "plonk-bn254"}, cfg.ProtocolConfiguration.Schemes)
	require.False(t, cfg.ProtocolConfiguration.PersistFailedProofs)
	require.Equal(t, dbconfig.LevelDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.True(t, cfg.ApplicationConfiguration.RPC.Enabled)
	require.Equal(t, []string{":20332"}, cfg.ApplicationConfiguration.RPC.Addresses)
	require.Equal(t, DefaultMaxRequestHeaderBytes, cfg.ApplicationConfiguration.RPC.MaxRequestHeaderBytes)

	fees, err := cfg.ProtocolConfiguration.Fees.Config()
	require.NoError(t, err)
	require.Equal(t, "0token", fees.KeyRegistrationFee.String())
}

func TestDefaults(t *testing.T) {
	cfg, err := Decode([]byte("ApplicationConfiguration:\n  LogLevel: debug\n"))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.ApplicationConfiguration.LogLevel)
	require.Equal(t, dbconfig.InMemoryDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.Equal(t, DefaultKeyCacheSize, cfg.ApplicationConfiguration.KeyCacheSize)
	require.Equal(t, 3, len(cfg.ProtocolConfiguration.Schemes))

	fees, err := cfg.ProtocolConfiguration.Fees.Config()
	require.NoError(t, err)
	require.Nil(t, fees.KeyRegistrationFee)
	require.Nil(t, fees.ProofSubmissionFee)

	c, err := cfg.ProtocolConfiguration.AddressCodec()
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"unknown field":    "ProtocolConfiguration:\n  Magic: 1\n",
		"unknown scheme":   "ProtocolConfiguration:\n  Schemes: [groth16-bn254, snark]\n",
		"duplicate scheme": "ProtocolConfiguration:\n  Schemes: [plonk-bn254, plonk-bn254]\n",
		"no schemes":       "ProtocolConfiguration:\n  Schemes: []\n",
		"address format":   "ProtocolConfiguration:\n  AddressFormat: hex\n",
		"bad fee":          "ProtocolConfiguration:\n  Fees:\n    KeyRegistration: {Denom: token, Amount: \"-1\"}\n",
		"db type":          "ApplicationConfiguration:\n  DBConfiguration:\n    Type: redis\n",
		"rpc addresses":    "ApplicationConfiguration:\n  RPC:\n    Enabled: true\n",
		"body limit":       "ApplicationConfiguration:\n  RPC:\n    MaxRequestBodyBytes: -1\n",
		"not yaml":         "{",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte("ProtocolConfiguration:\n  PersistFailedProofs: true\n"), 0o644))
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.True(t, cfg.ProtocolConfiguration.PersistFailedProofs)
}
