// Package testserdes contains round-trip helpers for entity tests.
package testserdes

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/zkp-registry/pkg/io"
	"github.com/stretchr/testify/require"
)

// MarshalUnmarshalJSON checks that expected survives a JSON round trip into
// actual.
func MarshalUnmarshalJSON(t *testing.T, expected, actual any) {
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, expected, actual)
}

// EncodeDecodeBinary checks that expected survives a binary round trip into
// actual and that no bytes are left unread.
func EncodeDecodeBinary(t *testing.T, expected, actual io.Serializable) {
	data, err := io.ToBytes(expected)
	require.NoError(t, err)
	require.NoError(t, io.FromBytes(data, actual))
	require.Equal(t, expected, actual)

	again, err := io.ToBytes(actual)
	require.NoError(t, err)
	require.Equal(t, data, again)
}
