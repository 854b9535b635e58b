package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionUnmarshalJSON(t *testing.T) {
	resp := `{
        "useragent": "/zkreg:0.1.0/",
        "dbversion": "0.1.0",
        "protocol": {
            "schemes": ["groth16-bn254", "plonk-bn254"],
            "addressformat": "bech32",
            "addressprefix": "wasm",
            "addressversion": 0,
            "persistfailedproofs": true
        },
        "rpc": {
            "maxwebsocketclients": 64,
            "maxrequestbodybytes": 1048576
        }
    }`
	expected := Version{
		UserAgent: "/zkreg:0.1.0/",
		DBVersion: "0.1.0",
		Protocol: Protocol{
			Schemes:             []string{"groth16-bn254", "plonk-bn254"},
			AddressFormat:       "bech32",
			AddressPrefix:       "wasm",
			PersistFailedProofs: true,
		},
		RPC: RPC{
			MaxWebSocketClients: 64,
			MaxRequestBodyBytes: 1048576,
		},
	}
	var actual Version
	require.NoError(t, json.Unmarshal([]byte(resp), &actual))
	require.Equal(t, expected, actual)

	data, err := json.Marshal(actual)
	require.NoError(t, err)
	require.JSONEq(t, resp, string(data))
}

func TestProofResultJSON(t *testing.T) {
	res := ProofResult{Proof: json.RawMessage(`{"pi_a":"00"}`), IsValid: true}
	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"proof":{"pi_a":"00"},"is_valid":true}`, string(data))
}
