package result

import (
	"encoding/json"
)

type (
	// ProofResult is a recorded proof verification outcome. Proof is the
	// canonical proof message of the scheme.
	ProofResult struct {
		Proof   json.RawMessage `json:"proof"`
		IsValid bool            `json:"is_valid"`
	}

	// ValidateAddress represents a result of the `validateaddress` call.
	ValidateAddress struct {
		Address string `json:"address"`
		IsValid bool   `json:"isvalid"`
	}
)
