package registryevent

import (
	"encoding/json"
	"errors"

	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
)

// Type represents registry event type.
type Type byte

const (
	// KeyRegistered marks a successful key registration.
	KeyRegistered Type = 0x01
	// ProofVerified marks a recorded proof verification outcome.
	ProofVerified Type = 0x02
)

// Event represents one of registry events. It's emitted after the request
// changes are persisted.
type Event struct {
	Type    Type      `json:"type"`
	Scheme  scheme.ID `json:"scheme"`
	Issuer  string    `json:"issuer"`
	Prover  string    `json:"prover,omitempty"`
	IsValid bool      `json:"is_valid"`
}

// String is a Stringer implementation.
func (e Type) String() string {
	switch e {
	case KeyRegistered:
		return "key_registered"
	case ProofVerified:
		return "proof_verified"
	default:
		return "unknown"
	}
}

// GetEventTypeFromString converts the input string into the Type if it's possible.
func GetEventTypeFromString(s string) (Type, error) {
	switch s {
	case "key_registered":
		return KeyRegistered, nil
	case "proof_verified":
		return ProofVerified, nil
	default:
		return 0, errors.New("invalid event type name")
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (e Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *Type) UnmarshalJSON(b []byte) error {
	var s string

	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	id, err := GetEventTypeFromString(s)
	if err != nil {
		return err
	}
	*e = id
	return nil
}
