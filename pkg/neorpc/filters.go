package neorpc

import (
	"errors"
)

// EventFilter is a wrapper structure for registry event filter. Events can be
// filtered by scheme name, issuer, prover and verification outcome, nil
// fields are not checked. Prover and IsValid are only meaningful for
// proof_verified events.
type EventFilter struct {
	Scheme  *string `json:"scheme,omitempty"`
	Issuer  *string `json:"issuer,omitempty"`
	Prover  *string `json:"prover,omitempty"`
	IsValid *bool   `json:"is_valid,omitempty"`
}

// Copy creates a deep copy of the EventFilter. It handles nil EventFilter
// correctly.
func (f *EventFilter) Copy() *EventFilter {
	if f == nil {
		return nil
	}
	var res = new(EventFilter)
	if f.Scheme != nil {
		res.Scheme = new(string)
		*res.Scheme = *f.Scheme
	}
	if f.Issuer != nil {
		res.Issuer = new(string)
		*res.Issuer = *f.Issuer
	}
	if f.Prover != nil {
		res.Prover = new(string)
		*res.Prover = *f.Prover
	}
	if f.IsValid != nil {
		res.IsValid = new(bool)
		*res.IsValid = *f.IsValid
	}
	return res
}

// IsValidFor checks whether the filter can be applied to events of the
// given type.
func (f EventFilter) IsValidFor(e EventID) error {
	if e == KeyRegisteredEventID && (f.Prover != nil || f.IsValid != nil) {
		return errors.New("prover and is_valid filters can't be used for key_registered events")
	}
	return nil
}
