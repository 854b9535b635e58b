package rpcevent

import (
	"github.com/nspcc-dev/zkp-registry/pkg/core/registryevent"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
)

type (
	// Comparator is an interface required from notification event filter to be able to
	// filter notifications.
	Comparator interface {
		EventID() neorpc.EventID
		Filter() any
	}
	// Container is an interface required from notification event to be able to
	// pass filter.
	Container interface {
		EventID() neorpc.EventID
		EventPayload() any
	}
)

// Matches filters our given Container against Comparator filter.
func Matches(f Comparator, r Container) bool {
	expectedEvent := f.EventID()
	filter := f.Filter()
	if r.EventID() != expectedEvent {
		return false
	}
	if filter == nil {
		return true
	}
	switch f.EventID() {
	case neorpc.KeyRegisteredEventID, neorpc.ProofVerifiedEventID:
		filt := filter.(neorpc.EventFilter)
		e := r.EventPayload().(*registryevent.Event)
		schemeOk := filt.Scheme == nil || e.Scheme.String() == *filt.Scheme
		issuerOk := filt.Issuer == nil || e.Issuer == *filt.Issuer
		proverOk := filt.Prover == nil || e.Prover == *filt.Prover
		validOk := filt.IsValid == nil || e.IsValid == *filt.IsValid
		return schemeOk && issuerOk && proverOk && validOk
	}
	return false
}
