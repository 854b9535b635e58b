package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned when the funds sent with a request
	// don't cover the configured fee.
	ErrInsufficientFunds = errors.New("insufficient funds sent")
	// ErrUnknownIssuer is matched by UnknownIssuerError.
	ErrUnknownIssuer = errors.New("unknown issuer")
	// ErrInvalidProof is returned when a well-formed proof doesn't verify.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrNotFound is returned by queries for missing records.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned for any operation before Init.
	ErrNotInitialized = errors.New("registry is not initialized")
	// ErrAlreadyInitialized is returned by the second Init.
	ErrAlreadyInitialized = errors.New("registry is already initialized")
)

// UnknownIssuerError is returned when a proof is submitted against an issuer
// that has no registered key.
type UnknownIssuerError struct {
	Issuer string
}

// Error implements the error interface.
func (e *UnknownIssuerError) Error() string {
	return fmt.Sprintf("%s: %s has no registered key", ErrUnknownIssuer, e.Issuer)
}

// Is allows to match the error against ErrUnknownIssuer.
func (e *UnknownIssuerError) Is(target error) bool {
	return target == ErrUnknownIssuer
}
