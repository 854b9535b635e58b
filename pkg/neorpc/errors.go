package neorpc

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents JSON-RPC 2.0 error type.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Standard RPC error codes defined by the JSON-RPC 2.0 specification.
const (
	// InternalServerErrorCode is returned for internal RPC server error.
	InternalServerErrorCode = -32603
	// BadRequestCode is returned on parse error.
	BadRequestCode = -32700
	// InvalidRequestCode is returned on invalid request.
	InvalidRequestCode = -32600
	// MethodNotFoundCode is returned on unknown method calling.
	MethodNotFoundCode = -32601
	// InvalidParamsCode is returned on request with invalid params. Invalid
	// addresses are reported with it too.
	InvalidParamsCode = -32602
)

// Registry-specific error codes.
const (
	// InsufficientFundsCode is returned when attached funds don't cover the
	// fee.
	InsufficientFundsCode = -50100
	// HexDecodingCode is returned for malformed hex strings.
	HexDecodingCode = -50200
	// KeyFormatCode is returned for malformed verifying keys.
	KeyFormatCode = -50201
	// ProofFormatCode is returned for malformed proofs.
	ProofFormatCode = -50202
	// UnknownIssuerCode is returned when issuer has no registered key.
	UnknownIssuerCode = -50300
	// NotFoundCode is returned for missing records.
	NotFoundCode = -50301
	// VerificationEngineCode is returned when the verifier can't complete.
	VerificationEngineCode = -50400
	// InvalidProofCode is returned for rejected proofs.
	InvalidProofCode = -50401
	// NotInitializedCode is returned when the scheme has no configuration.
	NotInitializedCode = -50500
	// AlreadyInitializedCode is returned on repeated initialization.
	AlreadyInitializedCode = -50501
)

var (
	// ErrInvalidParams represents a generic "Invalid params" error.
	ErrInvalidParams = NewInvalidParamsError("Invalid params")

	// ErrInsufficientFunds is returned when attached funds don't cover the fee.
	ErrInsufficientFunds = NewError(InsufficientFundsCode, "Insufficient funds", "")
	// ErrHexDecoding is returned for malformed hex strings.
	ErrHexDecoding = NewError(HexDecodingCode, "Hex decoding error", "")
	// ErrKeyFormat is returned for malformed verifying keys.
	ErrKeyFormat = NewError(KeyFormatCode, "Invalid key format", "")
	// ErrProofFormat is returned for malformed proofs.
	ErrProofFormat = NewError(ProofFormatCode, "Invalid proof format", "")
	// ErrUnknownIssuer is returned when issuer has no registered key.
	ErrUnknownIssuer = NewError(UnknownIssuerCode, "Unknown issuer", "")
	// ErrNotFound is returned for missing records.
	ErrNotFound = NewError(NotFoundCode, "Not found", "")
	// ErrVerificationEngine is returned when the verifier can't complete.
	ErrVerificationEngine = NewError(VerificationEngineCode, "Verification engine error", "")
	// ErrInvalidProof is returned for rejected proofs.
	ErrInvalidProof = NewError(InvalidProofCode, "Invalid proof", "")
	// ErrNotInitialized is returned when the scheme has no configuration.
	ErrNotInitialized = NewError(NotInitializedCode, "Not initialized", "")
	// ErrAlreadyInitialized is returned on repeated initialization.
	ErrAlreadyInitialized = NewError(AlreadyInitializedCode, "Already initialized", "")
)

// NewError is an Error constructor that takes Error contents from its
// parameters.
func NewError(code int64, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError creates a new error with code
// -32700.
func NewParseError(data string) *Error {
	return NewError(BadRequestCode, "Parse error", data)
}

// NewInvalidRequestError creates a new error with
// code -32600.
func NewInvalidRequestError(data string) *Error {
	return NewError(InvalidRequestCode, "Invalid request", data)
}

// NewMethodNotFoundError creates a new error with
// code -32601.
func NewMethodNotFoundError(data string) *Error {
	return NewError(MethodNotFoundCode, "Method not found", data)
}

// NewInvalidParamsError creates a new error with
// code -32602.
func NewInvalidParamsError(data string) *Error {
	return NewError(InvalidParamsCode, "Invalid params", data)
}

// NewInternalServerError creates a new error with
// code -32603.
func NewInternalServerError(data string) *Error {
	return NewError(InternalServerErrorCode, "Internal error", data)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is denotes whether the error matches the target one.
func (e *Error) Is(target error) bool {
	var clTarget *Error
	if errors.As(target, &clTarget) {
		return e.Code == clTarget.Code
	}
	return false
}

// WrapErrorWithData returns copy of the given error with the specified data and cause.
// It does not modify the source error.
func WrapErrorWithData(e *Error, data string) *Error {
	return NewError(e.Code, e.Message, data)
}

// HTTPCode returns HTTP status code for the error in single (non-batch)
// responses.
func (e *Error) HTTPCode() int {
	switch e.Code {
	case BadRequestCode:
		return http.StatusBadRequest
	case MethodNotFoundCode:
		return http.StatusMethodNotAllowed
	case InternalServerErrorCode:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
