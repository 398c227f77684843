// Package domainerrors defines coded errors shared by services and transport.
//
// Services return these codes so handlers can translate failures into stable
// HTTP responses without inspecting messages. Stores return sentinel errors
// (pkg/platform/sentinel) and services map them to a code.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a failure.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"

	// Rejection reasons of the anchoring core.
	//
	//   - CodeStateConflict: witness recomputes to a root or key other than
	//     the committed one, or a concurrent commit won the race.
	//   - CodePreconditionFailed: slot occupied on register, empty on
	//     update/revoke.
	//   - CodePolicyViolation: age/KYC threshold, untrusted issuer,
	//     self-attestation.
	//   - CodeInvalidProof: commitment mismatch or failed proof verification.
	//   - CodeInvalidWitness: authentication path is malformed.
	CodeStateConflict      Code = "state_conflict"
	CodePreconditionFailed Code = "precondition_failed"
	CodePolicyViolation    Code = "policy_violation"
	CodeInvalidProof       Code = "invalid_proof"
	CodeInvalidWitness     Code = "invalid_witness"
)

// Error carries a code, a client-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain,
// or CodeInternal when the chain has none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in the chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HTTPStatus maps a code to its response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput, CodeInvalidWitness:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeStateConflict:
		return http.StatusConflict
	case CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case CodePolicyViolation, CodeInvalidProof, CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
