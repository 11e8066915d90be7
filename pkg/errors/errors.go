// Package errors provides structured error types for the Flowplan application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / DUPLICATE_*: Store lookup and uniqueness failures
//   - MISSING_EDGE / UNBALANCED_ASSIGNMENT: model formulation failures
//   - INFEASIBLE / SOLVER_FAILURE: solver outcomes
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidAmount, "supply must be nonnegative, got %v", amount)
//	if errors.Is(err, errors.ErrCodeInvalidAmount) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSolverFailure, origErr, "simplex failed")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidAmount    Code = "INVALID_AMOUNT"
	ErrCodeInvalidCost      Code = "INVALID_COST"
	ErrCodeInvalidType      Code = "INVALID_TYPE"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidInput     Code = "INVALID_INPUT"

	// Store lookup and uniqueness errors
	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeDuplicateID         Code = "DUPLICATE_ID"
	ErrCodeDuplicateEdge       Code = "DUPLICATE_EDGE"
	ErrCodeFictitiousImmutable Code = "FICTITIOUS_IMMUTABLE"

	// Model formulation errors
	ErrCodeMissingEdge          Code = "MISSING_EDGE"
	ErrCodeUnbalancedAssignment Code = "UNBALANCED_ASSIGNMENT"

	// Solver outcomes
	ErrCodeInfeasible    Code = "INFEASIBLE"
	ErrCodeSolverFailure Code = "SOLVER_FAILURE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to an HTTP status code for API responses.
// Validation and formulation failures are client errors; solver failures
// are server-side.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidAmount, ErrCodeInvalidCost, ErrCodeInvalidType,
		ErrCodeInvalidDirection, ErrCodeInvalidInput,
		ErrCodeMissingEdge, ErrCodeUnbalancedAssignment:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateID, ErrCodeDuplicateEdge, ErrCodeFictitiousImmutable:
		return http.StatusConflict
	case ErrCodeInfeasible:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
