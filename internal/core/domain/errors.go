// Package domain defines the core domain errors for calcmesh.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a stable error code.
// Codes have the form CM-<AREA>-<NNNN>; the numeric part mirrors the
// closest HTTP status so ops surfaces can map codes without a table.
type DomainError struct {
	Code    string // Error code (e.g., "CM-EVAL-4220")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two domain errors match when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error chain.
// Errors outside the taxonomy report ErrInternal's code.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrInternal.Code
}

// ============================================================================
// Evaluation pipeline errors
// ============================================================================

var (
	// ErrInvalidCharacter indicates the lexer met a character outside the language.
	ErrInvalidCharacter = NewDomainError("CM-LEX-4000", "invalid character")

	// ErrUnexpectedToken indicates the parser met a token that cannot continue the expression.
	ErrUnexpectedToken = NewDomainError("CM-PARSE-4001", "unexpected token")

	// ErrDivisionByZero indicates a divisor evaluated to exactly zero.
	ErrDivisionByZero = NewDomainError("CM-EVAL-4220", "division by zero")
)

// ============================================================================
// Request errors
// ============================================================================

var (
	// ErrInvalidEncoding indicates the request bytes are not valid UTF-8.
	ErrInvalidEncoding = NewDomainError("CM-REQ-4002", "request is not valid utf-8")

	// ErrEmptyRequest indicates the peer finished its read cycle without sending bytes.
	ErrEmptyRequest = NewDomainError("CM-REQ-4003", "empty request")

	// ErrRequestTooLarge indicates the request exceeded the configured size limit.
	ErrRequestTooLarge = NewDomainError("CM-REQ-4130", "request too large")
)

// ============================================================================
// System errors
// ============================================================================

var (
	// ErrRateLimited indicates too many connections from one address.
	ErrRateLimited = NewDomainError("CM-SYS-4290", "too many requests")

	// ErrInternal indicates an unexpected internal fault.
	ErrInternal = NewDomainError("CM-SYS-5000", "internal error")
)
