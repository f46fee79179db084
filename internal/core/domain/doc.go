// Package domain defines the core domain errors for calcmesh.
//
// Every failure the service can observe is classified into a
// DomainError with a stable code:
//
//   - CM-LEX-*:   lexical errors (unrecognized characters)
//   - CM-PARSE-*: structural errors (unexpected or missing tokens)
//   - CM-EVAL-*:  arithmetic errors (division by zero)
//   - CM-REQ-*:   request framing errors (encoding, size, empty input)
//   - CM-SYS-*:   system errors (rate limiting, internal faults)
//
// Positional error types in internal/core/interp unwrap to these
// sentinels, so callers classify with errors.Is and report with
// GetErrorCode.
package domain
