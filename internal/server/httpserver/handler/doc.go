// Package handler provides HTTP request handlers for the calcmesh ops API.
//
// This package contains handlers for all HTTP endpoints:
//
//   - eval.go: expression evaluation (POST /v1/eval)
//   - health.go: health and readiness checks
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call domain service
//   - Format and return response
//   - Handle errors with appropriate HTTP status codes
//
// Unlike the TCP protocol, which closes silently on any failure, this
// surface reports errors with their domain codes.
package handler
