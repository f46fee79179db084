// Package logger provides structured logging for calcmesh.
//
// This package wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration and the global default
//   - context.go: Context-aware logging with request and session IDs
//   - clip.go: Truncation of oversized string attributes
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Client-supplied text (expressions) is clipped before it is written
//   - Context propagation for per-connection tracing
package logger
