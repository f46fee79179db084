// Package httpserver provides the ops HTTP server for calcmesh.
//
// This package exposes operational endpoints next to the expression
// protocol, using stdlib net/http:
//
//   - Health endpoints: /health, /ready
//   - Metrics endpoint: /metrics (Prometheus exposition)
//   - Evaluation endpoint: POST /v1/eval with a JSON body
//
// Features:
//
//   - Middleware chain: Recover, RequestID, RateLimit, Audit
//   - Graceful shutdown with configurable timeout
package httpserver
