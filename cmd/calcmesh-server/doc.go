// Package main provides the entry point for calcmesh-server.
//
// The server accepts one arithmetic expression per TCP connection and
// answers with its exact decimal value:
//
//   - Expression protocol on TCP (optionally TLS or a unix socket)
//   - Ops HTTP server with /health, /ready, /metrics and POST /v1/eval
//
// Usage:
//
//	calcmesh-server [flags] [PORT]
//	calcmesh-server --config /etc/calcmesh/calcmesh.yaml --watch
//
// The server loads configuration, initializes logging and metrics,
// and starts all configured listeners.
package main
