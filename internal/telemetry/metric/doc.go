// Package metric provides Prometheus metrics for calcmesh.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry with the service collectors and /metrics handler
//   - collector.go: Build info and uptime collector
//
// Metrics include:
//
//   - Connection gauges and counters
//   - Request outcome counters (ok, lex_error, parse_error, ...)
//   - Evaluation latency and request size histograms
//
// Every Registry owns its own prometheus.Registry, so tests and embedded
// servers never collide on the global default registerer.
package metric
