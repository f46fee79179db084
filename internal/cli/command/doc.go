// Package command provides the calcmesh-cli commands.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, settings resolution
//   - eval.go: evaluate one expression
//   - repl.go: interactive mode
//   - ping.go: latency check against the expression server
//   - health.go: ops HTTP health and readiness
//   - config.go: CLI settings file and server config validation
//
// Settings come from ~/.calcmesh/cli.yaml and are overridden by flags
// and CALCMESH_* environment variables.
package command
