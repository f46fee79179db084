// Package config holds the calcmesh-cli settings file (~/.calcmesh/cli.yaml).
//
// Values in the file are defaults; flags and CALCMESH_* environment
// variables override them per invocation.
package config
