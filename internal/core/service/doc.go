// Package service provides domain services for calcmesh.
//
// Domain services orchestrate the interpreter and the ambient concerns
// around it (logging, metrics, timing) so that transports only deal
// with bytes.
//
// This package contains:
//
//   - EvalService: runs one expression through the interpreter
//   - Outcome: classifies errors into metric outcome labels
//
// Services hold no per-request state and are safe for concurrent use.
package service
