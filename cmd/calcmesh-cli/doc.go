// Package main provides the entry point for calcmesh-cli.
//
// calcmesh-cli sends expressions to a calcmesh server, one connection
// per expression, in single-command mode or interactively:
//
//	calcmesh-cli eval '(1.5 + 2) * 3'
//	calcmesh-cli --server calc.internal:7070 repl
package main
