// Package repl provides the interactive mode of calcmesh-cli.
//
// Every non-empty line is evaluated on its own connection. Built-in
// commands: history, help, exit and quit. History persists to
// ~/.calcmesh/history.
package repl
