// Package connection provides the calcmesh-cli transports.
//
//   - client.go: one-shot expression protocol over TCP, TLS or a unix socket
//   - http.go: JSON client for the ops HTTP API
//
// The expression protocol answers one request per connection, so every
// call dials a fresh connection.
package connection
