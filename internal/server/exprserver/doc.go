// Package exprserver provides the one-shot expression protocol server.
//
// Each accepted connection carries exactly one request: the client sends
// a UTF-8 arithmetic expression, the server answers with the canonical
// decimal result followed by '\n' and closes the connection. Every
// failure (bad input, division by zero, oversized request, transport
// error) closes the connection without writing any bytes.
//
// Components:
//   - session.go: per-connection state machine
//   - framing.go: read-cycle framing of the request bytes
//   - handler.go: runs one session over one net.Conn
//   - server.go: listeners, accept loops, rate limiting and shutdown
package exprserver
