// Package exprserver provides the one-shot expression protocol server.
package exprserver

import (
	"net"
)

// remoteIP strips the port from TCP addresses. Unix socket peers share
// one bucket keyed by the network name.
func remoteIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.Network()
	}
	return host
}
