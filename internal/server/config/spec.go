// Package config defines the server configuration structure.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for calcmesh-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Interp InterpSection `koanf:"interp"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Expr ExprConfig `koanf:"expr"`
	HTTP HTTPConfig `koanf:"http"`
}

// ExprConfig configures the expression protocol server.
type ExprConfig struct {
	// Addr is host:port for tcp, or a socket path for unix.
	Addr    string `koanf:"addr"`
	Network string `koanf:"network"`

	TLSEnabled  bool   `koanf:"tls_enabled"`
	TLSAddr     string `koanf:"tls_addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	DrainTimeout time.Duration `koanf:"drain_timeout"`

	ReadBufferSize  int `koanf:"read_buffer_size"`
	MaxRequestBytes int `koanf:"max_request_bytes"`

	// RateLimit is connections per second per remote IP (0 = off).
	RateLimit int `koanf:"rate_limit"`
}

// HTTPConfig configures the ops HTTP server.
type HTTPConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
	RateLimit   int    `koanf:"rate_limit"`
	Audit       bool   `koanf:"audit"`
}

// InterpSection configures the expression interpreter.
type InterpSection struct {
	// DivisionScale is the minimum number of fractional digits of a quotient.
	DivisionScale int `koanf:"division_scale"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SetPort replaces the port of a tcp expression address, keeping the host.
func (c *ExprConfig) SetPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be in 1..65535", port)
	}
	if c.Network == "unix" {
		return fmt.Errorf("cannot set a port on unix socket %q", c.Addr)
	}
	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		host = c.Addr
	}
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return nil
}
