// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultExprAddr    = "127.0.0.1:7070"
	DefaultExprTLSAddr = "127.0.0.1:7443"
	DefaultExprNetwork = "tcp"
	DefaultHTTPAddr    = "127.0.0.1:7080"

	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 30 * time.Second
	DefaultDrainTimeout = 50 * time.Millisecond

	DefaultReadBufferSize  = 4096
	DefaultMaxRequestBytes = 64 * 1024
	DefaultHTTPRateLimit   = 100

	DefaultDivisionScale = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Expr: ExprConfig{
				Addr:            DefaultExprAddr,
				Network:         DefaultExprNetwork,
				TLSEnabled:      false,
				TLSAddr:         DefaultExprTLSAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				IdleTimeout:     DefaultIdleTimeout,
				DrainTimeout:    DefaultDrainTimeout,
				ReadBufferSize:  DefaultReadBufferSize,
				MaxRequestBytes: DefaultMaxRequestBytes,
				RateLimit:       0,
			},
			HTTP: HTTPConfig{
				Enabled:   true,
				Addr:      DefaultHTTPAddr,
				RateLimit: DefaultHTTPRateLimit,
				Audit:     true,
			},
		},
		Interp: InterpSection{
			DivisionScale: DefaultDivisionScale,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
