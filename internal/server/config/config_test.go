package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	expr := cfg.Server.Expr
	if expr.Addr != DefaultExprAddr {
		t.Errorf("Expr.Addr = %q, want %q", expr.Addr, DefaultExprAddr)
	}
	if expr.Network != "tcp" {
		t.Errorf("Expr.Network = %q, want tcp", expr.Network)
	}
	if expr.TLSEnabled {
		t.Error("TLS should be disabled by default")
	}
	if expr.DrainTimeout != DefaultDrainTimeout {
		t.Errorf("DrainTimeout = %v, want %v", expr.DrainTimeout, DefaultDrainTimeout)
	}
	if expr.MaxRequestBytes != DefaultMaxRequestBytes {
		t.Errorf("MaxRequestBytes = %d, want %d", expr.MaxRequestBytes, DefaultMaxRequestBytes)
	}

	if !cfg.Server.HTTP.Enabled || cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP = %+v, want enabled on %s", cfg.Server.HTTP, DefaultHTTPAddr)
	}
	if cfg.Interp.DivisionScale != 10 {
		t.Errorf("DivisionScale = %d, want 10", cfg.Interp.DivisionScale)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"port zero", func(c *ServerConfig) { c.Server.Expr.Addr = "127.0.0.1:0" }, ""},
		{"all interfaces", func(c *ServerConfig) { c.Server.Expr.Addr = ":7070" }, ""},
		{"unix socket", func(c *ServerConfig) {
			c.Server.Expr.Network = "unix"
			c.Server.Expr.Addr = "/tmp/calcmesh.sock"
		}, ""},
		{"http disabled ignores addr", func(c *ServerConfig) {
			c.Server.HTTP.Enabled = false
			c.Server.HTTP.Addr = "bogus"
		}, ""},
		{"raised division scale", func(c *ServerConfig) { c.Interp.DivisionScale = 20 }, ""},

		{"missing port", func(c *ServerConfig) { c.Server.Expr.Addr = "127.0.0.1" }, "server.expr.addr"},
		{"bad port", func(c *ServerConfig) { c.Server.Expr.Addr = "127.0.0.1:99999" }, "invalid port"},
		{"empty addr", func(c *ServerConfig) { c.Server.Expr.Addr = "" }, "server.expr.addr is required"},
		{"empty unix path", func(c *ServerConfig) {
			c.Server.Expr.Network = "unix"
			c.Server.Expr.Addr = ""
		}, "server.expr.addr is required"},
		{"bad network", func(c *ServerConfig) { c.Server.Expr.Network = "udp" }, "must be tcp or unix"},
		{"tls without cert", func(c *ServerConfig) { c.Server.Expr.TLSEnabled = true }, "tls_cert_file"},
		{"zero drain", func(c *ServerConfig) { c.Server.Expr.DrainTimeout = 0 }, "drain_timeout must be positive"},
		{"negative idle", func(c *ServerConfig) { c.Server.Expr.IdleTimeout = -time.Second }, "idle_timeout"},
		{"zero buffer", func(c *ServerConfig) { c.Server.Expr.ReadBufferSize = 0 }, "read_buffer_size"},
		{"zero max bytes", func(c *ServerConfig) { c.Server.Expr.MaxRequestBytes = 0 }, "max_request_bytes"},
		{"negative rate", func(c *ServerConfig) { c.Server.Expr.RateLimit = -1 }, "rate_limit"},
		{"http addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "nope" }, "server.http.addr"},
		{"http half tls", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "/cert.pem" }, "set together"},
		{"division scale too small", func(c *ServerConfig) { c.Interp.DivisionScale = 4 }, "at least 10"},
		{"log level", func(c *ServerConfig) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Verify() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Server.Expr.ReadBufferSize = 0
	cfg.Interp.DivisionScale = 0
	cfg.Log.Level = "loud"

	err := Verify(cfg)
	if err == nil {
		t.Fatal("Verify() = nil, want errors")
	}
	for _, want := range []string{"read_buffer_size", "division_scale", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestExprConfig_SetPort(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		network string
		port    int
		want    string
		wantErr bool
	}{
		{"replaces port", "127.0.0.1:7070", "tcp", 9000, "127.0.0.1:9000", false},
		{"keeps empty host", ":7070", "tcp", 8080, ":8080", false},
		{"ipv6", "[::1]:7070", "tcp", 8080, "[::1]:8080", false},
		{"host only", "localhost", "tcp", 8080, "localhost:8080", false},
		{"port too large", "127.0.0.1:7070", "tcp", 70000, "127.0.0.1:7070", true},
		{"port zero", "127.0.0.1:7070", "tcp", 0, "127.0.0.1:7070", true},
		{"unix", "/tmp/c.sock", "unix", 8080, "/tmp/c.sock", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExprConfig{Addr: tt.addr, Network: tt.network}
			err := c.SetPort(tt.port)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetPort(%d) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
			if c.Addr != tt.want {
				t.Errorf("Addr = %q, want %q", c.Addr, tt.want)
			}
		})
	}
}
