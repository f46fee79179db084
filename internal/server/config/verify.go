// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/calcmesh-go/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyExpr(&cfg.Server.Expr),
		verifyHTTP(&cfg.Server.HTTP),
		verifyInterp(&cfg.Interp),
		verifyLog(&cfg.Log),
	)
}

func verifyExpr(cfg *ExprConfig) error {
	var errs []error

	switch cfg.Network {
	case "tcp", "":
		if err := verifyAddr("server.expr.addr", cfg.Addr); err != nil {
			errs = append(errs, err)
		}
	case "unix":
		if cfg.Addr == "" {
			errs = append(errs, errors.New("server.expr.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("server.expr.network %q must be tcp or unix", cfg.Network))
	}

	if cfg.TLSEnabled {
		if err := verifyAddr("server.expr.tls_addr", cfg.TLSAddr); err != nil {
			errs = append(errs, err)
		}
		if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
			errs = append(errs, errors.New("server.expr.tls_cert_file and tls_key_file are required when tls is enabled"))
		}
	}

	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"read_timeout", cfg.ReadTimeout},
		{"write_timeout", cfg.WriteTimeout},
		{"idle_timeout", cfg.IdleTimeout},
		{"drain_timeout", cfg.DrainTimeout},
	} {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("server.expr.%s must be positive, got %v", d.name, d.v))
		}
	}

	if cfg.ReadBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("server.expr.read_buffer_size must be positive, got %d", cfg.ReadBufferSize))
	}
	if cfg.MaxRequestBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.expr.max_request_bytes must be positive, got %d", cfg.MaxRequestBytes))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.expr.rate_limit must not be negative, got %d", cfg.RateLimit))
	}

	return errors.Join(errs...)
}

func verifyHTTP(cfg *HTTPConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var errs []error
	if err := verifyAddr("server.http.addr", cfg.Addr); err != nil {
		errs = append(errs, err)
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.http.rate_limit must not be negative, got %d", cfg.RateLimit))
	}
	return errors.Join(errs...)
}

func verifyInterp(cfg *InterpSection) error {
	if cfg.DivisionScale < DefaultDivisionScale {
		return fmt.Errorf("interp.division_scale must be at least %d, got %d", DefaultDivisionScale, cfg.DivisionScale)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", cfg.Format))
	}
	return errors.Join(errs...)
}

// verifyAddr checks host:port syntax. The port may be 0 (any free port).
func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%s %q: invalid port", name, addr)
	}
	return nil
}
