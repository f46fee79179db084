// Package exprserver provides the one-shot expression protocol server.
package exprserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/calcmesh-go/internal/infra/tlsroots"
	"github.com/yndnr/calcmesh-go/internal/server/limiter"
	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
)

// Config holds the expression server configuration.
type Config struct {
	// Address is the listen address (host:port for tcp, a path for unix).
	Address string
	// Network is "tcp" (default) or "unix".
	Network string

	// TLSEnabled enables an additional TLS listener.
	TLSEnabled bool
	// TLSAddress is the address for the TLS listener.
	TLSAddress string
	// TLSCertFile and TLSKeyFile hold the PEM encoded server certificate.
	TLSCertFile string
	TLSKeyFile  string

	// ReadTimeout bounds one read cycle after the first bytes (default: 10s).
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the response (default: 10s).
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the first bytes (default: 30s).
	IdleTimeout time.Duration
	// DrainTimeout bounds follow-up reads within one cycle (default: 50ms).
	DrainTimeout time.Duration

	// ReadBufferSize is the size of one read (default: 4096).
	ReadBufferSize int
	// MaxRequestBytes caps the request size (default: 64KiB).
	MaxRequestBytes int

	// RateLimit is the number of connections per second per remote IP.
	// Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	l := DefaultLimits()
	return &Config{
		Address:         "127.0.0.1:7070",
		Network:         "tcp",
		TLSEnabled:      false,
		TLSAddress:      "127.0.0.1:7443",
		ReadTimeout:     l.ReadTimeout,
		WriteTimeout:    l.WriteTimeout,
		IdleTimeout:     l.IdleTimeout,
		DrainTimeout:    l.DrainTimeout,
		ReadBufferSize:  l.ReadBufferSize,
		MaxRequestBytes: l.MaxRequestBytes,
		RateLimit:       0,
	}
}

func (c *Config) limits() Limits {
	return Limits{
		ReadBufferSize:  c.ReadBufferSize,
		MaxRequestBytes: c.MaxRequestBytes,
		IdleTimeout:     c.IdleTimeout,
		DrainTimeout:    c.DrainTimeout,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
	}
}

// Server accepts connections and hands each one to the Handler in its
// own goroutine.
type Server struct {
	cfg      *Config
	handler  *Handler
	metrics  *metric.Registry
	limiters *limiter.Set
	logger   *slog.Logger

	mu      sync.Mutex
	plainLn net.Listener
	tlsLn   net.Listener
	running atomic.Bool
	wg      sync.WaitGroup
	stop    context.CancelFunc
}

// New creates a new expression server. metrics may be nil.
func New(cfg *Config, ev Evaluator, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "exprserver")

	return &Server{
		cfg:      cfg,
		handler:  NewHandler(ev, cfg.limits(), metrics, logger),
		metrics:  metrics,
		limiters: limiter.New(cfg.RateLimit),
		logger:   logger,
	}
}

// Start opens the listeners and serves connections in background
// goroutines. Listen errors are returned before anything is served.
func (s *Server) Start(ctx context.Context) error {
	network := s.cfg.Network
	if network == "" {
		network = "tcp"
	}

	if network == "unix" {
		// A stale socket file from an unclean exit blocks Listen.
		if err := os.Remove(s.cfg.Address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	plain, err := net.Listen(network, s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", network, s.cfg.Address, err)
	}

	var (
		tlsLn    net.Listener
		reloader *tlsroots.CertReloader
	)
	if s.cfg.TLSEnabled {
		tlsLn, reloader, err = s.listenTLS()
		if err != nil {
			_ = plain.Close()
			return err
		}
	}

	bgCtx, stop := context.WithCancel(ctx)

	s.mu.Lock()
	s.plainLn = plain
	s.tlsLn = tlsLn
	s.stop = stop
	s.mu.Unlock()

	s.running.Store(true)

	if s.limiters != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.limiters.RunJanitor(bgCtx, limiter.DefaultPruneInterval, limiter.DefaultIdleTimeout)
		}()
	}
	if reloader != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := reloader.Run(bgCtx); err != nil {
				s.logger.Warn("certificate reload disabled", "error", err)
			}
		}()
	}

	s.serve(ctx, plain)
	s.logger.Info("expression server listening", "network", network, "address", plain.Addr().String())

	if tlsLn != nil {
		s.serve(ctx, tlsLn)
		s.logger.Info("expression server listening (tls)", "address", tlsLn.Addr().String())
	}

	return nil
}

// listenTLS serves the certificate through a reloader so a renewed key
// pair is picked up without a restart.
func (s *Server) listenTLS() (net.Listener, *tlsroots.CertReloader, error) {
	reloader, err := tlsroots.NewCertReloader(s.cfg.TLSCertFile, s.cfg.TLSKeyFile,
		tlsroots.WithLogger(s.logger))
	if err != nil {
		return nil, nil, fmt.Errorf("load tls key pair: %w", err)
	}
	ln, err := tls.Listen("tcp", s.cfg.TLSAddress, reloader.ServerConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("listen tls %s: %w", s.cfg.TLSAddress, err)
	}
	return ln, reloader, nil
}

func (s *Server) serve(ctx context.Context, ln net.Listener) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("accept loop stopped", "address", ln.Addr().String(), "error", err)
		}
	}()
}

// Running reports whether the server accepts connections.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Addr returns the bound address of the plain listener, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plainLn == nil {
		return nil
	}
	return s.plainLn.Addr()
}

// TLSAddr returns the bound address of the TLS listener, or nil.
func (s *Server) TLSAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tlsLn == nil {
		return nil
	}
	return s.tlsLn.Addr()
}

// Shutdown closes the listeners and waits for in-flight sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	s.mu.Lock()
	listeners := []net.Listener{s.plainLn, s.tlsLn}
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	var firstErr error
	for _, ln := range listeners {
		if ln == nil {
			continue
		}
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) && firstErr == nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var backoff time.Duration
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			// Temporary failures such as EMFILE must not kill the listener.
			if isTimeout(err) || isTemporary(err) {
				backoff = nextBackoff(backoff)
				s.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		if !s.limiters.Allow(remoteIP(c.RemoteAddr())) {
			s.logger.Debug("connection rate limited", "remote", addrString(c.RemoteAddr()))
			s.metrics.ObserveRequest(metric.OutcomeRateLimited, -1)
			_ = c.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler.Serve(ctx, c)
		}()
	}
}

func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
