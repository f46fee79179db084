// Package connection provides connection management for calcmesh-cli.
package connection

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"
)

// ErrNoResponse is returned when the server closes the connection without
// a payload. The protocol reports every failure this way.
var ErrNoResponse = errors.New("evaluation failed (connection closed without response)")

// DefaultTimeout bounds one request including dial.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps what the client will read back.
const maxResponseBytes = 1 << 20

// Result is one evaluated expression.
type Result struct {
	Expression string        `json:"expression" yaml:"expression"`
	Value      string        `json:"result" yaml:"result"`
	Latency    time.Duration `json:"-" yaml:"-"`
}

// Client speaks the one-shot expression protocol.
type Client struct {
	network   string
	address   string
	timeout   time.Duration
	tlsConfig *tls.Config
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTLS enables TLS with the given configuration.
func WithTLS(cfg *tls.Config) Option {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// NewClient creates a client for server, which is either host:port or
// unix:///path/to/socket.
func NewClient(server string, opts ...Option) *Client {
	c := &Client{
		network: "tcp",
		address: server,
		timeout: DefaultTimeout,
	}
	if path, ok := strings.CutPrefix(server, "unix://"); ok {
		c.network = "unix"
		c.address = path
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the server address as given to NewClient.
func (c *Client) Address() string {
	if c.network == "unix" {
		return "unix://" + c.address
	}
	return c.address
}

// Eval sends expr on a fresh connection, half-closes the write side and
// reads the response until the server closes.
func (c *Client) Eval(ctx context.Context, expr string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.Address(), err)
	}
	defer conn.Close()

	if err := applyDeadline(ctx, conn); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := io.WriteString(conn, expr); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if err := closeWrite(conn); err != nil {
		return nil, fmt.Errorf("half-close: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(conn, maxResponseBytes))
	if err != nil && !isReset(err) {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoResponse
	}

	return &Result{
		Expression: expr,
		Value:      strings.TrimSuffix(string(data), "\n"),
		Latency:    time.Since(start),
	}, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	if c.tlsConfig != nil {
		d := &tls.Dialer{Config: c.tlsConfig}
		return d.DialContext(ctx, c.network, c.address)
	}
	var d net.Dialer
	return d.DialContext(ctx, c.network, c.address)
}

// applyDeadline bounds all I/O on conn by the deadline of ctx, if any.
func applyDeadline(ctx context.Context, conn net.Conn) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	return conn.SetDeadline(deadline)
}

type writeCloser interface {
	CloseWrite() error
}

func closeWrite(conn net.Conn) error {
	if wc, ok := conn.(writeCloser); ok {
		return wc.CloseWrite()
	}
	return nil
}

// isReset reports a peer reset, which the server may produce when it
// closes a failed session while the client is still sending.
func isReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET)
}

// Text returns the bare value.
func (r *Result) Text() string {
	return r.Value
}
