// Package exprserver provides the one-shot expression protocol server.
package exprserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/internal/core/service"
	"github.com/yndnr/calcmesh-go/internal/telemetry/logger"
	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
)

// Limits bounds the resources one connection may use.
type Limits struct {
	// ReadBufferSize is the size of one read; a full read keeps the cycle open.
	ReadBufferSize int
	// MaxRequestBytes caps the request size (0 = unlimited).
	MaxRequestBytes int
	// IdleTimeout bounds the wait for the first bytes.
	IdleTimeout time.Duration
	// DrainTimeout bounds each follow-up read within a cycle.
	DrainTimeout time.Duration
	// ReadTimeout bounds the whole read cycle after the first bytes.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration
}

// DefaultLimits returns the default per-connection limits.
func DefaultLimits() Limits {
	return Limits{
		ReadBufferSize:  4096,
		MaxRequestBytes: 64 * 1024,
		IdleTimeout:     30 * time.Second,
		DrainTimeout:    50 * time.Millisecond,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.ReadBufferSize <= 0 {
		l.ReadBufferSize = d.ReadBufferSize
	}
	if l.MaxRequestBytes < 0 {
		l.MaxRequestBytes = 0
	}
	if l.IdleTimeout <= 0 {
		l.IdleTimeout = d.IdleTimeout
	}
	if l.DrainTimeout <= 0 {
		l.DrainTimeout = d.DrainTimeout
	}
	if l.ReadTimeout <= 0 {
		l.ReadTimeout = d.ReadTimeout
	}
	if l.WriteTimeout <= 0 {
		l.WriteTimeout = d.WriteTimeout
	}
	return l
}

// Handler serves one request per connection. It holds no per-connection
// state and is shared by all connections.
type Handler struct {
	ev      Evaluator
	limits  Limits
	metrics *metric.Registry
	logger  *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil.
func NewHandler(ev Evaluator, limits Limits, metrics *metric.Registry, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		ev:      ev,
		limits:  limits.withDefaults(),
		metrics: metrics,
		logger:  log,
	}
}

// Serve runs one session over conn and always closes conn. It returns
// the finished session for inspection.
func (h *Handler) Serve(ctx context.Context, conn net.Conn) *Session {
	defer conn.Close()

	h.metrics.ConnOpened()
	defer h.metrics.ConnClosed()

	sess := NewSession(conn.RemoteAddr(), h.limits.MaxRequestBytes)
	log := h.logger.With("session_id", sess.ID, "remote", addrString(sess.Remote))
	ctx = logger.WithSessionID(ctx, sess.ID)

	h.run(ctx, conn, sess, log)

	size := len(sess.Input())
	if sess.Err() != nil {
		log.Debug("closing without response",
			"phase", sess.Phase(),
			"code", domain.GetErrorCode(sess.Err()),
			"error", sess.Err(),
			"bytes", size,
		)
	} else {
		log.Debug("request served", "bytes", size, "result", sess.Result().Text)
	}
	h.metrics.ObserveRequest(service.Outcome(sess.Err()), size)

	return sess
}

func (h *Handler) run(ctx context.Context, conn net.Conn, sess *Session, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic serving connection", "panic", r, "stack", string(debug.Stack()))
			sess.Fail(domain.ErrInternal.WithDetails(fmt.Sprint(r)))
		}
	}()

	cr := cycleReader{
		bufSize: h.limits.ReadBufferSize,
		idle:    h.limits.IdleTimeout,
		drain:   h.limits.DrainTimeout,
		total:   h.limits.ReadTimeout,
	}
	if err := cr.read(conn, sess); err != nil {
		sess.Fail(err)
		return
	}

	sess.Complete(ctx, h.ev)
	if sess.Phase() != PhaseRespondingThenClosing {
		return
	}

	if err := conn.SetWriteDeadline(time.Now().Add(h.limits.WriteTimeout)); err != nil {
		sess.WriteFailed(err)
		return
	}
	if _, err := conn.Write(sess.Response()); err != nil {
		log.Debug("write response failed", "error", err)
		sess.WriteFailed(err)
	}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
