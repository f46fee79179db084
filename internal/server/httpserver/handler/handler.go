// Package handler provides HTTP request handlers for the calcmesh ops API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/internal/core/service"
	"github.com/yndnr/calcmesh-go/internal/telemetry/logger"
	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
)

// Evaluator evaluates one expression. *service.EvalService implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string) (*service.EvalResult, error)
}

// Config holds the Handler collaborators.
type Config struct {
	Evaluator Evaluator
	Metrics   *metric.Registry // optional
	Logger    *slog.Logger
	// Ready reports readiness; nil means always ready.
	Ready func() bool
	// MaxBodyBytes caps the /v1/eval body (default: 64KiB).
	MaxBodyBytes int64
	// Version is reported by /health.
	Version string
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	ev      Evaluator
	metrics *metric.Registry
	logger  *slog.Logger
	ready   func() bool
	maxBody int64
	version string
	mux     *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 64 * 1024
	}

	h := &Handler{
		ev:      cfg.Evaluator,
		metrics: cfg.Metrics,
		logger:  log,
		ready:   cfg.Ready,
		maxBody: maxBody,
		version: cfg.Version,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Evaluation
	h.mux.HandleFunc("POST /v1/eval", h.handleEval)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// getRequestID returns the request ID set by the RequestID middleware,
// falling back to the inbound header.
func getRequestID(r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code != domain.ErrInternal.Code {
		code := de.Code
		h.writeError(w, r, errorCodeToHTTPStatus(code), code, de.Message, errorDetails(err, de))
		return
	}

	// Generic internal error
	h.logger.Error("internal error", "error", err, "request_id", getRequestID(r))
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternal.Code, "internal server error", nil)
}

// errorDetails prefers the positional message of interp errors over the
// generic domain message.
func errorDetails(err error, de *domain.DomainError) any {
	if de.Details != "" {
		return de.Details
	}
	if msg := err.Error(); msg != de.Error() {
		return msg
	}
	return nil
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes. The
// numeric part of a code is the HTTP status followed by one digit.
func errorCodeToHTTPStatus(code string) int {
	if len(code) < 4 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(code[len(code)-4:])
	if err != nil {
		return http.StatusInternalServerError
	}
	status := n / 10
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}
