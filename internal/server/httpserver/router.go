// Package httpserver provides the ops HTTP server for calcmesh.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yndnr/calcmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Evaluator serves POST /v1/eval.
	Evaluator handler.Evaluator

	// Metrics backs GET /metrics; nil disables the endpoint.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// Ready reports readiness for GET /ready; nil means always ready.
	Ready func() bool

	// MaxBodyBytes caps the /v1/eval body.
	MaxBodyBytes int64

	// Version is reported by GET /health.
	Version string

	// GlobalRateLimit is the rate limit per IP for /v1/eval (requests/second, 0 = off).
	GlobalRateLimit int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool

	// Context bounds background work such as rate limiter pruning.
	Context context.Context
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:          slog.Default(),
		MaxBodyBytes:    64 * 1024,
		GlobalRateLimit: 100,
		EnableAudit:     true,
	}
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	h := handler.New(handler.Config{
		Evaluator:    cfg.Evaluator,
		Metrics:      cfg.Metrics,
		Logger:       cfg.Logger,
		Ready:        cfg.Ready,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Version:      cfg.Version,
	})

	// Order: Recover -> RequestID -> [RateLimit] -> [Audit] -> Handler
	base := []Middleware{Recover(cfg.Logger), RequestID()}
	withAudit := func(ms ...Middleware) []Middleware {
		ms = append(append([]Middleware{}, base...), ms...)
		if cfg.EnableAudit {
			ms = append(ms, Audit(cfg.Logger))
		}
		return ms
	}

	mux := http.NewServeMux()

	// Health endpoints
	health := Chain(h, base...)
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", health)

	// Metrics endpoint
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), base...))
	}

	// Evaluation endpoint
	var evalMiddlewares []Middleware
	if cfg.GlobalRateLimit > 0 {
		evalMiddlewares = withAudit(RateLimit(ctx, cfg.GlobalRateLimit))
	} else {
		evalMiddlewares = withAudit()
	}
	mux.Handle("/v1/eval", Chain(h, evalMiddlewares...))

	return mux
}
