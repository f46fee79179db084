// Package service provides domain services for calcmesh.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/internal/core/interp"
	"github.com/yndnr/calcmesh-go/internal/telemetry/logger"
	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
	"github.com/yndnr/calcmesh-go/pkg/decimal"
)

// EvalServiceConfig holds configuration for EvalService.
type EvalServiceConfig struct {
	// DivisionScale is the minimum scale of quotients (default and floor: 10).
	DivisionScale int
}

// DefaultEvalServiceConfig returns default configuration.
func DefaultEvalServiceConfig() *EvalServiceConfig {
	return &EvalServiceConfig{
		DivisionScale: interp.DefaultDivisionScale,
	}
}

// EvalService evaluates expressions and records metrics for each run.
type EvalService struct {
	interp  *interp.Interpreter
	metrics *metric.Registry
}

// EvalResult is the outcome of a successful evaluation.
type EvalResult struct {
	Value    decimal.Decimal
	Text     string // canonical decimal text, without trailing newline
	Scale    int
	Duration time.Duration
}

// NewEvalService creates a new EvalService. metrics may be nil.
func NewEvalService(config *EvalServiceConfig, metrics *metric.Registry) *EvalService {
	if config == nil {
		config = DefaultEvalServiceConfig()
	}

	return &EvalService{
		interp:  interp.New(interp.WithDivisionScale(config.DivisionScale)),
		metrics: metrics,
	}
}

// DivisionScale reports the effective division scale.
func (s *EvalService) DivisionScale() int {
	return s.interp.Evaluator().DivisionScale()
}

// Evaluate runs expr through the lexer, parser and evaluator.
//
// Errors unwrap to the domain sentinels (ErrInvalidCharacter,
// ErrUnexpectedToken, ErrDivisionByZero). A cancelled context is
// reported before any work is done.
func (s *EvalService) Evaluate(ctx context.Context, expr string) (*EvalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	start := time.Now()
	value, err := s.interp.Eval(expr)
	elapsed := time.Since(start)
	s.metrics.ObserveEval(elapsed)

	if err != nil {
		logger.L(ctx).Debug("evaluation failed",
			"expr", expr,
			"code", domain.GetErrorCode(err),
			"error", err,
		)
		return nil, err
	}

	res := &EvalResult{
		Value:    value,
		Text:     value.String(),
		Scale:    value.Scale(),
		Duration: elapsed,
	}

	logger.L(ctx).Debug("evaluated",
		"expr", expr,
		"result", res.Text,
		"duration", elapsed,
	)

	return res, nil
}

// Outcome maps an error from any pipeline stage to a metric outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metric.OutcomeOK
	case errors.Is(err, domain.ErrInvalidCharacter):
		return metric.OutcomeLexError
	case errors.Is(err, domain.ErrUnexpectedToken):
		return metric.OutcomeParseError
	case errors.Is(err, domain.ErrDivisionByZero):
		return metric.OutcomeDivisionByZero
	case errors.Is(err, domain.ErrInvalidEncoding),
		errors.Is(err, domain.ErrEmptyRequest),
		errors.Is(err, domain.ErrRequestTooLarge):
		return metric.OutcomeBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return metric.OutcomeRateLimited
	case errors.Is(err, domain.ErrInternal):
		return metric.OutcomeInternalError
	default:
		return metric.OutcomeTransportError
	}
}

// String implements fmt.Stringer.
func (r *EvalResult) String() string {
	return fmt.Sprintf("%s (scale %d)", r.Text, r.Scale)
}
