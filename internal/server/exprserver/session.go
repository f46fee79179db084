// Package exprserver provides the one-shot expression protocol server.
package exprserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/internal/core/service"
)

// Phase is the lifecycle stage of a Session. Phases only move forward.
type Phase int

const (
	// PhaseReceivingInput accumulates request bytes.
	PhaseReceivingInput Phase = iota
	// PhaseEvaluating runs the expression pipeline.
	PhaseEvaluating
	// PhaseRespondingThenClosing writes the result and closes.
	PhaseRespondingThenClosing
	// PhaseErrorClosing closes without writing anything.
	PhaseErrorClosing
)

var phaseNames = [...]string{
	PhaseReceivingInput:        "receiving_input",
	PhaseEvaluating:            "evaluating",
	PhaseRespondingThenClosing: "responding_then_closing",
	PhaseErrorClosing:          "error_closing",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ErrSessionClosed is returned by Receive once the input phase is over.
var ErrSessionClosed = errors.New("exprserver: session no longer accepts input")

// Evaluator evaluates one expression. *service.EvalService implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string) (*service.EvalResult, error)
}

// Session is the state of one connection. It is owned by the goroutine
// serving that connection and is not safe for concurrent use.
type Session struct {
	ID     string
	Remote net.Addr

	maxBytes int
	input    []byte
	phase    Phase
	result   *service.EvalResult
	response []byte
	err      error
}

// NewSession creates a session in PhaseReceivingInput. maxBytes <= 0
// disables the size limit.
func NewSession(remote net.Addr, maxBytes int) *Session {
	return &Session{
		ID:       ulid.Make().String(),
		Remote:   remote,
		maxBytes: maxBytes,
		phase:    PhaseReceivingInput,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Input returns the bytes received so far.
func (s *Session) Input() []byte { return s.input }

// Result returns the evaluation result, or nil if evaluation did not succeed.
func (s *Session) Result() *service.EvalResult { return s.result }

// Response returns the bytes to write; empty unless the session is in
// PhaseRespondingThenClosing.
func (s *Session) Response() []byte { return s.response }

// Err returns the error that moved the session to PhaseErrorClosing.
func (s *Session) Err() error { return s.err }

// Receive appends a chunk of request bytes.
func (s *Session) Receive(chunk []byte) error {
	if s.phase != PhaseReceivingInput {
		return ErrSessionClosed
	}
	if s.maxBytes > 0 && len(s.input)+len(chunk) > s.maxBytes {
		err := domain.ErrRequestTooLarge.WithDetails(fmt.Sprintf("limit is %d bytes", s.maxBytes))
		s.fail(err)
		return err
	}
	s.input = append(s.input, chunk...)
	return nil
}

// Complete signals the end of the read cycle and evaluates the input.
// On success the session moves to PhaseRespondingThenClosing with the
// canonical result plus '\n' as response; otherwise to PhaseErrorClosing.
// Complete is a no-op outside PhaseReceivingInput.
func (s *Session) Complete(ctx context.Context, ev Evaluator) {
	if s.phase != PhaseReceivingInput {
		return
	}
	s.phase = PhaseEvaluating

	if len(s.input) == 0 {
		s.fail(domain.ErrEmptyRequest)
		return
	}
	if !utf8.Valid(s.input) {
		s.fail(domain.ErrInvalidEncoding)
		return
	}

	res, err := ev.Evaluate(ctx, string(s.input))
	if err != nil {
		s.fail(err)
		return
	}

	s.result = res
	s.response = append([]byte(res.Text), '\n')
	s.phase = PhaseRespondingThenClosing
}

// Fail records a transport-level failure. Sessions already in a
// closing phase keep their state.
func (s *Session) Fail(err error) {
	if s.phase == PhaseRespondingThenClosing || s.phase == PhaseErrorClosing {
		return
	}
	s.fail(err)
}

// WriteFailed records that the response could not be delivered. It only
// applies in PhaseRespondingThenClosing and moves the session to
// PhaseErrorClosing; the evaluation result is kept.
func (s *Session) WriteFailed(err error) {
	if s.phase != PhaseRespondingThenClosing {
		return
	}
	s.fail(err)
}

func (s *Session) fail(err error) {
	s.err = err
	s.response = nil
	s.phase = PhaseErrorClosing
}
