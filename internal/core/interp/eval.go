// Package interp implements the calcmesh expression interpreter.
package interp

import (
	"fmt"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
	"github.com/yndnr/calcmesh-go/pkg/decimal"
)

// DefaultDivisionScale is the minimum number of fractional digits a
// quotient is computed to. It is also the floor for WithDivisionScale.
const DefaultDivisionScale = 10

// Evaluator computes the exact value of an expression tree.
// It holds only configuration and is safe for concurrent use.
type Evaluator struct {
	divisionScale int
}

// EvalOption configures an Evaluator.
type EvalOption func(*Evaluator)

// WithDivisionScale raises the minimum quotient scale. Values below
// DefaultDivisionScale are ignored.
func WithDivisionScale(scale int) EvalOption {
	return func(e *Evaluator) {
		e.divisionScale = max(scale, DefaultDivisionScale)
	}
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...EvalOption) *Evaluator {
	e := &Evaluator{divisionScale: DefaultDivisionScale}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DivisionScale returns the minimum quotient scale.
func (e *Evaluator) DivisionScale() int {
	return e.divisionScale
}

// Eval walks n post-order. Result scales:
//
//	literal  digits after the point
//	+ -      max(left, right)
//	*        left + right
//	/        max(left, right, DivisionScale), rounded half away from zero
//	unary -  unchanged
func (e *Evaluator) Eval(n Node) (decimal.Decimal, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Negate:
		v, err := e.Eval(n.Operand)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return v.Neg(), nil

	case *Binary:
		left, err := e.Eval(n.Left)
		if err != nil {
			return decimal.Decimal{}, err
		}
		right, err := e.Eval(n.Right)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return e.apply(n, left, right)
	}

	return decimal.Decimal{}, fmt.Errorf("%w: unknown node %T", domain.ErrInternal, n)
}

func (e *Evaluator) apply(n *Binary, left, right decimal.Decimal) (decimal.Decimal, error) {
	switch n.Op {
	case OpAdd:
		return left.Add(right), nil
	case OpSub:
		return left.Sub(right), nil
	case OpMul:
		return left.Mul(right), nil
	case OpDiv:
		if right.IsZero() {
			return decimal.Decimal{}, &DivisionByZeroError{Pos: n.Pos}
		}
		return left.Quo(right, max(left.Scale(), right.Scale(), e.divisionScale))
	}
	return decimal.Decimal{}, fmt.Errorf("%w: unknown operator %d", domain.ErrInternal, int(n.Op))
}
