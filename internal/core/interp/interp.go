// Package interp implements the calcmesh expression interpreter.
package interp

import "github.com/yndnr/calcmesh-go/pkg/decimal"

// Interpreter runs Lexer, Parser and Evaluator as one synchronous pipeline.
// A fresh tree is built for every call, so one Interpreter may serve any
// number of goroutines.
type Interpreter struct {
	evaluator *Evaluator
}

// New creates an Interpreter.
func New(opts ...EvalOption) *Interpreter {
	return &Interpreter{evaluator: NewEvaluator(opts...)}
}

// Eval parses and evaluates src.
func (i *Interpreter) Eval(src string) (decimal.Decimal, error) {
	tree, err := Parse(src)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return i.evaluator.Eval(tree)
}

// Evaluator returns the interpreter's evaluator.
func (i *Interpreter) Evaluator() *Evaluator {
	return i.evaluator
}

var defaultInterpreter = New()

// Eval evaluates src with the default division scale.
func Eval(src string) (decimal.Decimal, error) {
	return defaultInterpreter.Eval(src)
}
