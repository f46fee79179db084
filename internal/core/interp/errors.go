// Package interp implements the calcmesh expression interpreter.
package interp

import (
	"fmt"

	"github.com/yndnr/calcmesh-go/internal/core/domain"
)

// LexError reports a character that does not start any token.
type LexError struct {
	Pos  int
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid character %q at position %d", e.Char, e.Pos)
}

func (e *LexError) Unwrap() error {
	return domain.ErrInvalidCharacter
}

// ParseError reports the first token that could not continue the
// current production.
type ParseError struct {
	Expected string
	Found    Token
	Pos      int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, found %s at position %d", e.Expected, e.Found, e.Pos)
}

func (e *ParseError) Unwrap() error {
	return domain.ErrUnexpectedToken
}

// DivisionByZeroError reports a divisor that evaluated to exactly zero.
// Pos is the offset of the '/' operator.
type DivisionByZeroError struct {
	Pos int
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero at position %d", e.Pos)
}

func (e *DivisionByZeroError) Unwrap() error {
	return domain.ErrDivisionByZero
}
