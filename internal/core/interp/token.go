// Package interp implements the calcmesh expression interpreter.
package interp

import "fmt"

// Kind identifies the shape of a Token.
type Kind int

const (
	EndOfInput Kind = iota
	Number
	Plus
	Minus
	Star
	Slash
	LParen
	RParen
)

var kindNames = [...]string{
	EndOfInput: "end of input",
	Number:     "number",
	Plus:       "'+'",
	Minus:      "'-'",
	Star:       "'*'",
	Slash:      "'/'",
	LParen:     "'('",
	RParen:     "')'",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit. Lexeme is the exact source text, which
// for numbers preserves every digit after the point.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    int // byte offset in the source
}

func (t Token) String() string {
	if t.Kind == Number {
		return "number " + t.Lexeme
	}
	return t.Kind.String()
}
